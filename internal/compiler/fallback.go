package compiler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	fallbackPageWidth  = 612
	fallbackPageHeight = 792
	fallbackMargin     = 72
	fallbackWrap       = 86
	fallbackLeading    = 14
	fallbackMaxLines   = (fallbackPageHeight - 2*fallbackMargin - 40) / fallbackLeading
)

// Synthesize builds a one-page PDF that shows title and body in Helvetica.
// Body is word-wrapped; lines past the page end are dropped.
func Synthesize(title string, body ...string) []byte {
	var lines []string
	for _, para := range body {
		for _, l := range strings.Split(wordwrap.WrapString(para, fallbackWrap), "\n") {
			// WrapString leaves words longer than the limit intact.
			for len(l) > fallbackWrap {
				lines = append(lines, l[:fallbackWrap])
				l = l[fallbackWrap:]
			}
			lines = append(lines, l)
		}
	}
	if len(lines) > fallbackMaxLines {
		lines = append(lines[:fallbackMaxLines-1], "...")
	}

	var stream bytes.Buffer
	fmt.Fprintf(&stream, "BT\n/F1 16 Tf\n%d %d Td\n(%s) Tj\nET\n",
		fallbackMargin, fallbackPageHeight-fallbackMargin, pdfString(title))
	fmt.Fprintf(&stream, "BT\n/F1 10 Tf\n%d TL\n%d %d Td\n",
		fallbackLeading, fallbackMargin, fallbackPageHeight-fallbackMargin-32)
	for _, l := range lines {
		fmt.Fprintf(&stream, "(%s) Tj\nT*\n", pdfString(l))
	}
	stream.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
			fallbackPageWidth, fallbackPageHeight),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", stream.Len(), stream.String()),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return out.Bytes()
}

var winAnsi = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

// pdfString encodes s as the body of a PDF literal string in WinAnsi.
func pdfString(s string) string {
	enc, err := winAnsi.String(s)
	if err != nil {
		enc = strings.Map(func(r rune) rune {
			if r > 0x7e || r < 0x20 {
				return '?'
			}
			return r
		}, s)
	}

	var b strings.Builder
	for i := 0; i < len(enc); i++ {
		c := enc[i]
		switch {
		case c == '\\' || c == '(' || c == ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(&b, "\\%03o", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
