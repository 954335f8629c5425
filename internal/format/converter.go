// Package format inspects rendered documents.
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNotPDF is returned for input that does not start with a PDF header.
var ErrNotPDF = errors.New("not a PDF document")

// Preview summarizes a PDF.
type Preview struct {
	Pages int
	// Width and Height are the first page size in points.
	Width  float64
	Height float64
	Text   string
	// Truncated is set when Text was cut to the converter limit.
	Truncated bool
}

// Converter extracts text from PDF documents.
type Converter struct {
	// MaxChars limits Preview text; 0 keeps everything.
	MaxChars int
}

// PDF2Text returns the plain text of every page.
func (c Converter) PDF2Text(raw []byte) (string, error) {
	rd, err := open(raw)
	if err != nil {
		return "", err
	}

	plain, err := rd.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("rd.GetPlainText failed: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("io.ReadAll failed: %w", err)
	}

	return string(b), nil
}

// Preview validates raw and reports its page count, size and text.
func (c Converter) Preview(raw []byte) (Preview, error) {
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		return Preview{}, ErrNotPDF
	}

	conf := model.NewDefaultConfiguration()
	if err := api.Validate(bytes.NewReader(raw), conf); err != nil {
		return Preview{}, fmt.Errorf("api.Validate failed: %w", err)
	}
	dims, err := api.PageDims(bytes.NewReader(raw), conf)
	if err != nil {
		return Preview{}, fmt.Errorf("api.PageDims failed: %w", err)
	}

	text, err := c.PDF2Text(raw)
	if err != nil {
		return Preview{}, err
	}

	p := Preview{Pages: len(dims), Text: strings.TrimSpace(text)}
	if len(dims) > 0 {
		p.Width, p.Height = dims[0].Width, dims[0].Height
	}
	if c.MaxChars > 0 {
		if rs := []rune(p.Text); len(rs) > c.MaxChars {
			p.Text = string(rs[:c.MaxChars])
			p.Truncated = true
		}
	}

	return p, nil
}

func open(raw []byte) (*pdf.Reader, error) {
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	rd, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("pdf.NewReader failed: %w", err)
	}
	return rd, nil
}
