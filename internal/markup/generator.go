// Package markup turns a classified exam stream into a LaTeX document.
package markup

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
)

// BodyMarker is replaced by the generated body in a .tex template.
const BodyMarker = "%%EXAM_BODY%%"

// ErrTemplate indicates a template the body cannot be merged into.
var ErrTemplate = errors.New("unusable template")

// Options configure the generated preamble.
type Options struct {
	FontSize string
	Margin   string
}

// DefaultOptions match a 12pt article with one-inch margins.
func DefaultOptions() Options {
	return Options{FontSize: "12pt", Margin: "1in"}
}

// Document is one exam to typeset.
type Document struct {
	Header     content.Header
	Stream     content.Stream
	StyleHints map[string]string
	// PaperWidth and PaperHeight in points, taken from a reference PDF.
	PaperWidth  float64
	PaperHeight float64
	// Template is the text of a .tex template. Empty means the built-in
	// preamble.
	Template string
}

// Generator emits LaTeX.
type Generator struct {
	opts Options
}

// NewGenerator returns a Generator. Zero fields take their defaults.
func NewGenerator(opts Options) *Generator {
	def := DefaultOptions()
	if opts.FontSize == "" {
		opts.FontSize = def.FontSize
	}
	if opts.Margin == "" {
		opts.Margin = def.Margin
	}
	return &Generator{opts: opts}
}

// Generate returns the complete LaTeX source for doc.
func (g *Generator) Generate(doc Document) (string, error) {
	colors := colorDefinitions(doc.StyleHints)

	var body strings.Builder
	if !doc.Header.Skip {
		writeHeader(&body, doc.Header)
	}
	writeStream(&body, doc.Stream, colors)

	if doc.Template != "" {
		return Merge(doc.Template, colors.preamble(), body.String())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\\documentclass[%s]{article}\n", g.opts.FontSize)
	b.WriteString("\\usepackage[utf8]{inputenc}\n")
	b.WriteString("\\usepackage[T1]{fontenc}\n")
	if doc.PaperWidth > 0 && doc.PaperHeight > 0 {
		fmt.Fprintf(&b, "\\usepackage[paperwidth=%.2fpt,paperheight=%.2fpt,margin=%s]{geometry}\n",
			doc.PaperWidth, doc.PaperHeight, g.opts.Margin)
	} else {
		fmt.Fprintf(&b, "\\usepackage[margin=%s]{geometry}\n", g.opts.Margin)
	}
	b.WriteString("\\usepackage{array}\n")
	b.WriteString("\\usepackage{xcolor}\n")
	b.WriteString("\\pagestyle{empty}\n")
	b.WriteString("\\setlength{\\parindent}{0pt}\n")
	b.WriteString(colors.preamble())
	b.WriteString("\n\\begin{document}\n\n")
	b.WriteString(body.String())
	b.WriteString("\n\\end{document}\n")

	return b.String(), nil
}

// Merge inserts body into a template at BodyMarker, or before
// \end{document} when the marker is absent. extraPreamble goes right before
// \begin{document}; xcolor is loaded when the template does not load it.
func Merge(template, extraPreamble, body string) (string, error) {
	begin := strings.Index(template, `\begin{document}`)
	if begin < 0 {
		return "", fmt.Errorf("%w: no \\begin{document}", ErrTemplate)
	}

	pre := extraPreamble
	if extraPreamble != "" && !strings.Contains(template[:begin], "{xcolor}") {
		pre = "\\usepackage{xcolor}\n" + extraPreamble
	}
	out := template[:begin] + pre + template[begin:]

	if strings.Contains(out, BodyMarker) {
		return strings.Replace(out, BodyMarker, body, 1), nil
	}
	end := strings.LastIndex(out, `\end{document}`)
	if end < 0 {
		return "", fmt.Errorf("%w: no \\end{document}", ErrTemplate)
	}
	return out[:end] + body + "\n" + out[end:], nil
}

// palette maps line roles to xcolor names defined in the preamble.
type palette map[string]string

var hexRe = regexp.MustCompile(`^#?([0-9a-fA-F]{6}|[0-9a-fA-F]{3})$`)

var colorHints = map[string]string{
	"problem.color":            "examproblem",
	"subquestion.color":        "examsub",
	"subquestion_scored.color": "examsubscored",
	"subquestion_plain.color":  "examsubplain",
	"notes.color":              "examnotes",
	"text.color":               "examtext",
	"diagram.color":            "examdiagram",
}

var defaultColors = map[string]string{
	"examproblem":   "1A1A1A",
	"examsub":       "",
	"examsubscored": "4169E1",
	"examsubplain":  "006D77",
	"examnotes":     "CC0000",
	"examtext":      "000000",
	"examdiagram":   "000000",
}

// colorDefinitions resolves hints to HTML colours. Malformed hints keep the
// default.
func colorDefinitions(hints map[string]string) palette {
	p := palette{}
	for name, hex := range defaultColors {
		p[name] = hex
	}
	for key, name := range colorHints {
		v, ok := hints[key]
		if !ok {
			continue
		}
		m := hexRe.FindStringSubmatch(strings.TrimSpace(v))
		if m == nil {
			continue
		}
		hex := strings.ToUpper(m[1])
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		p[name] = hex
	}
	if sub := p["examsub"]; sub != "" {
		if _, ok := hints["subquestion_scored.color"]; !ok {
			p["examsubscored"] = sub
		}
		if _, ok := hints["subquestion_plain.color"]; !ok {
			p["examsubplain"] = sub
		}
	}
	return p
}

func (p palette) preamble() string {
	names := make([]string, 0, len(p))
	for name, hex := range p {
		if hex != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "\\definecolor{%s}{HTML}{%s}\n", name, p[name])
	}
	return b.String()
}

func writeHeader(b *strings.Builder, h content.Header) {
	var lines []string
	if h.Subject != "" {
		lines = append(lines, "{\\Large\\bfseries "+Escape(h.Subject)+"}")
	}
	lines = append(lines, "{\\large\\bfseries "+Escape(h.Title)+"}")
	if d := h.Date(); d != "" {
		lines = append(lines, "Generated on "+Escape(d))
	}
	if h.Difficulty != "" {
		lines = append(lines, "Difficulty: "+Escape(h.Difficulty))
	}
	if h.TotalPoints > 0 {
		lines = append(lines, fmt.Sprintf("Total: %d points", h.TotalPoints))
	}

	b.WriteString("\\begin{center}\n")
	b.WriteString(strings.Join(lines, "\\\\[0.2cm]\n"))
	b.WriteString("\n\\end{center}\n\n")

	b.WriteString("{\\bfseries\\color{examnotes} Important Notes:}\n")
	b.WriteString("\\begin{itemize}\n")
	for _, n := range content.DefaultHeaderNotes {
		b.WriteString("\\item " + Escape(n) + "\n")
	}
	b.WriteString("\\end{itemize}\n\n")
	b.WriteString("\\noindent\\rule{\\linewidth}{0.4pt}\n\\vspace{0.3cm}\n\n")
}

const (
	diagramOpen  = "\\begin{center}\n\\begin{minipage}{0.9\\linewidth}\n{\\color{examdiagram}\n\\begin{verbatim}\n"
	diagramClose = "\\end{verbatim}\n}\n\\end{minipage}\n\\end{center}\n\n"
)

func writeStream(b *strings.Builder, stream content.Stream, colors palette) {
	inFence := false
	for _, n := range stream {
		switch v := n.(type) {
		case content.Table:
			writeTable(b, v)
		case content.ClassifiedLine:
			if v.Tag == content.FenceDelimiter {
				if inFence {
					b.WriteString(diagramClose)
				} else {
					b.WriteString(diagramOpen)
				}
				inFence = !inFence
				continue
			}
			if inFence {
				b.WriteString(Verbatim(content.Fold(v.Text)) + "\n")
				continue
			}
			writeLine(b, v)
		}
	}
	if inFence {
		b.WriteString(diagramClose)
	}
}

func writeLine(b *strings.Builder, l content.ClassifiedLine) {
	text := Escape(content.Fold(l.Text))

	switch l.Tag {
	case content.Blank:
		b.WriteString("\n")
	case content.ProblemHeader:
		b.WriteString("\\vspace{0.4cm}\n{\\large\\bfseries\\color{examproblem} " + text + "}\n\n\\vspace{0.3cm}\n")
	case content.SubQuestionScored:
		b.WriteString("{\\leftskip=1.5em\\relax\\color{examsubscored}" + text + "\\par}\n\\vspace{0.2cm}\n")
	case content.SubQuestionPlain:
		b.WriteString("{\\leftskip=1.5em\\relax\\color{examsubplain}" + text + "\\par}\n\\vspace{0.2cm}\n")
	case content.NotesHeader:
		b.WriteString("{\\bfseries\\color{examnotes} " + text + "}\\par\n\\vspace{0.2cm}\n")
	case content.PlainText:
		switch content.EmphasisOf(l.Text) {
		case content.EmphasisCourse:
			b.WriteString("\\begin{center}{\\Large\\bfseries " + text + "}\\end{center}\n")
		case content.EmphasisTitle:
			b.WriteString("\\begin{center}{\\large\\bfseries " + text + "}\\end{center}\n")
		case content.EmphasisTotal:
			b.WriteString("\\begin{center}{\\bfseries " + text + "}\\end{center}\n\\vspace{0.3cm}\n")
		default:
			b.WriteString("{\\color{examtext}" + text + "\\par}\n")
		}
	default:
		b.WriteString(text + "\\par\n")
	}
}

func writeTable(b *strings.Builder, t content.Table) {
	n := t.NumCols()
	if n == 0 {
		return
	}

	b.WriteString("\\begin{center}\n")
	b.WriteString("\\begin{tabular}{|" + strings.Repeat("c|", n) + "}\n")
	b.WriteString("\\hline\n")
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = Escape(content.Fold(cell))
			if i == 0 && cells[j] != "" {
				cells[j] = "\\textbf{" + cells[j] + "}"
			}
		}
		b.WriteString(strings.Join(cells, " & ") + " \\\\\n")
		b.WriteString("\\hline\n")
	}
	b.WriteString("\\end{tabular}\n")
	b.WriteString("\\end{center}\n")
	b.WriteString("\\vspace{0.3cm}\n\n")
}
