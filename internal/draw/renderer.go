// Package draw paints a classified exam stream straight onto PDF pages.
package draw

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/logging"
)

// Config is the page and table geometry, in points.
type Config struct {
	PageSize string
	// PageWidth and PageHeight override PageSize when both are positive.
	PageWidth  float64
	PageHeight float64
	Margin     float64
	Table      TableLayout
	Styles     StyleSheet
}

// TableLayout bounds the grid drawn for a table.
type TableLayout struct {
	MinColumnWidth float64
	// MinPrintableWidth is the narrowest column a cell can be drawn in.
	MinPrintableWidth float64
	RowMin            float64
	RowMax            float64
	// Budget is the height shared by all rows before clamping.
	Budget  float64
	Spacing float64
	Padding float64
	// Font size is FontScale/numCols clamped to [FontMin, FontMax].
	FontScale float64
	FontMin   float64
	FontMax   float64
}

// DefaultConfig returns an A4 layout with one-inch margins.
func DefaultConfig() Config {
	return Config{
		PageSize: "A4",
		Margin:   72,
		Table: TableLayout{
			MinColumnWidth:    110,
			MinPrintableWidth: 24,
			RowMin:            28,
			RowMax:            40,
			Budget:            320,
			Spacing:           12,
			Padding:           3,
			FontScale:         44,
			FontMin:           6.5,
			FontMax:           11,
		},
		Styles: DefaultStyles(),
	}
}

// Input is one document to draw.
type Input struct {
	Title      string
	Header     content.Header
	Stream     content.Stream
	StyleHints map[string]string
	// PageWidth and PageHeight, when positive, override the configured size.
	PageWidth  float64
	PageHeight float64
}

// Placement records where an element landed.
type Placement struct {
	Page   int
	Top    float64
	Bottom float64
	Kind   string
}

// Stats describe a drawn document.
type Stats struct {
	Pages          int
	Tables         int
	TableFallbacks int
	// PartialTables counts fallbacks that happened after grid rows were
	// already on the page; their text version starts on a new page.
	PartialTables int
	// ContentBottom is the lowest y any element may reach.
	ContentBottom float64
	Placements    []Placement
}

// PageCursor is the drawing position.
type PageCursor struct {
	Y    float64
	Page int
}

// Renderer is the direct-draw backend.
type Renderer struct {
	cfg Config
	log logrus.FieldLogger
}

// New creates a Renderer. A zero Config selects DefaultConfig.
func New(cfg Config, log logrus.FieldLogger) *Renderer {
	if cfg.PageSize == "" && (cfg.PageWidth <= 0 || cfg.PageHeight <= 0) {
		cfg = DefaultConfig()
	}
	if cfg.Styles.Tags == nil {
		cfg.Styles = DefaultStyles()
	}
	return &Renderer{cfg: cfg, log: logging.OrDiscard(log)}
}

// Render draws in and returns the PDF bytes.
func (r *Renderer) Render(ctx context.Context, in Input) ([]byte, Stats, error) {
	styles := r.cfg.Styles.Clone()
	if err := styles.Apply(in.StyleHints); err != nil {
		r.log.WithError(err).Warn("ignoring malformed style hint")
	}

	c, err := r.newCanvas(in, styles)
	if err != nil {
		return nil, Stats{}, err
	}
	pdf := c.pdf

	c.newPage()
	if !in.Header.Skip {
		c.header(in.Header)
	}

	for i, n := range in.Stream {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, Stats{}, err
			}
		}
		switch v := n.(type) {
		case content.ClassifiedLine:
			c.line(v)
		case content.Table:
			c.table(v)
		}
	}

	if pdf.Err() {
		return nil, Stats{}, fmt.Errorf("gofpdf failed: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, Stats{}, fmt.Errorf("pdf.Output failed: %w", err)
	}

	c.stats.Pages = pdf.PageNo()
	r.log.WithFields(logrus.Fields{
		"pages":           c.stats.Pages,
		"tables":          c.stats.Tables,
		"table_fallbacks": c.stats.TableFallbacks,
	}).Debug("document drawn")

	return buf.Bytes(), c.stats, nil
}

func (r *Renderer) newCanvas(in Input, styles StyleSheet) (*canvas, error) {
	pdf := r.newDocument(in)
	c := &canvas{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		cfg:    r.cfg,
		styles: styles,
		log:    r.log,
	}
	pageW, pageH := pdf.GetPageSize()
	c.left, c.right = r.cfg.Margin, pageW-r.cfg.Margin
	c.top, c.bottom = r.cfg.Margin, pageH-r.cfg.Margin
	c.stats.ContentBottom = c.bottom
	if c.right-c.left <= 0 || c.bottom-c.top <= 0 {
		return nil, fmt.Errorf("margin %.0fpt leaves no room on a %.0fx%.0fpt page", r.cfg.Margin, pageW, pageH)
	}
	return c, nil
}

func (r *Renderer) newDocument(in Input) *gofpdf.Fpdf {
	init := &gofpdf.InitType{OrientationStr: "P", UnitStr: "pt", SizeStr: r.cfg.PageSize}
	switch {
	case in.PageWidth > 0 && in.PageHeight > 0:
		init.Size = gofpdf.SizeType{Wd: in.PageWidth, Ht: in.PageHeight}
	case r.cfg.PageWidth > 0 && r.cfg.PageHeight > 0:
		init.Size = gofpdf.SizeType{Wd: r.cfg.PageWidth, Ht: r.cfg.PageHeight}
	}

	pdf := gofpdf.NewCustom(init)
	pdf.SetMargins(r.cfg.Margin, r.cfg.Margin, r.cfg.Margin)
	pdf.SetAutoPageBreak(false, r.cfg.Margin)
	pdf.SetCreator("examdoc", false)
	if in.Title != "" {
		pdf.SetTitle(in.Title, true)
	}
	return pdf
}

// canvas owns the cursor for one Render call.
type canvas struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	cfg    Config
	styles StyleSheet
	log    logrus.FieldLogger

	cursor                   PageCursor
	left, right, top, bottom float64
	stats                    Stats
}

func (c *canvas) width() float64 {
	return c.right - c.left
}

func (c *canvas) newPage() {
	c.pdf.AddPage()
	c.cursor.Page++
	c.cursor.Y = c.top
}

// ensure starts a new page unless h more points fit on this one.
// An element taller than a whole page must be split by the caller.
func (c *canvas) ensure(h float64) {
	if c.cursor.Y+h > c.bottom && c.cursor.Y > c.top {
		c.newPage()
	}
}

func (c *canvas) place(top float64, kind string) {
	c.stats.Placements = append(c.stats.Placements, Placement{
		Page:   c.cursor.Page,
		Top:    top,
		Bottom: c.cursor.Y,
		Kind:   kind,
	})
}

// gap moves down without drawing. It never crosses the page bottom; the
// next element breaks the page instead.
func (c *canvas) gap(h float64) {
	c.cursor.Y = min(c.cursor.Y+h, c.bottom)
}

func (c *canvas) font(st Style) {
	c.pdf.SetFont(st.Family, st.Weight, st.Size)
	c.pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
}

func (c *canvas) encode(s string) string {
	return c.tr(content.Fold(s))
}

func (c *canvas) line(l content.ClassifiedLine) {
	switch l.Tag {
	case content.Blank:
		c.gap(c.styles.BlankGap)
	case content.FenceDelimiter:
		c.gap(c.styles.BlankGap / 2)
	case content.DiagramLine:
		kind := ClassifyDiagram(l.Text)
		c.preformatted(l.Text, c.styles.Diagram[kind], "diagram")
	case content.PlainText:
		st := c.styles.Tags[content.PlainText]
		if e := content.EmphasisOf(l.Text); e != content.EmphasisNone {
			st = c.styles.Emphasis[e]
		}
		c.paragraph(l.Text, st, "text")
	case content.TableRow, content.TableSeparator:
		// Streams fold rows into tables; a stray row is kept as text.
		c.paragraph(l.Text, c.styles.Tags[content.PlainText], "text")
	default:
		c.paragraph(l.Text, c.styles.Tags[l.Tag], l.Tag.String())
	}
}

func (c *canvas) paragraph(text string, st Style, kind string) {
	c.font(st)
	lines := wrap(c.encode(text), c.width()-st.Indent, c.pdf.GetStringWidth)
	c.block(lines, st, kind)
}

func (c *canvas) preformatted(text string, st Style, kind string) {
	c.font(st)
	lines := chop(c.encode(text), c.width()-st.Indent, c.pdf.GetStringWidth)
	c.block(lines, st, kind)
}

// block draws pre-wrapped lines. A block that fits on a fresh page is kept
// together; a longer one flows line by line.
func (c *canvas) block(lines []string, st Style, kind string) {
	lh := st.lineHeight()
	height := st.Before + float64(len(lines))*lh

	if height <= c.bottom-c.top {
		c.ensure(height)
		top := c.cursor.Y
		c.cursor.Y += st.Before
		for _, ln := range lines {
			c.text(ln, st, lh)
		}
		c.place(top, kind)
	} else {
		c.gap(st.Before)
		for _, ln := range lines {
			c.ensure(lh)
			top := c.cursor.Y
			c.text(ln, st, lh)
			c.place(top, kind)
		}
	}

	c.gap(st.After)
}

func (c *canvas) text(s string, st Style, lh float64) {
	c.pdf.SetXY(c.left+st.Indent, c.cursor.Y)
	c.pdf.CellFormat(c.width()-st.Indent, lh, s, "", 0, st.Align, false, 0, "")
	c.cursor.Y += lh
}

func (c *canvas) rule(color RGB) {
	c.ensure(1)
	top := c.cursor.Y
	c.pdf.SetDrawColor(color.R, color.G, color.B)
	c.pdf.SetLineWidth(0.75)
	c.pdf.Line(c.left, c.cursor.Y, c.right, c.cursor.Y)
	c.cursor.Y++
	c.place(top, "rule")
}

// header draws the generated academic title block.
func (c *canvas) header(h content.Header) {
	hs := c.styles.Header
	if h.Subject != "" {
		c.paragraph(h.Subject, hs.Subject, "header")
	}
	c.paragraph(h.Title, hs.Title, "header")
	if d := h.Date(); d != "" {
		c.paragraph("Generated on "+d, hs.Info, "header")
	}
	if h.Difficulty != "" {
		c.paragraph("Difficulty: "+h.Difficulty, hs.Info, "header")
	}
	if h.TotalPoints > 0 {
		c.paragraph(fmt.Sprintf("Total: %d points", h.TotalPoints), hs.Info, "header")
	}
	c.gap(hs.Info.Size)

	c.paragraph("Important Notes:", c.styles.Tags[content.NotesHeader], "header")
	note := c.styles.Tags[content.PlainText]
	note.After = 1
	for _, n := range content.DefaultHeaderNotes {
		c.paragraph("• "+n, note, "header")
	}
	c.gap(hs.Info.Size)
	c.rule(hs.Rule)
	c.gap(hs.Info.Size / 2)
}
