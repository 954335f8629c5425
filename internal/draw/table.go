package draw

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
)

type gridLayout struct {
	cols     int
	colW     float64
	rowH     float64
	fontSize float64
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// planGrid sizes a table. It fails when the columns would be too narrow to
// print into.
func (c *canvas) planGrid(t content.Table) (gridLayout, error) {
	n := t.NumCols()
	if n == 0 || len(t.Rows) == 0 {
		return gridLayout{}, errors.New("table is empty")
	}

	l := c.cfg.Table
	total := min(c.width(), float64(n)*l.MinColumnWidth)
	g := gridLayout{
		cols:     n,
		colW:     total / float64(n),
		rowH:     clamp(l.Budget/float64(len(t.Rows)), l.RowMin, l.RowMax),
		fontSize: clamp(l.FontScale/float64(n), l.FontMin, l.FontMax),
	}
	if g.colW < l.MinPrintableWidth {
		return gridLayout{}, fmt.Errorf("column width %.1fpt is below the printable minimum %.1fpt", g.colW, l.MinPrintableWidth)
	}
	if g.rowH*2 > c.bottom-c.top {
		return gridLayout{}, fmt.Errorf("row height %.1fpt does not fit the page", g.rowH)
	}
	return g, nil
}

// table draws t as a grid, or as enumerated text when the grid fails.
func (c *canvas) table(t content.Table) {
	c.stats.Tables++

	drawn, err := c.grid(t)
	if err == nil {
		return
	}

	c.stats.TableFallbacks++
	c.log.WithError(err).WithFields(logrus.Fields{
		"rows":       len(t.Rows),
		"cols":       t.NumCols(),
		"rows_drawn": drawn,
	}).Warn("table drawn as text")

	if drawn > 0 {
		c.stats.PartialTables++
		c.newPage()
	}
	c.tableText(t)
}

// grid draws t and reports how many rows reached the page. Every cell is
// measured before the first one is drawn.
func (c *canvas) grid(t content.Table) (drawn int, err error) {
	fail := func(cause error) error {
		return &content.TableRenderError{Rows: len(t.Rows), Cols: t.NumCols(), Err: cause}
	}

	g, err := c.planGrid(t)
	if err != nil {
		return 0, fail(err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fail(fmt.Errorf("panic: %v", r))
		}
		if err == nil && c.pdf.Err() {
			err = fail(c.pdf.Error())
		}
		if err != nil {
			c.pdf.ClearError()
		}
	}()

	cells, err := c.measure(t, g)
	if err != nil {
		return 0, fail(err)
	}

	spacing := c.cfg.Table.Spacing
	c.gap(spacing / 2)

	height := float64(len(cells)) * g.rowH
	if height <= c.bottom-c.top {
		c.ensure(height)
	} else {
		c.ensure(g.rowH * 2)
	}

	header := cells[0]
	for i, row := range cells {
		if i > 0 && c.cursor.Y+g.rowH > c.bottom {
			c.newPage()
			c.row(header, g, true)
		}
		c.row(row, g, i == 0)
		if c.pdf.Err() {
			return drawn, fail(c.pdf.Error())
		}
		drawn++
	}

	c.gap(spacing)
	return drawn, nil
}

// measure encodes and truncates every cell to its column.
func (c *canvas) measure(t content.Table, g gridLayout) ([][]string, error) {
	inner := g.colW - 2*c.cfg.Table.Padding - 2*c.pdf.GetCellMargin()
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		weight := ""
		if i == 0 {
			weight = "B"
		}
		c.pdf.SetFont("Helvetica", weight, g.fontSize)

		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = truncate(c.encode(cell), inner, c.pdf.GetStringWidth)
		}
	}
	if c.pdf.Err() {
		return nil, c.pdf.Error()
	}
	return out, nil
}

// row draws measured cells.
func (c *canvas) row(cells []string, g gridLayout, header bool) {
	weight := ""
	if header {
		weight = "B"
	}
	c.pdf.SetFont("Helvetica", weight, g.fontSize)
	c.pdf.SetTextColor(c.styles.TableText.R, c.styles.TableText.G, c.styles.TableText.B)
	c.pdf.SetDrawColor(c.styles.TableBorder.R, c.styles.TableBorder.G, c.styles.TableBorder.B)
	c.pdf.SetFillColor(c.styles.TableHeaderFill.R, c.styles.TableHeaderFill.G, c.styles.TableHeaderFill.B)
	c.pdf.SetLineWidth(0.5)

	x := c.left + (c.width()-g.colW*float64(g.cols))/2
	top := c.cursor.Y
	for i, txt := range cells {
		c.pdf.SetXY(x+float64(i)*g.colW, top)
		c.pdf.CellFormat(g.colW, g.rowH, txt, "1", 0, "C", header, 0, "")
	}
	c.cursor.Y += g.rowH
	c.place(top, "table")
}

// tableText degrades a table to one numbered line per row.
func (c *canvas) tableText(t content.Table) {
	st := c.styles.Tags[content.PlainText]
	st.Indent += 18
	st.After = 1
	for i, row := range t.Rows {
		c.paragraph(fmt.Sprintf("Row %d: %s", i+1, strings.Join(row, " | ")), st, "table-text")
	}
	c.gap(c.cfg.Table.Spacing)
}
