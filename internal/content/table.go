package content

// Table is a normalized pipe table. Every row has the same number of cells.
type Table struct {
	Rows [][]string `json:"rows"`
}

func (Table) node() {}

// NumCols returns the uniform row width.
func (t Table) NumCols() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// Header returns the first row, rendered bold by both backends.
func (t Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Accumulator buffers the cells of consecutive TableRow lines.
// Separator lines are not buffered at all.
type Accumulator struct {
	// MaxColumns bounds the table width; 0 disables the bound.
	MaxColumns int

	rows [][]string
}

// Add buffers one row of cells.
func (a *Accumulator) Add(cells []string) {
	row := make([]string, len(cells))
	copy(row, cells)
	a.rows = append(a.rows, row)
}

// Pending reports whether rows are buffered.
func (a *Accumulator) Pending() bool {
	return len(a.rows) > 0
}

// Flush normalizes the buffered rows and resets the accumulator. The boolean
// is false when no valid row remained.
func (a *Accumulator) Flush() (Table, bool) {
	rows := a.rows
	a.rows = nil
	return NormalizeTable(rows, a.MaxColumns)
}

// NormalizeTable drops rows that are empty or separator-like and pads the rest
// to the widest row. Rows are truncated only when wider than maxCols (> 0).
func NormalizeTable(rows [][]string, maxCols int) (Table, bool) {
	clean := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		clean = append(clean, row)
	}
	if len(clean) == 0 {
		return Table{}, false
	}

	numCols := 0
	for _, row := range clean {
		numCols = max(numCols, len(row))
	}
	if maxCols > 0 && numCols > maxCols {
		numCols = maxCols
	}

	out := make([][]string, len(clean))
	for i, row := range clean {
		n := make([]string, numCols)
		copy(n, row)
		out[i] = n
	}

	return Table{Rows: out}, true
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if !isRuleCell(cell) {
			return false
		}
	}
	return true
}
