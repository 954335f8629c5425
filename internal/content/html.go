package content

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// FlattenHTML converts generator output that arrived as HTML into the plain
// line vocabulary understood by Classify. Single-column layout tables are
// unwrapped first; remaining data tables become pipe rows.
func FlattenHTML(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("html.Parse failed: %w", err)
	}

	maxIterations := 10
	for range maxIterations {
		if !unwrapLayoutTables(doc) {
			break
		}
	}

	f := &flattener{}
	f.walk(doc)
	f.breakLine()

	return strings.Join(f.lines, "\n"), nil
}

type flattener struct {
	lines         []string
	cur           strings.Builder
	trailingSpace bool
	inPre         bool
}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "ul": true, "ol": true, "blockquote": true, "hr": true,
}

func (f *flattener) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		f.text(n.Data)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f.walk(c)
		}
		return
	}

	switch n.Data {
	case "script", "style", "head":
		return
	case "br":
		f.breakLine()
		return
	case "table":
		f.breakLine()
		f.table(n)
		f.lines = append(f.lines, "")
		return
	case "pre":
		f.breakLine()
		f.lines = append(f.lines, "```")
		f.inPre = true
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f.walk(c)
		}
		if f.cur.Len() > 0 {
			f.flushRaw()
		}
		f.inPre = false
		f.lines = append(f.lines, "```")
		return
	case "li":
		f.breakLine()
		f.cur.WriteString("- ")
		f.trailingSpace = true
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f.walk(c)
		}
		f.breakLine()
		return
	}

	block := blockElements[n.Data]
	if block {
		f.breakLine()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		f.walk(c)
	}
	if block {
		f.breakLine()
	}
}

func (f *flattener) text(s string) {
	if f.inPre {
		parts := strings.Split(s, "\n")
		for i, p := range parts {
			if i > 0 {
				f.flushRaw()
			}
			f.cur.WriteString(p)
		}
		return
	}

	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			f.space()
		}
		return
	}
	if isSpace(s[0]) {
		f.space()
	}
	f.cur.WriteString(strings.Join(fields, " "))
	f.trailingSpace = false
	if isSpace(s[len(s)-1]) {
		f.space()
	}
}

func (f *flattener) space() {
	if f.cur.Len() > 0 && !f.trailingSpace {
		f.cur.WriteByte(' ')
		f.trailingSpace = true
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (f *flattener) flushRaw() {
	f.lines = append(f.lines, f.cur.String())
	f.cur.Reset()
	f.trailingSpace = false
}

func (f *flattener) breakLine() {
	line := strings.TrimSpace(f.cur.String())
	f.cur.Reset()
	f.trailingSpace = false
	if line != "" {
		f.lines = append(f.lines, line)
	}
}

func (f *flattener) table(table *html.Node) {
	rows := collectRows(table)
	for i, row := range rows {
		f.lines = append(f.lines, "| "+strings.Join(row.cells, " | ")+" |")
		if i == 0 && row.header {
			sep := make([]string, len(row.cells))
			for j := range sep {
				sep[j] = "---"
			}
			f.lines = append(f.lines, "|"+strings.Join(sep, "|")+"|")
		}
	}
}

type htmlRow struct {
	cells  []string
	header bool
}

func collectRows(table *html.Node) []htmlRow {
	var rows []htmlRow
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			row := htmlRow{header: true}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
					continue
				}
				if c.Data == "td" {
					row.header = false
				}
				row.cells = append(row.cells, cellText(c))
			}
			if len(row.cells) > 0 && hasTextContent(n) {
				rows = append(rows, row)
			}
			return
		}
		// Nested tables are flattened into the enclosing cell text.
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(table)
	return rows
}

func cellText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	// Pipes inside a cell would split it again during classification.
	return strings.ReplaceAll(strings.Join(strings.Fields(b.String()), " "), "|", "/")
}

// unwrapLayoutTables replaces single-column tables used purely for layout
// with their content. It reports whether anything changed.
func unwrapLayoutTables(n *html.Node) bool {
	changed := false

	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if unwrapLayoutTables(child) {
			changed = true
		}
		child = next
	}

	if n.Type == html.ElementNode && n.Data == "table" && isLayoutTable(n) {
		unwrapTable(n)
		changed = true
	}

	return changed
}

func isLayoutTable(table *html.Node) bool {
	if hasTableHeaders(table) || countTableColumns(table) > 1 {
		return false
	}

	for _, attr := range table.Attr {
		if attr.Key == "id" && (attr.Val == "main" || strings.Contains(attr.Val, "layout") || strings.Contains(attr.Val, "wrapper")) {
			return true
		}
	}

	cellCounts := collectRowCellCounts(table)
	if countContentRows(table) > 5 && allEqual(cellCounts) {
		return false
	}

	return true
}

func hasTableHeaders(table *html.Node) bool {
	found := false
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "th" || n.Data == "thead") {
			found = true
			return
		}
		for c := n.FirstChild; c != nil && !found; c = c.NextSibling {
			visit(c)
		}
	}
	visit(table)
	return found
}

func countTableColumns(table *html.Node) int {
	maxCols := 0
	for _, n := range collectRowCellCounts(table) {
		maxCols = max(maxCols, n)
	}
	return maxCols
}

func countContentRows(table *html.Node) int {
	rows := 0
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" && hasTextContent(n) {
			rows++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(table)
	return rows
}

func hasTextContent(n *html.Node) bool {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data) != ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasTextContent(c) {
			return true
		}
	}
	return false
}

func collectRowCellCounts(table *html.Node) []int {
	var counts []int
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			cols := 0
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cols++
				}
			}
			counts = append(counts, cols)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(table)
	return counts
}

func allEqual(counts []int) bool {
	if len(counts) < 2 {
		return false
	}
	for _, c := range counts[1:] {
		if c != counts[0] {
			return false
		}
	}
	return true
}

func unwrapTable(table *html.Node) {
	var content []*html.Node
	extractTableContent(table, &content)

	parent := table.Parent
	if parent == nil {
		return
	}
	for _, node := range content {
		parent.InsertBefore(node, table)
	}
	parent.RemoveChild(table)
}

func extractTableContent(n *html.Node, content *[]*html.Node) {
	switch {
	case n.Type == html.ElementNode && isTableElement(n.Data):
		before := len(*content)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractTableContent(c, content)
		}
		if n.Data == "tr" && len(*content) > before {
			*content = append(*content, &html.Node{Type: html.ElementNode, Data: "br"})
		}
	case n.Type == html.ElementNode:
		*content = append(*content, cloneNode(n))
	case n.Type == html.TextNode && strings.TrimSpace(n.Data) != "":
		*content = append(*content, &html.Node{Type: html.TextNode, Data: n.Data})
	}
}

func isTableElement(tag string) bool {
	switch tag {
	case "table", "tbody", "thead", "tfoot", "tr", "td", "th":
		return true
	}
	return false
}

func cloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type: n.Type,
		Data: n.Data,
		Attr: append([]html.Attribute{}, n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}
