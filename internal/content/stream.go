package content

import (
	"encoding/json"
	"strings"
)

// Node is an element of a render stream: a ClassifiedLine or a Table.
type Node interface {
	node()
}

func (ClassifiedLine) node() {}

// Stream is the ordered, table-folded content handed to a renderer.
type Stream []Node

// StreamOptions control stream construction.
type StreamOptions struct {
	Points        []int
	MaxColumns    int
	NotesKeywords []string
}

// BuildStream classifies every line of sanitized text and folds runs of table
// rows into Table nodes. Separator lines never reach the stream. The line
// that ends a table run is kept and follows the table.
func BuildStream(text string, opts StreamOptions) Stream {
	st := State{Points: opts.Points, NotesKeywords: opts.NotesKeywords}
	acc := &Accumulator{MaxColumns: opts.MaxColumns}

	lines := strings.Split(text, "\n")
	stream := make(Stream, 0, len(lines))
	flush := func() {
		if !acc.Pending() {
			return
		}
		if t, ok := acc.Flush(); ok {
			stream = append(stream, t)
		}
	}

	for _, raw := range lines {
		var cl ClassifiedLine
		st, cl = Classify(st, raw)

		switch cl.Tag {
		case TableRow:
			acc.Add(cl.Cells)
		case TableSeparator:
		default:
			flush()
			stream = append(stream, cl)
		}
	}
	flush()

	return stream
}

// Tables returns the tables of the stream in order.
func (s Stream) Tables() []Table {
	var out []Table
	for _, n := range s {
		if t, ok := n.(Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Lines returns the classified lines of the stream in order.
func (s Stream) Lines() []ClassifiedLine {
	var out []ClassifiedLine
	for _, n := range s {
		if l, ok := n.(ClassifiedLine); ok {
			out = append(out, l)
		}
	}
	return out
}

// Compact drops blank lines; renderers still see them, callers inspecting
// structure usually do not want them.
func (s Stream) Compact() Stream {
	out := make(Stream, 0, len(s))
	for _, n := range s {
		if l, ok := n.(ClassifiedLine); ok && l.Tag == Blank {
			continue
		}
		out = append(out, n)
	}
	return out
}

type jsonNode struct {
	Kind  string          `json:"kind"`
	Line  *ClassifiedLine `json:"line,omitempty"`
	Table *Table          `json:"table,omitempty"`
}

// MarshalJSON encodes each node with a kind discriminator.
func (s Stream) MarshalJSON() ([]byte, error) {
	out := make([]jsonNode, 0, len(s))
	for _, n := range s {
		switch v := n.(type) {
		case ClassifiedLine:
			out = append(out, jsonNode{Kind: "line", Line: &v})
		case Table:
			out = append(out, jsonNode{Kind: "table", Table: &v})
		}
	}
	return json.Marshal(out)
}
