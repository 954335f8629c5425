package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LineTag is the semantic class of one line of exam text.
type LineTag int

// Line tags, in no particular precedence; see Classify for matching order.
const (
	Blank LineTag = iota
	ProblemHeader
	SubQuestionScored
	SubQuestionPlain
	TableRow
	TableSeparator
	FenceDelimiter
	DiagramLine
	NotesHeader
	PlainText
)

var tagNames = [...]string{
	Blank:             "Blank",
	ProblemHeader:     "ProblemHeader",
	SubQuestionScored: "SubQuestionScored",
	SubQuestionPlain:  "SubQuestionPlain",
	TableRow:          "TableRow",
	TableSeparator:    "TableSeparator",
	FenceDelimiter:    "FenceDelimiter",
	DiagramLine:       "DiagramLine",
	NotesHeader:       "NotesHeader",
	PlainText:         "PlainText",
}

func (t LineTag) String() string {
	if t < 0 || int(t) >= len(tagNames) {
		return "LineTag(" + strconv.Itoa(int(t)) + ")"
	}
	return tagNames[t]
}

// MarshalText encodes the tag by name.
func (t LineTag) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(tagNames) {
		return nil, fmt.Errorf("unknown line tag %d", int(t))
	}
	return []byte(tagNames[t]), nil
}

// UnmarshalText decodes a tag name.
func (t *LineTag) UnmarshalText(b []byte) error {
	for i, name := range tagNames {
		if name == string(b) {
			*t = LineTag(i)
			return nil
		}
	}
	return fmt.Errorf("unknown line tag %q", string(b))
}

// ClassifiedLine is one input line with its tag.
type ClassifiedLine struct {
	Raw string `json:"raw"`
	// Text is what gets rendered: the trimmed line, with the point value of a
	// problem header substituted.
	Text   string   `json:"text"`
	Tag    LineTag  `json:"tag"`
	Cells  []string `json:"cells,omitempty"`
	Points int      `json:"points,omitempty"`
}

// DefaultNotesKeywords mark the instructions block of an exam.
var DefaultNotesKeywords = []string{"Important Notes", "READ BEFORE"}

// State is the scanner state threaded through Classify.
type State struct {
	InsideFence bool
	InsideTable bool
	// ProblemIndex counts problem headers seen so far.
	ProblemIndex int
	// Points holds per-problem point values substituted into headers.
	Points []int
	// NotesKeywords overrides DefaultNotesKeywords when non-nil.
	NotesKeywords []string
}

var (
	problemHeaderRe = regexp.MustCompile(`^Problem\s+\d+`)
	declaredPointRe = regexp.MustCompile(`\((\d+)\s*(points?|pts?)\)`)
	scoredSubRe     = regexp.MustCompile(`^[a-z]\.\s*\[(\d+)`)
	plainSubRe      = regexp.MustCompile(`^[a-z]\.\s`)
	fenceRe         = regexp.MustCompile("^(```|~~~)[A-Za-z0-9_+-]*$")
)

// Classify tags one line. It is a pure step of a fold over the input lines:
// the returned State must be passed to the next call.
func Classify(st State, raw string) (State, ClassifiedLine) {
	line := strings.TrimSpace(raw)
	cl := ClassifiedLine{Raw: raw, Text: line}

	switch {
	case line == "":
		cl.Tag = Blank
		st.InsideTable = false

	case problemHeaderRe.MatchString(line):
		cl.Tag = ProblemHeader
		cl.Text, cl.Points = substitutePoints(line, st.Points, st.ProblemIndex)
		st.ProblemIndex++
		st.InsideTable = false

	case scoredSubRe.MatchString(line):
		cl.Tag = SubQuestionScored
		m := scoredSubRe.FindStringSubmatch(line)
		cl.Points, _ = strconv.Atoi(m[1])
		st.InsideTable = false

	case plainSubRe.MatchString(line):
		cl.Tag = SubQuestionPlain
		st.InsideTable = false

	case fenceRe.MatchString(line):
		cl.Tag = FenceDelimiter
		st.InsideFence = !st.InsideFence
		st.InsideTable = false

	case st.InsideFence:
		cl.Tag = DiagramLine
		// Diagram content keeps its indentation.
		cl.Text = strings.TrimRight(raw, " \t")

	case IsTableSeparator(line):
		cl.Tag = TableSeparator
		st.InsideTable = true

	case IsTableRow(line):
		cl.Tag = TableRow
		cl.Cells = SplitRow(line)
		st.InsideTable = true

	case containsAny(line, notesKeywords(st)):
		cl.Tag = NotesHeader
		st.InsideTable = false

	default:
		cl.Tag = PlainText
		st.InsideTable = false
	}

	return st, cl
}

// ClassifyAll folds Classify over every line of text.
func ClassifyAll(text string, points []int) []ClassifiedLine {
	st := State{Points: points}
	lines := strings.Split(text, "\n")
	out := make([]ClassifiedLine, 0, len(lines))
	for _, l := range lines {
		var cl ClassifiedLine
		st, cl = Classify(st, l)
		out = append(out, cl)
	}
	return out
}

func substitutePoints(line string, points []int, idx int) (string, int) {
	declared := 0
	if m := declaredPointRe.FindStringSubmatch(line); m != nil {
		declared, _ = strconv.Atoi(m[1])
	}

	if idx >= len(points) {
		return line, declared
	}

	p := points[idx]
	if declared == 0 && declaredPointRe.FindStringIndex(line) == nil {
		return line, p
	}

	replaced := declaredPointRe.ReplaceAllLiteralString(line, fmt.Sprintf("(%d points)", p))
	return replaced, p
}

func notesKeywords(st State) []string {
	if st.NotesKeywords != nil {
		return st.NotesKeywords
	}
	return DefaultNotesKeywords
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// IsTableSeparator reports whether line is a decorative table rule such as
// |---|:--:|. It contains at least one pipe and nothing but - = : | and spaces.
func IsTableSeparator(line string) bool {
	if !strings.Contains(line, "|") {
		return false
	}
	for _, r := range line {
		switch r {
		case '-', '=', ':', '|', ' ', '\t':
		default:
			return false
		}
	}
	return true
}

// IsTableRow reports whether line is a pipe-delimited data row: at least two
// pipes and at least one cell with real content.
func IsTableRow(line string) bool {
	if strings.Count(line, "|") < 2 {
		return false
	}
	for _, cell := range SplitRow(line) {
		if !isRuleCell(cell) {
			return true
		}
	}
	return false
}

// SplitRow splits a pipe row into trimmed cells. Only the empty leading and
// trailing pieces produced by outer pipes are dropped; empty inner cells are
// kept so columns stay aligned.
func SplitRow(line string) []string {
	trimmed := strings.TrimSpace(line)
	parts := strings.Split(trimmed, "|")
	if strings.HasPrefix(trimmed, "|") {
		parts = parts[1:]
	}
	if strings.HasSuffix(trimmed, "|") && len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}

	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// isRuleCell reports a cell that is empty or made only of rule characters.
func isRuleCell(cell string) bool {
	for _, r := range cell {
		switch r {
		case '-', '=', ':', ' ', '\t':
		default:
			return false
		}
	}
	return true
}
