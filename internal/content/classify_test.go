package content_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		state    content.State
		line     string
		tag      content.LineTag
		text     string
		cells    []string
		points   int
		expState content.State
	}{
		{
			name:  "blank",
			line:  "   ",
			tag:   content.Blank,
			text:  "",
			state: content.State{InsideTable: true},
		},
		{
			name:     "problem header with substituted points",
			state:    content.State{Points: []int{30, 20}},
			line:     "Problem 1 (25 points)",
			tag:      content.ProblemHeader,
			text:     "Problem 1 (30 points)",
			points:   30,
			expState: content.State{Points: []int{30, 20}, ProblemIndex: 1},
		},
		{
			name:     "problem header keeps declared points when list is exhausted",
			state:    content.State{Points: []int{30}, ProblemIndex: 1},
			line:     "Problem 2 (15 pts)",
			tag:      content.ProblemHeader,
			text:     "Problem 2 (15 pts)",
			points:   15,
			expState: content.State{Points: []int{30}, ProblemIndex: 2},
		},
		{
			name: "keyword is case sensitive",
			line: "problem 1 (10 points)",
			tag:  content.PlainText,
			text: "problem 1 (10 points)",
		},
		{
			name:   "scored sub-question",
			line:   "a. [5 points] Define speedup.",
			tag:    content.SubQuestionScored,
			text:   "a. [5 points] Define speedup.",
			points: 5,
		},
		{
			name:   "scored sub-question without space",
			line:   "b.[10] Explain.",
			tag:    content.SubQuestionScored,
			text:   "b.[10] Explain.",
			points: 10,
		},
		{
			name: "plain sub-question",
			line: "c. What is Amdahl's law?",
			tag:  content.SubQuestionPlain,
			text: "c. What is Amdahl's law?",
		},
		{
			name:     "fence opens",
			line:     "```",
			tag:      content.FenceDelimiter,
			text:     "```",
			expState: content.State{InsideFence: true},
		},
		{
			name:     "fence with info word closes",
			state:    content.State{InsideFence: true},
			line:     "```text",
			tag:      content.FenceDelimiter,
			text:     "```text",
			expState: content.State{},
		},
		{
			name:     "diagram line keeps indentation",
			state:    content.State{InsideFence: true},
			line:     "   A --> B | C  ",
			tag:      content.DiagramLine,
			text:     "   A --> B | C",
			expState: content.State{InsideFence: true},
		},
		{
			name:     "separator",
			line:     "|---|:---:|",
			tag:      content.TableSeparator,
			text:     "|---|:---:|",
			expState: content.State{InsideTable: true},
		},
		{
			name:     "table row with outer pipes",
			line:     "| A | B |",
			tag:      content.TableRow,
			text:     "| A | B |",
			cells:    []string{"A", "B"},
			expState: content.State{InsideTable: true},
		},
		{
			name:     "table row keeps empty inner cells",
			line:     "| A |  | C |",
			tag:      content.TableRow,
			text:     "| A |  | C |",
			cells:    []string{"A", "", "C"},
			expState: content.State{InsideTable: true},
		},
		{
			name:     "table row without outer pipes",
			line:     "x | y | z",
			tag:      content.TableRow,
			text:     "x | y | z",
			cells:    []string{"x", "y", "z"},
			expState: content.State{InsideTable: true},
		},
		{
			name: "single pipe is plain text",
			line: "P(A|B) is conditional",
			tag:  content.PlainText,
			text: "P(A|B) is conditional",
		},
		{
			name: "notes header",
			line: "Important Notes - READ BEFORE STARTING",
			tag:  content.NotesHeader,
			text: "Important Notes - READ BEFORE STARTING",
		},
		{
			name:  "plain text ends table",
			state: content.State{InsideTable: true},
			line:  "Consider the following.",
			tag:   content.PlainText,
			text:  "Consider the following.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, cl := content.Classify(tc.state, tc.line)

			assert.Equal(t, tc.tag, cl.Tag)
			assert.Equal(t, tc.line, cl.Raw)
			assert.Equal(t, tc.text, cl.Text)
			assert.Equal(t, tc.cells, cl.Cells)
			assert.Equal(t, tc.points, cl.Points)
			assert.Equal(t, tc.expState, st)
		})
	}
}

func TestClassifyOrderInsideFence(t *testing.T) {
	lines := content.ClassifyAll("```\na. node\n| x | y |\n\n```\n| x | y |", nil)

	tags := make([]content.LineTag, len(lines))
	for i, l := range lines {
		tags[i] = l.Tag
	}
	assert.Equal(t, []content.LineTag{
		content.FenceDelimiter,
		content.SubQuestionPlain,
		content.DiagramLine,
		content.Blank,
		content.FenceDelimiter,
		content.TableRow,
	}, tags)
}

func TestProblemHeaderCounterAdvances(t *testing.T) {
	lines := content.ClassifyAll("Problem 1 (10 points)\ntext\nProblem 2 (10 points)\nProblem 3", []int{40, 35, 25})

	require.Len(t, lines, 4)
	assert.Equal(t, "Problem 1 (40 points)", lines[0].Text)
	assert.Equal(t, "Problem 2 (35 points)", lines[2].Text)
	assert.Equal(t, "Problem 3", lines[3].Text)
	assert.Equal(t, 25, lines[3].Points)
}

func TestLineTagJSON(t *testing.T) {
	raw, err := json.Marshal(content.ClassifiedLine{Raw: "x", Text: "x", Tag: content.NotesHeader})
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw":"x","text":"x","tag":"NotesHeader"}`, string(raw))

	var back content.ClassifiedLine
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, content.NotesHeader, back.Tag)

	assert.Error(t, json.Unmarshal([]byte(`{"tag":"Bogus"}`), &back))
	assert.Equal(t, "LineTag(42)", content.LineTag(42).String())
}
