package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
)

// ClassifyExamRequest is the content to classify.
type ClassifyExamRequest struct {
	Content        string `json:"content" jsonschema:"exam text to classify"`
	QuestionPoints []int  `json:"question_points,omitempty" jsonschema:"point value of each problem in order"`
}

// ClassifyExamResponse is the render stream without blank lines.
type ClassifyExamResponse struct {
	Nodes             []StreamNode `json:"nodes" jsonschema:"lines and tables in render order"`
	Problems          int          `json:"problems" jsonschema:"number of problem headers"`
	Tables            int          `json:"tables" jsonschema:"number of tables"`
	TemplateFormatted bool         `json:"template_formatted" jsonschema:"the content carries its own title block, so no header is added"`
}

// StreamNode is one classified line or one table.
type StreamNode struct {
	Kind     string     `json:"kind" jsonschema:"line or table"`
	Tag      string     `json:"tag,omitempty" jsonschema:"line classification"`
	Text     string     `json:"text,omitempty" jsonschema:"rendered line text"`
	Points   int        `json:"points,omitempty" jsonschema:"points of a problem header or scored sub-question"`
	Emphasis string     `json:"emphasis,omitempty" jsonschema:"course, title or total for emphasized plain lines"`
	Rows     [][]string `json:"rows,omitempty" jsonschema:"table rows, the first is the header"`
}

var emphasisNames = map[content.Emphasis]string{
	content.EmphasisCourse: "course",
	content.EmphasisTitle:  "title",
	content.EmphasisTotal:  "total",
}

type classifySvc interface {
	Classify(text string, points []int) (content.Stream, error)
}

// NewClassifyExam creates a new ClassifyExam tool.
func NewClassifyExam(svc classifySvc) *ClassifyExam {
	return &ClassifyExam{svc: svc}
}

// ClassifyExam exposes the line classifier.
type ClassifyExam struct {
	svc classifySvc
}

// ClassifyExam classifies the request content.
func (t *ClassifyExam) ClassifyExam(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ClassifyExamRequest,
) (*mcp.CallToolResult, ClassifyExamResponse, error) {
	stream, err := t.svc.Classify(input.Content, input.QuestionPoints)
	if err != nil {
		return nil, ClassifyExamResponse{}, fmt.Errorf("classify failed: %w", err)
	}

	resp := ClassifyExamResponse{
		Nodes:             make([]StreamNode, 0, len(stream)),
		TemplateFormatted: content.IsTemplateFormatted(input.Content),
	}
	for _, n := range stream.Compact() {
		switch v := n.(type) {
		case content.Table:
			resp.Tables++
			resp.Nodes = append(resp.Nodes, StreamNode{Kind: "table", Rows: v.Rows})
		case content.ClassifiedLine:
			node := StreamNode{Kind: "line", Tag: v.Tag.String(), Text: v.Text, Points: v.Points}
			switch v.Tag {
			case content.ProblemHeader:
				resp.Problems++
			case content.PlainText:
				node.Emphasis = emphasisNames[content.EmphasisOf(v.Text)]
			}
			resp.Nodes = append(resp.Nodes, node)
		}
	}

	return nil, resp, nil
}
