package draw_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
	"github.com/berkesencan/bap-ai-tutor-sub002/internal/draw"
)

func init() {
	api.DisableConfigDir()
}

func longExam() string {
	var b strings.Builder
	for p := 1; p <= 6; p++ {
		fmt.Fprintf(&b, "Problem %d (10 points)\n", p)
		b.WriteString(strings.Repeat("Explain how a write-back cache interacts with coherence traffic. ", 30))
		b.WriteString("\n\n| Core | Hits | Misses |\n|---|---|---|\n")
		for r := 0; r < 12; r++ {
			fmt.Fprintf(&b, "| c%d | %d | %d |\n", r, r*10, r)
		}
		b.WriteString("\na. [4 points] Compute the hit rate.\nb. Sketch the protocol.\n```\n[Idle] --> [Shared]\n   |          |\n   v          v\n[Modified] <-- [Exclusive]\n```\n\n")
	}
	return b.String()
}

func TestRenderPagination(t *testing.T) {
	text, err := content.SanitizeString(longExam())
	require.NoError(t, err)

	stream := content.BuildStream(text, content.StreamOptions{Points: []int{20, 20, 20, 15, 15, 10}})
	header := content.NewHeader("Parallel Computing", "", "medium", []int{20, 20, 20, 15, 15, 10}, text,
		time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC))

	r := draw.New(draw.DefaultConfig(), nil)
	out, stats, err := r.Render(context.Background(), draw.Input{Title: "Practice Exam", Header: header, Stream: stream})
	require.NoError(t, err)

	assert.Greater(t, stats.Pages, 1)
	assert.Equal(t, 6, stats.Tables)
	assert.Zero(t, stats.TableFallbacks)
	require.NotEmpty(t, stats.Placements)

	margin := draw.DefaultConfig().Margin
	for _, p := range stats.Placements {
		assert.LessOrEqual(t, p.Bottom, stats.ContentBottom+1e-6, "%s on page %d overflows", p.Kind, p.Page)
		assert.GreaterOrEqual(t, p.Top, margin-1e-6)
		assert.LessOrEqual(t, p.Page, stats.Pages)
	}

	require.NoError(t, api.Validate(bytes.NewReader(out), model.NewDefaultConfiguration()))

	rd, err := pdf.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	assert.Equal(t, stats.Pages, rd.NumPage())
}

func TestRenderOversizedParagraphFlows(t *testing.T) {
	paragraph := strings.Repeat("word ", 4000)
	stream := content.BuildStream(paragraph, content.StreamOptions{})

	_, stats, err := draw.New(draw.DefaultConfig(), nil).Render(context.Background(), draw.Input{
		Header: content.Header{Skip: true},
		Stream: stream,
	})
	require.NoError(t, err)

	assert.Greater(t, stats.Pages, 2)
	for _, p := range stats.Placements {
		assert.LessOrEqual(t, p.Bottom, stats.ContentBottom+1e-6)
	}
}

func TestRenderTableFallback(t *testing.T) {
	cells := make([]string, 30)
	for i := range cells {
		cells[i] = fmt.Sprintf("h%d", i)
	}
	row := "| " + strings.Join(cells, " | ") + " |"
	stream := content.BuildStream("Problem 1\n"+row+"\n"+row+"\nafter", content.StreamOptions{})
	require.Len(t, stream.Tables(), 1)

	log, hook := logtest.NewNullLogger()
	out, stats, err := draw.New(draw.DefaultConfig(), log).Render(context.Background(), draw.Input{
		Header: content.Header{Skip: true},
		Stream: stream,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Tables)
	assert.Equal(t, 1, stats.TableFallbacks)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "table drawn as text", entry.Message)

	var tableErr *content.TableRenderError
	require.ErrorAs(t, entry.Data[logrus.ErrorKey].(error), &tableErr)
	assert.Equal(t, 30, tableErr.Cols)

	rd, err := pdf.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	plain, err := rd.GetPlainText()
	require.NoError(t, err)
	text, err := io.ReadAll(plain)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Row 1:")
	assert.Contains(t, string(text), "after")
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := draw.New(draw.DefaultConfig(), nil).Render(ctx, draw.Input{
		Stream: content.BuildStream("Problem 1", content.StreamOptions{}),
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRenderCustomPageSize(t *testing.T) {
	_, stats, err := draw.New(draw.DefaultConfig(), nil).Render(context.Background(), draw.Input{
		Header:     content.Header{Skip: true},
		Stream:     content.BuildStream("Problem 1\nshort", content.StreamOptions{}),
		PageWidth:  612,
		PageHeight: 792,
	})
	require.NoError(t, err)
	assert.InDelta(t, 792-72, stats.ContentBottom, 1e-6)
}

func TestStyleSheetApply(t *testing.T) {
	ss := draw.DefaultStyles()
	err := ss.Apply(map[string]string{
		"problem.color":            "#112233",
		"subquestion.color":        "#abc",
		"subquestion_scored.color": "#000001",
		"table.border":             "#ff0000",
		"body.size":                "12",
		"notes.color":              "nope",
		"unknown.key":              "ignored",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notes.color")

	assert.Equal(t, draw.RGB{R: 0x11, G: 0x22, B: 0x33}, ss.Tags[content.ProblemHeader].Color)
	assert.Equal(t, draw.RGB{R: 0xaa, G: 0xbb, B: 0xcc}, ss.Tags[content.SubQuestionPlain].Color)
	assert.Equal(t, draw.RGB{R: 0, G: 0, B: 1}, ss.Tags[content.SubQuestionScored].Color)
	assert.Equal(t, draw.RGB{R: 0xff}, ss.TableBorder)
	assert.Equal(t, 12.0, ss.Tags[content.PlainText].Size)
	assert.Equal(t, draw.DefaultStyles().Tags[content.NotesHeader].Color, ss.Tags[content.NotesHeader].Color)
}

func TestStyleSheetClone(t *testing.T) {
	base := draw.DefaultStyles()
	clone := base.Clone()
	require.NoError(t, clone.Apply(map[string]string{"problem.color": "#010203"}))
	assert.NotEqual(t, base.Tags[content.ProblemHeader].Color, clone.Tags[content.ProblemHeader].Color)
}

func TestClassifyDiagram(t *testing.T) {
	cases := []struct {
		line     string
		expected draw.DiagramKind
	}{
		{"[Idle] --> [Shared]", draw.DiagramNodes},
		{"(P1)   (P2)", draw.DiagramNodes},
		{"A --> B", draw.DiagramArrows},
		{"x → y", draw.DiagramArrows},
		{"   |          |", draw.DiagramConnectors},
		{"  /  \\", draw.DiagramConnectors},
		{"plain words", draw.DiagramGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			assert.Equal(t, tc.expected, draw.ClassifyDiagram(tc.line))
		})
	}
}
