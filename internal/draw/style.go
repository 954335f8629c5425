package draw

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
)

// RGB is a colour with 0-255 components.
type RGB struct {
	R, G, B int
}

// ParseHex parses #rrggbb or #rgb.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("strconv.ParseUint failed: %w", err)
	}
	return RGB{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

// Style is the font and spacing of one kind of element.
type Style struct {
	Family string
	// Weight is a gofpdf style string: "", "B", "I" or "BI".
	Weight string
	Size   float64
	Color  RGB
	Indent float64
	Before float64
	After  float64
	// Leading is the line height as a multiple of Size.
	Leading float64
	// Align is a gofpdf alignment: "L", "C" or "R".
	Align string
}

func (s Style) lineHeight() float64 {
	return s.Size * s.Leading
}

// StyleSheet maps every element kind to its style.
type StyleSheet struct {
	Tags     map[content.LineTag]Style
	Diagram  map[DiagramKind]Style
	Emphasis map[content.Emphasis]Style
	Header   HeaderStyles

	TableHeaderFill RGB
	TableBorder     RGB
	TableText       RGB
	// BlankGap is the vertical space of a blank line.
	BlankGap float64
}

// HeaderStyles style the generated title block.
type HeaderStyles struct {
	Subject Style
	Title   Style
	Info    Style
	Rule    RGB
}

var (
	black  = RGB{0, 0, 0}
	ink    = RGB{0x33, 0x33, 0x33}
	red    = RGB{0xcc, 0x00, 0x00}
	royal  = RGB{0x41, 0x69, 0xe1}
	teal   = RGB{0x00, 0x6d, 0x77}
	purple = RGB{0x5b, 0x2c, 0x83}
	grey   = RGB{0x55, 0x55, 0x55}
)

// DefaultStyles are bold problem headers, a red notes header and indented
// blue sub-questions.
func DefaultStyles() StyleSheet {
	body := Style{Family: "Helvetica", Size: 10, Color: ink, Leading: 1.4, Align: "L", After: 3}

	with := func(base Style, mod func(*Style)) Style {
		mod(&base)
		return base
	}

	mono := Style{Family: "Courier", Size: 9, Color: black, Leading: 1.3, Align: "L", Indent: 18}

	return StyleSheet{
		Tags: map[content.LineTag]Style{
			content.PlainText: body,
			content.ProblemHeader: with(body, func(s *Style) {
				s.Weight, s.Size, s.Color, s.Before, s.After = "B", 12, RGB{0x1a, 0x1a, 0x1a}, 8, 4
			}),
			content.SubQuestionScored: with(body, func(s *Style) {
				s.Indent, s.Color, s.Size, s.Before = 18, royal, 10.5, 2
			}),
			content.SubQuestionPlain: with(body, func(s *Style) {
				s.Indent, s.Color, s.Before = 18, teal, 2
			}),
			content.NotesHeader: with(body, func(s *Style) {
				s.Weight, s.Size, s.Color, s.After = "B", 12, red, 5
			}),
			content.DiagramLine: mono,
		},
		Diagram: map[DiagramKind]Style{
			DiagramGeneric:    mono,
			DiagramNodes:      with(mono, func(s *Style) { s.Weight, s.Color = "B", RGB{0x1f, 0x3a, 0x93} }),
			DiagramArrows:     with(mono, func(s *Style) { s.Color = purple }),
			DiagramConnectors: with(mono, func(s *Style) { s.Color = grey }),
		},
		Emphasis: map[content.Emphasis]Style{
			content.EmphasisCourse: with(body, func(s *Style) { s.Weight, s.Size, s.Align, s.Color, s.After = "B", 16, "C", black, 4 }),
			content.EmphasisTitle:  with(body, func(s *Style) { s.Weight, s.Size, s.Align, s.Color, s.After = "B", 14, "C", black, 4 }),
			content.EmphasisTotal:  with(body, func(s *Style) { s.Weight, s.Size, s.Align, s.Color, s.After = "B", 12, "C", black, 10 }),
		},
		Header: HeaderStyles{
			Subject: with(body, func(s *Style) { s.Weight, s.Size, s.Align, s.Color, s.After = "B", 16, "C", black, 4 }),
			Title:   with(body, func(s *Style) { s.Weight, s.Size, s.Align, s.Color, s.After = "B", 14, "C", black, 6 }),
			Info:    with(body, func(s *Style) { s.Size, s.Align, s.Color, s.After = 11, "C", black, 2 }),
			Rule:    ink,
		},
		TableHeaderFill: RGB{0xf5, 0xf5, 0xf5},
		TableBorder:     ink,
		TableText:       black,
		BlankGap:        6,
	}
}

// Apply overrides styles from caller hints. Unknown keys are ignored; the
// first malformed value is returned as an error after all valid hints apply.
func (ss *StyleSheet) Apply(hints map[string]string) error {
	var firstErr error
	fail := func(key string, err error) {
		if firstErr == nil {
			firstErr = fmt.Errorf("style hint %s: %w", key, err)
		}
	}

	colorTags := map[string][]content.LineTag{
		"problem.color":            {content.ProblemHeader},
		"subquestion.color":        {content.SubQuestionScored, content.SubQuestionPlain},
		"subquestion_scored.color": {content.SubQuestionScored},
		"subquestion_plain.color":  {content.SubQuestionPlain},
		"notes.color":              {content.NotesHeader},
		"text.color":               {content.PlainText},
	}

	// Sorted application keeps "subquestion_scored" winning over "subquestion".
	for _, key := range []string{
		"problem.color", "subquestion.color", "subquestion_scored.color",
		"subquestion_plain.color", "notes.color", "text.color",
	} {
		v, ok := hints[key]
		if !ok {
			continue
		}
		c, err := ParseHex(v)
		if err != nil {
			fail(key, err)
			continue
		}
		for _, tag := range colorTags[key] {
			st := ss.Tags[tag]
			st.Color = c
			ss.Tags[tag] = st
		}
	}

	if v, ok := hints["diagram.color"]; ok {
		if c, err := ParseHex(v); err != nil {
			fail("diagram.color", err)
		} else {
			for k, st := range ss.Diagram {
				st.Color = c
				ss.Diagram[k] = st
			}
		}
	}

	for key, dst := range map[string]*RGB{
		"table.header_fill": &ss.TableHeaderFill,
		"table.border":      &ss.TableBorder,
		"table.text":        &ss.TableText,
	} {
		v, ok := hints[key]
		if !ok {
			continue
		}
		c, err := ParseHex(v)
		if err != nil {
			fail(key, err)
			continue
		}
		*dst = c
	}

	if v, ok := hints["body.size"]; ok {
		size, err := strconv.ParseFloat(v, 64)
		switch {
		case err != nil:
			fail("body.size", err)
		case size < 6 || size > 18:
			fail("body.size", fmt.Errorf("size %.1f out of range 6-18", size))
		default:
			for _, tag := range []content.LineTag{content.PlainText, content.SubQuestionPlain} {
				st := ss.Tags[tag]
				st.Size = size
				ss.Tags[tag] = st
			}
		}
	}

	return firstErr
}

// Clone returns a deep copy so per-call hints never leak into the renderer.
func (ss StyleSheet) Clone() StyleSheet {
	out := ss
	out.Tags = make(map[content.LineTag]Style, len(ss.Tags))
	for k, v := range ss.Tags {
		out.Tags[k] = v
	}
	out.Diagram = make(map[DiagramKind]Style, len(ss.Diagram))
	for k, v := range ss.Diagram {
		out.Diagram[k] = v
	}
	out.Emphasis = make(map[content.Emphasis]Style, len(ss.Emphasis))
	for k, v := range ss.Emphasis {
		out.Emphasis[k] = v
	}
	return out
}
