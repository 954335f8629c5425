package content

import (
	"regexp"
	"strings"
	"time"
)

// DefaultExamTitle is printed when the caller gives no title.
const DefaultExamTitle = "Practice Exam"

// DefaultHeaderNotes are the instructions printed under a generated header.
var DefaultHeaderNotes = []string{
	"Answer all questions to the best of your ability",
	"Show all work for partial credit",
	"Use additional paper if needed",
	"Time limit: 90 minutes",
}

// Header is the academic title block printed above content that does not
// already carry its own.
type Header struct {
	Subject     string
	Title       string
	TotalPoints int
	Difficulty  string
	GeneratedOn time.Time
	// Skip is set when the content already has a title block.
	Skip bool
}

// NewHeader builds the header for a document.
func NewHeader(subject, title, difficulty string, points []int, text string, now time.Time) Header {
	if title == "" {
		title = DefaultExamTitle
	}
	total := 0
	for _, p := range points {
		total += p
	}
	return Header{
		Subject:     strings.TrimSpace(subject),
		Title:       title,
		TotalPoints: total,
		Difficulty:  capitalize(difficulty),
		GeneratedOn: now,
		Skip:        IsTemplateFormatted(text),
	}
}

// Date formats GeneratedOn the way the title block prints it.
func (h Header) Date() string {
	if h.GeneratedOn.IsZero() {
		return ""
	}
	return h.GeneratedOn.Format("January 2, 2006")
}

var (
	courseCodeRe    = regexp.MustCompile(`^[A-Z]{3,4}-[A-Z]{2}\.\d{4}-\d{3}:`)
	pointedItemRe   = regexp.MustCompile(`(?m)^\d+\.\s+.*\[\d+\s+points?\]`)
	examTitleWords  = []string{"Midterm Exam", "Practice Exam", "Final Exam"}
	formattedMarker = []string{"Total:", "Important Notes", "READ BEFORE", "Honor code", "points]", "pts)"}
)

// IsTemplateFormatted reports whether the text already has an exam title block
// or point annotations, in which case no header is generated.
func IsTemplateFormatted(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if courseCodeRe.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return containsAny(text, examTitleWords) ||
		containsAny(text, formattedMarker) ||
		pointedItemRe.MatchString(text)
}

// Emphasis classifies plain lines that belong to an embedded title block.
type Emphasis int

// Emphasis levels.
const (
	EmphasisNone Emphasis = iota
	// EmphasisCourse is a course-code line, e.g. "CSCI-UA.0480-051: Parallel Computing".
	EmphasisCourse
	// EmphasisTitle is an exam title line.
	EmphasisTitle
	// EmphasisTotal is a "Total: N points" line.
	EmphasisTotal
)

// EmphasisOf returns the emphasis of a plain text line.
func EmphasisOf(text string) Emphasis {
	switch {
	case courseCodeRe.MatchString(text):
		return EmphasisCourse
	case containsAny(text, examTitleWords):
		return EmphasisTitle
	case strings.HasPrefix(text, "Total:"):
		return EmphasisTotal
	}
	return EmphasisNone
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
