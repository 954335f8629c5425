package content_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkesencan/bap-ai-tutor-sub002/internal/content"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name        string
		input       []byte
		expected    string
		expectedErr error
	}{
		{
			name:        "empty",
			input:       []byte(""),
			expectedErr: content.ErrInvalidInput,
		},
		{
			name:        "whitespace only",
			input:       []byte(" \r\n\t \n"),
			expectedErr: content.ErrEmptyContent,
		},
		{
			name:     "line endings",
			input:    []byte("a\r\nb\rc\n"),
			expected: "a\nb\nc",
		},
		{
			name:     "control characters",
			input:    []byte("Pro\x01blem\x7f 1\x0b\x0c\tend\x1b"),
			expected: "Problem 1\tend",
		},
		{
			name:     "unicode normalized to NFC",
			input:    []byte("Cafe\u0301"),
			expected: "Caf\u00e9",
		},
		{
			name:        "pdf bytes",
			input:       []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"),
			expectedErr: content.ErrInvalidInput,
		},
		{
			name:        "png bytes",
			input:       []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
			expectedErr: content.ErrInvalidInput,
		},
		{
			name:        "mostly control bytes",
			input:       []byte("\x01\x02\x03\x04\x05\x06\x07\x08\x0e\x0f ok"),
			expectedErr: content.ErrInvalidInput,
		},
		{
			name:     "text starting like an executable",
			input:    []byte("MZ transform\nProblem 1"),
			expected: "MZ transform\nProblem 1",
		},
		{
			name:     "text starting like mp3 tags",
			input:    []byte("ID3 tags store metadata\nProblem 1 (5 points)"),
			expected: "ID3 tags store metadata\nProblem 1 (5 points)",
		},
		{
			name:     "text starting like a gif",
			input:    []byte("GIF89a is a format\nProblem 1"),
			expected: "GIF89a is a format\nProblem 1",
		},
		{
			name:     "text starting like a pdf",
			input:    []byte("%PDF-1.7 is an ISO standard\na. Name one feature."),
			expected: "%PDF-1.7 is an ISO standard\na. Name one feature.",
		},
		{
			name:        "invalid utf-8",
			input:       []byte{'a', 0xff, 0xfe, 'b'},
			expectedErr: content.ErrInvalidInput,
		},
		{
			name:     "html is flattened",
			input:    []byte("<html><body><p>Problem 1 (10 points)</p><p>a. Explain.</p></body></html>"),
			expected: "Problem 1 (10 points)\na. Explain.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := content.Sanitize(tc.input)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestEmptyContentIsInvalidInput(t *testing.T) {
	_, err := content.SanitizeString("")
	require.ErrorIs(t, err, content.ErrInvalidInput)
	assert.ErrorIs(t, content.ErrEmptyContent, content.ErrInvalidInput)
}

func TestNewHeader(t *testing.T) {
	now := time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)

	h := content.NewHeader(" Parallel Computing ", "", "hard", []int{25, 25, 50}, "Problem 1\nsolve it", now)
	assert.Equal(t, content.Header{
		Subject:     "Parallel Computing",
		Title:       content.DefaultExamTitle,
		TotalPoints: 100,
		Difficulty:  "Hard",
		GeneratedOn: now,
	}, h)
	assert.Equal(t, "March 9, 2026", h.Date())

	h = content.NewHeader("PC", "Midterm", "", nil, "CSCI-UA.0480-051: Parallel Computing\nProblem 1", now)
	assert.True(t, h.Skip)
}

func TestIsTemplateFormatted(t *testing.T) {
	assert.True(t, content.IsTemplateFormatted("Midterm Exam (Mar 9th, 2023)"))
	assert.True(t, content.IsTemplateFormatted("Total: 100 points"))
	assert.True(t, content.IsTemplateFormatted("1. Explain caches [10 points]"))
	assert.True(t, content.IsTemplateFormatted("intro\nCSCI-UA.0480-051: Parallel Computing"))
	assert.False(t, content.IsTemplateFormatted("Problem 1\na. Explain caches."))
}

func TestEmphasisOf(t *testing.T) {
	assert.Equal(t, content.EmphasisCourse, content.EmphasisOf("CSCI-UA.0480-051: Parallel Computing"))
	assert.Equal(t, content.EmphasisTitle, content.EmphasisOf("Final Exam (May 2024)"))
	assert.Equal(t, content.EmphasisTotal, content.EmphasisOf("Total: 100 points"))
	assert.Equal(t, content.EmphasisNone, content.EmphasisOf("Subtotal: 3"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "+--+ -> |", content.Fold("┌──┐ → │"))
	assert.Equal(t, "a    b", content.Fold("a\tb"))
}
