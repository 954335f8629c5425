package content

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"
)

const mimeHTML = "text/html"

// Text may carry a few stray control bytes, which Sanitize drops.
const minStrayControls = 8

// Sanitize normalizes raw exam text before classification: non-text input is
// rejected, HTML is flattened into plain lines, Unicode is NFC-normalized,
// line endings become \n and control characters other than tab and newline
// are removed.
func Sanitize(raw []byte) (string, error) {
	if err := checkTextual(raw); err != nil {
		return "", err
	}

	text := string(raw)
	if isHTML(raw) {
		flat, err := FlattenHTML(raw)
		if err != nil {
			return "", fmt.Errorf("FlattenHTML failed: %w", err)
		}
		text = flat
	}

	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.Map(dropControl, text)
	text = strings.TrimSpace(text)

	if text == "" {
		return "", ErrEmptyContent
	}

	return text, nil
}

// SanitizeString is Sanitize for string input.
func SanitizeString(s string) (string, error) {
	return Sanitize([]byte(s))
}

// checkTextual accepts valid UTF-8 without NUL bytes and with few control
// bytes, whatever its leading bytes look like.
func checkTextual(raw []byte) error {
	if isText(raw) {
		return nil
	}
	return fmt.Errorf("%w: content looks like %s, not text", ErrInvalidInput, mimetype.Detect(raw).String())
}

func isText(raw []byte) bool {
	if !utf8.Valid(raw) || bytes.IndexByte(raw, 0) >= 0 {
		return false
	}

	controls := 0
	for _, b := range raw {
		if b == 0x7f || b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			controls++
		}
	}
	return controls <= max(minStrayControls, len(raw)/100)
}

func isHTML(raw []byte) bool {
	return mimetype.Detect(raw).Is(mimeHTML)
}

func dropControl(r rune) rune {
	switch {
	case r == '\t' || r == '\n':
		return r
	case r < 0x20 || r == 0x7f:
		return -1
	default:
		return r
	}
}
