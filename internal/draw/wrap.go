package draw

import "strings"

// wrap breaks s into lines no wider than width as measured by measure.
// Words wider than width are split. s must already be in the font encoding,
// one byte per glyph.
func wrap(s string, width float64, measure func(string) float64) []string {
	if s == "" {
		return []string{""}
	}
	if width <= 0 {
		return []string{s}
	}

	var (
		lines []string
		cur   string
	)
	for _, word := range strings.Fields(s) {
		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		if measure(candidate) <= width {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
		for measure(word) > width {
			n := fitBytes(word, width, measure)
			lines = append(lines, word[:n])
			word = word[n:]
		}
		cur = word
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

// chop splits s into pieces no wider than width without touching spaces,
// for preformatted diagram lines.
func chop(s string, width float64, measure func(string) float64) []string {
	if width <= 0 || measure(s) <= width {
		return []string{s}
	}
	var out []string
	for s != "" {
		n := fitBytes(s, width, measure)
		out = append(out, s[:n])
		s = s[n:]
	}
	return out
}

// truncate shortens s with a trailing ellipsis so it fits width.
func truncate(s string, width float64, measure func(string) float64) string {
	if measure(s) <= width {
		return s
	}
	const ellipsis = "..."
	for n := len(s) - 1; n > 0; n-- {
		if measure(s[:n]+ellipsis) <= width {
			return strings.TrimRight(s[:n], " ") + ellipsis
		}
	}
	if measure(ellipsis) <= width {
		return ellipsis
	}
	return ""
}

// fitBytes returns the longest prefix length of s that fits width, at least 1.
func fitBytes(s string, width float64, measure func(string) float64) int {
	n := 1
	for n < len(s) && measure(s[:n+1]) <= width {
		n++
	}
	return n
}
