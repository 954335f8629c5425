package markup

import (
	"regexp"
	"strconv"
	"strings"
)

// exponentRe matches numeric powers such as 10^9 that are typeset as math.
var exponentRe = regexp.MustCompile(`(\d+)\^(\d+)`)

var reserved = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`$`, `\$`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`{`, `\{`,
	`}`, `\}`,
	`_`, `\_`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
)

// Placeholders use private-use runes, which never occur in exam text and are
// left alone by the reserved-character replacer.
const (
	placeholderOpen  = '\uE000'
	placeholderClose = '\uE001'
)

var placeholderRe = regexp.MustCompile("\uE000(\\d+)\uE001")

// Escape makes s safe to emit as LaTeX text. Numeric exponents and Greek or
// math symbols become inline math, every other reserved character is escaped
// exactly once and runes pdflatex cannot read become '?'.
// Escape is not idempotent: apply it once per emission.
func Escape(s string) string {
	var powers []string
	s = exponentRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := exponentRe.FindStringSubmatch(m)
		powers = append(powers, "$"+parts[1]+"^{"+parts[2]+"}$")
		return string(placeholderOpen) + strconv.Itoa(len(powers)-1) + string(placeholderClose)
	})

	s = reserved.Replace(s)
	s = unreadable(mathSymbols.Replace(s))

	if len(powers) == 0 {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		i, err := strconv.Atoi(placeholderRe.FindStringSubmatch(m)[1])
		if err != nil || i >= len(powers) {
			return m
		}
		return powers[i]
	})
}

// verbatimEnd would close a verbatim environment early.
const verbatimEnd = `\end{verbatim}`

// Verbatim prepares a line for a verbatim environment. Nothing is escaped
// except a literal environment terminator; symbols are spelled out.
func Verbatim(s string) string {
	s = unreadable(symbolNames.Replace(s))
	return strings.ReplaceAll(s, verbatimEnd, `\end {verbatim}`)
}

var (
	fenceOpenRe  = regexp.MustCompile("(?m)^```[A-Za-z]*[ \t]*\n?")
	fenceCloseRe = regexp.MustCompile("(?m)\n?```[ \t]*$")
)

// CleanLaTeX strips markdown code fences that text generators wrap around a
// LaTeX document.
func CleanLaTeX(s string) string {
	s = fenceOpenRe.ReplaceAllString(s, "")
	s = fenceCloseRe.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "`"))
}

// IsDocument reports whether s, once cleaned, is a complete LaTeX document.
func IsDocument(s string) bool {
	s = CleanLaTeX(s)
	return strings.HasPrefix(s, `\documentclass`) && strings.Contains(s, `\end{document}`)
}
