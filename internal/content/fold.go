package content

import "strings"

// asciiFold maps glyphs missing from the standard PDF fonts and from
// pdflatex's utf8 input encoding onto ASCII art.
var asciiFold = strings.NewReplacer(
	"→", "->", "←", "<-", "↔", "<->", "⇒", "=>", "⇐", "<=",
	"↑", "^", "↓", "v",
	"─", "-", "━", "-", "│", "|", "┃", "|", "═", "=", "║", "|",
	"┌", "+", "┐", "+", "└", "+", "┘", "+",
	"├", "+", "┤", "+", "┬", "+", "┴", "+", "┼", "+",
	"≤", "<=", "≥", ">=", "≠", "!=", "−", "-",
	"\t", "    ",
)

// Fold replaces box-drawing, arrow and math runes with ASCII equivalents and
// expands tabs.
func Fold(s string) string {
	return asciiFold.Replace(s)
}
