package markup

import (
	"strings"
	"unicode"
)

// symbols maps runes pdflatex's utf8 input encoding cannot read onto math
// mode commands.
var symbols = []struct {
	r, cmd string
}{
	{"α", "alpha"}, {"β", "beta"}, {"γ", "gamma"}, {"δ", "delta"}, {"ε", "epsilon"},
	{"ζ", "zeta"}, {"η", "eta"}, {"θ", "theta"}, {"ι", "iota"}, {"κ", "kappa"},
	{"λ", "lambda"}, {"μ", "mu"}, {"ν", "nu"}, {"ξ", "xi"}, {"π", "pi"},
	{"ρ", "rho"}, {"σ", "sigma"}, {"τ", "tau"}, {"υ", "upsilon"}, {"φ", "phi"},
	{"χ", "chi"}, {"ψ", "psi"}, {"ω", "omega"},
	{"Γ", "Gamma"}, {"Δ", "Delta"}, {"Θ", "Theta"}, {"Λ", "Lambda"}, {"Ξ", "Xi"},
	{"Π", "Pi"}, {"Σ", "Sigma"}, {"Φ", "Phi"}, {"Ψ", "Psi"}, {"Ω", "Omega"},
	{"≈", "approx"}, {"≡", "equiv"}, {"∝", "propto"}, {"∼", "sim"},
	{"∑", "sum"}, {"∏", "prod"}, {"∫", "int"}, {"∂", "partial"}, {"∇", "nabla"},
	{"∞", "infty"}, {"√", "surd"}, {"∘", "circ"}, {"⊕", "oplus"}, {"⊗", "otimes"},
	{"∈", "in"}, {"∉", "notin"}, {"⊂", "subset"}, {"⊆", "subseteq"}, {"⊃", "supset"},
	{"⊇", "supseteq"}, {"∪", "cup"}, {"∩", "cap"}, {"∅", "emptyset"},
	{"∀", "forall"}, {"∃", "exists"}, {"∧", "wedge"}, {"∨", "vee"},
	{"⌈", "lceil"}, {"⌉", "rceil"}, {"⌊", "lfloor"}, {"⌋", "rfloor"},
}

var mathSymbols, symbolNames = func() (*strings.Replacer, *strings.Replacer) {
	var math, names []string
	for _, s := range symbols {
		math = append(math, s.r, `$\`+s.cmd+`$`)
		names = append(names, s.r, s.cmd)
	}
	return strings.NewReplacer(math...), strings.NewReplacer(names...)
}()

// punctuation outside Latin-1 that the utf8 input encoding maps.
var punctuation = map[rune]bool{
	'–': true, '—': true, '‘': true, '’': true, '‚': true, '“': true, '”': true,
	'„': true, '•': true, '…': true, '†': true, '‡': true, '‰': true, '‹': true,
	'›': true, '€': true, '™': true,
}

// readable reports whether pdflatex reads r without extra packages.
func readable(r rune) bool {
	switch {
	case r <= unicode.MaxLatin1:
		return true
	case r >= 0x0100 && r <= 0x017F: // Latin Extended-A
		return true
	case r == placeholderOpen || r == placeholderClose:
		return true
	}
	return punctuation[r]
}

// unreadable replaces runes pdflatex cannot read with '?'.
func unreadable(s string) string {
	return strings.Map(func(r rune) rune {
		if readable(r) {
			return r
		}
		return '?'
	}, s)
}
