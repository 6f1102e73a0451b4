package chord

import (
	"regexp"
	"strings"

	"github.com/satindergrewal/pianochords/internal/theory"
)

// NaturalRoot is the Latin label every shape is written in.
const NaturalRoot = "Do"

// FitRoot is Fit with the offset taken from a Latin root label.
func FitRoot(shape Shape, rootLabel string, kb Keyboard) (Display, error) {
	offset, err := OffsetOf(rootLabel)
	if err != nil {
		return Display{}, err
	}
	d := Fit(shape, offset, kb)
	d.Root = rootLabel
	return d, nil
}

// TransposedSymbol swaps the leading C of a symbol for the alphabetic
// spelling of rootLabel ("Cm7", "Sib" -> "Bbm7").
func TransposedSymbol(symbol, rootLabel string) string {
	if rootLabel == NaturalRoot || !strings.HasPrefix(symbol, "C") {
		return symbol
	}
	alpha, err := theory.ToAlphabetic(rootLabel)
	if err != nil {
		alpha = rootLabel
	}
	return alpha + strings.TrimPrefix(symbol, "C")
}

// TransposedName swaps the leading "Do" of a display name for rootLabel.
func TransposedName(name, rootLabel string) string {
	if rootLabel == NaturalRoot || !strings.HasPrefix(name, NaturalRoot) {
		return name
	}
	return rootLabel + strings.TrimPrefix(name, NaturalRoot)
}

var cleanRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(` *\(.*?\) *`), " "},
	{regexp.MustCompile(`([a-zàèéìòù])([A-Z])`), "$1 $2"},
	{regexp.MustCompile(`([a-zA-Z])([0-9])`), "$1 $2"},
	{regexp.MustCompile(`([0-9])([A-Z][a-z])`), "$1 $2"},
	{regexp.MustCompile(`  +`), " "},
}

// CleanName drops parenthesized qualifiers and normalizes spacing.
func CleanName(name string) string {
	for _, r := range cleanRules {
		name = r.re.ReplaceAllString(name, r.repl)
	}
	return strings.TrimSpace(name)
}
