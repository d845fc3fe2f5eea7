// Package textnorm folds free-text place names into comparable ASCII forms.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that carry no combining mark after NFKD and therefore survive
// mark stripping untouched.
var specials = strings.NewReplacer(
	"Ł", "L", "ł", "l",
	"Ø", "O", "ø", "o",
	"Đ", "D", "đ", "d",
	"Ħ", "H", "ħ", "h",
	"ß", "ss",
	"Æ", "AE", "æ", "ae",
	"Œ", "OE", "œ", "oe",
	"Þ", "Th", "þ", "th",
	"ı", "i",
)

// ToASCII transliterates s to a plain-ASCII form, e.g. "Łódź" -> "Lodz".
// Characters with no known ASCII counterpart are kept as they are.
func ToASCII(s string) string {
	if s == "" {
		return s
	}

	// transform.Chain is stateful, so it is built per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, specials.Replace(s))
	if err != nil {
		return s
	}
	return out
}

// Fold lower-cases and transliterates s for case- and accent-insensitive comparison.
func Fold(s string) string {
	return strings.ToLower(ToASCII(s))
}

// Tokens splits s into folded alphanumeric tokens, dropping punctuation.
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CollapseSpaces trims s and replaces every run of whitespace with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
