package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and removes diacritical marks: "Más Vendido" -> "mas vendido",
// "año" -> "ano". For composed input the rune count is preserved, so callers can map
// rune offsets in the folded text back to the lowercased original.
func Fold(s string) string {
	lowered := strings.ToLower(s)
	out, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		return lowered
	}
	return out
}

// Lower is a plain lowercase pass that keeps accents intact. Used when extracted
// values (product names) must preserve the user's spelling.
func Lower(s string) string {
	return strings.ToLower(s)
}

// ContainsAny reports whether s contains at least one of the given substrings.
func ContainsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
