package specialty

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeName lowercases, trims, and collapses internal whitespace.
// All matching stages compare normalized names.
func NormalizeName(s string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Tokenize splits a normalized name into alphanumeric tokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(NormalizeName(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// significantTokens drops short tokens that carry no matching signal
// ("of", "and", abbreviations under three characters).
func significantTokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range Tokenize(s) {
		if len(tok) > 2 {
			out[tok] = struct{}{}
		}
	}
	return out
}
