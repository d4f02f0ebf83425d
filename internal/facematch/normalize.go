package facematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeIdentityKey normalizes an identity key for comparison so roster
// files and enrollment records agree on casing, diacritics and separators
// ("Roll-21" and "roll 21" are the same identity).
func NormalizeIdentityKey(key string) string {
	key = RemoveDiacritics(key)
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "-", " ")
	return key
}
