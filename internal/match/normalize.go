package match

import (
	"strings"
	"unicode"
)

// identSuffixes are marker words dropped before comparing names for suggestions,
// longest first.
var identSuffixes = []string{"timestamp", "ids", "utc", "id", "at"}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// NormalizeIdent folds an identifier for case-insensitive member matching:
// "Shipping_Address" -> "shippingaddress".
func NormalizeIdent(s string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}

		return r
	}, s))
}

// trimIdentSuffix normalizes s and drops one trailing marker word unless nothing
// would be left: "CustomerID" -> "customer", "ID" -> "id".
func trimIdentSuffix(s string) string {
	n := NormalizeIdent(s)

	for _, suffix := range identSuffixes {
		if stem, ok := strings.CutSuffix(n, suffix); ok && stem != "" {
			return stem
		}
	}

	return n
}

// splitWords cuts an identifier at separators, at lower-to-upper transitions and
// before the last capital of an acronym followed by a lower case letter:
// "getHTTPResponse" -> get, HTTP, Response.
func splitWords(s string) []string {
	runes := []rune(s)

	var words []string

	start := -1
	flush := func(end int) {
		if start >= 0 {
			words = append(words, string(runes[start:end]))
			start = -1
		}
	}

	for i, r := range runes {
		if isSeparator(r) {
			flush(i)
			continue
		}

		if start >= 0 && wordBreak(runes, i) {
			flush(i)
		}

		if start < 0 {
			start = i
		}
	}

	flush(len(runes))

	return words
}

func wordBreak(runes []rune, i int) bool {
	if !unicode.IsUpper(runes[i]) {
		return false
	}

	if !unicode.IsUpper(runes[i-1]) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// TokenizeIdent splits an identifier into lower case words.
func TokenizeIdent(s string) []string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}

	return words
}

// HasTokenPrefix reports whether name starts with the words of prefix and goes on with
// more: "ShippingAddressCity" has prefix "shipping_address", "ShippingCity" has no
// prefix "Ship".
func HasTokenPrefix(name, prefix string) bool {
	want := NormalizeIdent(prefix)
	if want == "" {
		return false
	}

	words := TokenizeIdent(name)
	if len(words) < 2 {
		return false
	}

	var joined strings.Builder

	for _, w := range words[:len(words)-1] {
		joined.WriteString(w)

		if joined.Len() >= len(want) {
			return joined.String() == want
		}
	}

	return false
}
