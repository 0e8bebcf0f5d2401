// Package i18n decides which languages a request may see content in. The
// configured language list is the source of truth; a request may narrow it
// (e.g. via an Accept-Language style parameter) but never widen it.
package i18n

import "strings"

// Normalize lower-cases and trims a language code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Valid reports whether a language is in the permitted set.
func Valid(languages []string, code string) bool {
	code = Normalize(code)
	for _, l := range languages {
		if Normalize(l) == code {
			return true
		}
	}
	return false
}

// ValidLanguages intersects the requested languages with the configured ones,
// preserving the configured order. An empty request means "all configured".
func ValidLanguages(configured, requested []string) []string {
	if len(requested) == 0 {
		return configured
	}
	valid := make([]string, 0, len(configured))
	for _, l := range configured {
		if Valid(requested, l) {
			valid = append(valid, l)
		}
	}
	return valid
}
