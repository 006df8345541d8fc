package catalog

import (
	"strings"
	"unicode"
)

// SanitizeIdentifier recovers the ingestion naming convention: lower
// snake_case, non-alphanumeric runs collapsed to a single underscore, and a
// "col_" prefix inserted when the result would otherwise start with a digit
// (Postgres identifiers cannot start with one).
func SanitizeIdentifier(raw string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "col"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "col_" + out
	}
	return out
}

// normalizeSearchTerm lowercases and trims a search pattern for
// case-insensitive substring matching.
func normalizeSearchTerm(pattern string) string {
	return strings.ToLower(strings.TrimSpace(pattern))
}

// containsFold reports whether needle occurs in s, case-insensitively.
// needle is expected to already be normalized by normalizeSearchTerm.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}
