// Package textutil holds the pure text canonicalization and similarity
// scoring helpers used by the neighborhood resolution pipeline.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFC-base plus combining marks and drops the marks.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes diacritics while preserving case and spacing.
func StripAccents(s string) string {
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		// transform.String only fails on a broken transformer chain; fall
		// back to the raw input rather than losing the value.
		return s
	}
	return stripped
}

// Normalize canonicalizes free text for comparison and storage keys:
// diacritics stripped, uppercased, whitespace runs collapsed, trimmed.
// It is total and idempotent; empty input yields the empty string.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToUpper(StripAccents(s))), " ")
}

// FormatName title-cases a freshly created name: lowercase everything, then
// uppercase the first rune of each whitespace-separated token. Cosmetic only;
// never applied to names already stored.
func FormatName(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	for i, field := range fields {
		r := []rune(field)
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}
