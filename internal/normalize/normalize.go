// Package normalize canonicalizes free-text bibliographic fields into
// comparable grouping keys. Keys are for equality checks only and are
// never displayed.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EmptyKey is the sentinel returned for empty or non-textual input.
// Callers group such values into a single degenerate bucket instead
// of failing.
const EmptyKey = ""

// stripMarks removes diacritics by decomposing to NFD, dropping
// combining marks, and recomposing.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// venueStopwords are low-information tokens removed from venue keys.
// Sourced from the prefix lists publishers and indexes prepend to
// venue names ("Proceedings of the 31st International Conference on ...").
var venueStopwords = map[string]bool{
	"the":           true,
	"of":            true,
	"on":            true,
	"in":            true,
	"for":           true,
	"and":           true,
	"proceedings":   true,
	"proc":          true,
	"international": true,
	"intl":          true,
	"annual":        true,
	"conference":    true,
	"conf":          true,
	"workshop":      true,
	"symposium":     true,
	"meeting":       true,
}

var (
	ordinalRe     = regexp.MustCompile(`^\d+(st|nd|rd|th)$`)
	parentheticRe = regexp.MustCompile(`\([^)]*\)`)
	yearRe        = regexp.MustCompile(`^(19|20)\d{2}$`)
)

// clean lowercases, strips diacritics and punctuation, and collapses
// whitespace. It is the shared base for all key functions.
func clean(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return EmptyKey
	}

	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	// Replace anything that is not a letter or digit with a space,
	// then collapse runs of whitespace.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Title returns the grouping key for a paper title.
func Title(s string) string {
	return clean(s)
}

// Venue returns the grouping key for a venue name. On top of the base
// cleaning it drops parenthetical suffixes ("(NeurIPS 2023)"), edition
// ordinals, bare years, and boilerplate tokens, so "Proceedings of the
// 41st International Conference on Machine Learning" and "Machine
// Learning" family names compare by their informative words only.
func Venue(s string) string {
	s = parentheticRe.ReplaceAllString(s, " ")
	base := clean(s)
	if base == EmptyKey {
		return EmptyKey
	}

	var kept []string
	for _, tok := range strings.Fields(base) {
		if venueStopwords[tok] || ordinalRe.MatchString(tok) || yearRe.MatchString(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) == 0 {
		// Everything was boilerplate; fall back to the cleaned form
		// rather than collapsing distinct venues into the empty bucket.
		return base
	}
	return strings.Join(kept, " ")
}

// AuthorTokens returns the normalized name tokens of a single author
// string. Single-letter tokens (initials) are dropped since they carry
// too little signal for overlap checks.
func AuthorTokens(s string) []string {
	base := clean(s)
	if base == EmptyKey {
		return nil
	}

	var tokens []string
	for _, tok := range strings.Fields(base) {
		if len([]rune(tok)) < 2 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ISSN canonicalizes an ISSN for exact lookup: uppercase check digit,
// digits and X only, with the conventional hyphen reinserted.
func ISSN(s string) string {
	var digits []rune
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if (r >= '0' && r <= '9') || r == 'X' {
			digits = append(digits, r)
		}
	}
	if len(digits) != 8 {
		return EmptyKey
	}
	return string(digits[:4]) + "-" + string(digits[4:])
}
