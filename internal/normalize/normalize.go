// Package normalize cleans raw task titles into search keys and applies a
// static dictionary of known-title translations to improve provider hit-rate.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	yearRE = regexp.MustCompile(`\s*\((19|20)\d{2}\)`)

	// Trailing clause after an em/en dash, or a hyphen with surrounding
	// spaces. In-word hyphens ("Spider-Man") must survive.
	trailingClauseRE = regexp.MustCompile(`\s+(?:[—–]|-\s)\s*[^—–]*$`)

	quoteRE = regexp.MustCompile(`[«»“”"']`)

	// Series/volume markers: "#3", "Vol. 2", "Book 2", "Том 3". Leading
	// whitespace is part of the match because \b is ASCII-only in RE2 and
	// would never fire before a Cyrillic word.
	volumeRE = regexp.MustCompile(`(?i)(?:^|\s+)(?:#\d+|vol\.?\s*\d+|book\s+\d+|том\s+\d+)\b`)

	spaceRE = regexp.MustCompile(`\s{2,}`)
)

// Clean strips year, trailing dash-delimited clause, quotes and
// series/volume markers from a raw title. Order matters: the year must go
// before the trailing clause so "(2019) — Name" collapses correctly.
func Clean(raw string) string {
	s := yearRE.ReplaceAllString(raw, "")
	s = trailingClauseRE.ReplaceAllString(s, "")
	s = quoteRE.ReplaceAllString(s, "")
	s = volumeRE.ReplaceAllString(s, "")
	s = spaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Translate looks the cleaned title up in the static dictionary and returns
// the search-engine-friendly form. The second return reports whether a
// translation was applied.
func Translate(clean string) (string, bool) {
	if t, ok := translations[strings.ToLower(clean)]; ok {
		return t, true
	}
	return clean, false
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases and strips diacritics and punctuation for comparisons.
// "Amélie!" and "amelie" fold to the same key.
func Fold(s string) string {
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(spaceRE.ReplaceAllString(b.String(), " "))
}

// HasCyrillic reports whether the string contains Cyrillic letters,
// used to pick the search language for a title.
func HasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
