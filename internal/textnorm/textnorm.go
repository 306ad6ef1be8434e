// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm normalizes free text for matching and scoring.
// See docs/ARCHITECTURE.md § Engine.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// diacritics maps accented Latin letters to their base form. Covers the
// Portuguese alphabet plus common Western European accents.
var diacritics = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n', 'ý': 'y', 'ÿ': 'y',
}

// Normalize lowercases text, strips diacritics, replaces non-word runs
// with single spaces, and trims. It is idempotent and total: any input
// produces a string, whitespace-only input produces the empty string.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true
	for _, r := range strings.ToLower(text) {
		if base, ok := diacritics[r]; ok {
			r = base
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Tokenize normalizes text and splits it into words.
func Tokenize(text string) []string {
	return strings.Fields(Normalize(text))
}

// TruncateBytes cuts s to at most max bytes without splitting a UTF-8
// rune, backing up to the nearest rune boundary.
func TruncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// QueryTerms returns the normalized tokens of a query longer than two
// characters, the granularity used for per-term matching.
func QueryTerms(query string) []string {
	var terms []string
	for _, tok := range Tokenize(query) {
		if len(tok) > 2 {
			terms = append(terms, tok)
		}
	}
	return terms
}
