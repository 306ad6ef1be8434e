// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance scores documents against free-text queries with a
// weighted additive model over title, summary, keyword, and tag matches.
// See docs/ARCHITECTURE.md § Engine.
package relevance

import (
	"strings"

	"github.com/pdiddy/knowledge-engine/internal/textnorm"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// Score weights. The model is additive: each matched signal contributes
// its weight, and AIRelevance (canonical [0, 1] scale) adds up to ten
// points so intrinsically important documents surface even on weak text
// match.
const (
	weightTitleSubstring = 100
	weightTitleExact     = 50
	weightTitleTerm      = 20
	weightSummaryQuery   = 30
	weightSummaryTerm    = 10
	weightKeyword        = 25
	weightTag            = 15
	weightRelevanceBoost = 10
)

// Result holds the score for one document and the terms that matched.
type Result struct {
	Score   float64
	Matched []string
}

// Score computes the weighted relevance of doc for query. A score of zero
// means no signal matched; such documents are excluded from search
// results entirely rather than ranked last.
func Score(query string, doc *types.Document) Result {
	normQuery := textnorm.Normalize(query)
	if normQuery == "" {
		return Result{}
	}

	terms := textnorm.QueryTerms(query)
	title := textnorm.Normalize(doc.Title)
	summary := textnorm.Normalize(doc.Summary)

	var res Result
	matched := make(map[string]bool)
	record := func(term string) {
		if !matched[term] {
			matched[term] = true
			res.Matched = append(res.Matched, term)
		}
	}

	if strings.Contains(title, normQuery) {
		res.Score += weightTitleSubstring
		record(normQuery)
		if title == normQuery {
			res.Score += weightTitleExact
		}
	}

	for _, term := range terms {
		if strings.Contains(title, term) {
			res.Score += weightTitleTerm
			record(term)
		}
	}

	if summary != "" && strings.Contains(summary, normQuery) {
		res.Score += weightSummaryQuery
		record(normQuery)
	}
	for _, term := range terms {
		if summary != "" && strings.Contains(summary, term) {
			res.Score += weightSummaryTerm
			record(term)
		}
	}

	for _, keyword := range doc.Keywords {
		if term, ok := sharesTerm(keyword, terms); ok {
			res.Score += weightKeyword
			record(term)
		}
	}

	for _, tag := range doc.Tags {
		if term, ok := sharesTerm(tag, terms); ok {
			res.Score += weightTag
			record(term)
		}
	}

	// Flat bonus for intrinsic document importance, but only when at
	// least one textual signal matched; the bonus alone must not drag
	// unrelated documents into results.
	if res.Score > 0 {
		res.Score += types.ClampRelevance(doc.AIRelevance) * weightRelevanceBoost
	}

	return res
}

// sharesTerm reports whether value matches any query term by substring in
// either direction, returning the matching term.
func sharesTerm(value string, terms []string) (string, bool) {
	norm := textnorm.Normalize(value)
	if norm == "" {
		return "", false
	}
	for _, term := range terms {
		if strings.Contains(norm, term) || strings.Contains(term, norm) {
			return term, true
		}
	}
	return "", false
}
