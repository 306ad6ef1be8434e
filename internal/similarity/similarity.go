// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity computes pairwise document similarity and aggregates
// cross-document patterns over retrieved sets.
// See docs/ARCHITECTURE.md § Engine.
package similarity

import (
	"sort"
	"strings"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// Two thresholds for two use cases. They must not be conflated: a pair
// can be similar enough to surface in "find related documents" without
// being similar enough for cross-analysis pairing.
const (
	// RelatedThreshold is the minimum similarity for general
	// "find similar documents" results.
	RelatedThreshold = 0.3

	// CrossAnalysisThreshold is the minimum similarity for recording a
	// pair during cross-analysis.
	CrossAnalysisThreshold = 0.7
)

// Similarity returns a score in [0, 1] for two documents. When both have
// a usable embedding the score is their cosine similarity (a dot product,
// since embeddings are stored normalized); otherwise it falls back to the
// Jaccard index of their keyword sets. Two documents with no keywords and
// no embeddings score 0.
func Similarity(a, b *types.Document) float64 {
	if cos, ok := cosine(a.Embedding, b.Embedding); ok {
		return cos
	}
	return jaccard(a.Keywords, b.Keywords)
}

// cosine returns the dot product of two normalized vectors. ok is false
// when either vector is absent, zero-norm, or the lengths differ, in
// which case the caller falls back to keywords.
func cosine(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}

	// Clamp rounding noise so the result stays in [0, 1].
	if dot < 0 {
		dot = 0
	}
	if dot > 1 {
		dot = 1
	}
	return dot, true
}

// jaccard computes |intersection| / |union| over two keyword sets,
// case-insensitively. Both sets empty yields 0, not NaN.
func jaccard(a, b []string) float64 {
	setA := keywordSet(a)
	setB := keywordSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for kw := range setA {
		if _, ok := setB[kw]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// SharedKeywords returns the keywords two documents have in common,
// sorted for stable output.
func SharedKeywords(a, b *types.Document) []string {
	setB := keywordSet(b.Keywords)

	var shared []string
	seen := make(map[string]bool)
	for _, kw := range a.Keywords {
		lower := strings.ToLower(kw)
		if _, ok := setB[lower]; ok && !seen[lower] {
			seen[lower] = true
			shared = append(shared, lower)
		}
	}
	sort.Strings(shared)
	return shared
}

func keywordSet(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[strings.ToLower(kw)] = struct{}{}
	}
	return set
}
