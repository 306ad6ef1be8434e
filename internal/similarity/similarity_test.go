// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

func doc(title string, keywords ...string) *types.Document {
	return &types.Document{Title: title, Keywords: keywords}
}

func TestSimilaritySelf(t *testing.T) {
	d := doc("a", "imre", "protocolo")
	assert.Equal(t, 1.0, Similarity(d, d), "self-similarity is maximal")
}

func TestSimilaritySymmetry(t *testing.T) {
	a := doc("a", "imre", "protocolo", "avaliacao")
	b := doc("b", "imre", "clinica")
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestSimilarityRange(t *testing.T) {
	pairs := [][2]*types.Document{
		{doc("a", "x"), doc("b", "y")},
		{doc("a", "x", "y"), doc("b", "y", "z")},
		{doc("a"), doc("b")},
		{doc("a", "x"), doc("b")},
	}
	for _, p := range pairs {
		sim := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, sim, 0.0)
		assert.LessOrEqual(t, sim, 1.0)
	}
}

func TestSimilarityEmptyDocument(t *testing.T) {
	empty := doc("empty")
	assert.Equal(t, 0.0, Similarity(empty, empty))
	assert.Equal(t, 0.0, Similarity(empty, doc("full", "imre", "cbd")))
}

func TestSimilarityJaccard(t *testing.T) {
	// Shared {imre, protocolo}, union of 4 terms: 2/4 = 0.5.
	a := doc("a", "imre", "protocolo", "avaliação")
	b := doc("b", "imre", "protocolo", "clínica")

	sim := Similarity(a, b)
	assert.InDelta(t, 0.5, sim, 1e-9)

	// 0.5 clears the find-similar threshold but not the cross-analysis one.
	assert.Greater(t, sim, RelatedThreshold)
	assert.Less(t, sim, CrossAnalysisThreshold)
}

func TestSimilarityCaseInsensitiveKeywords(t *testing.T) {
	a := doc("a", "IMRE", "Protocolo")
	b := doc("b", "imre", "protocolo")
	assert.Equal(t, 1.0, Similarity(a, b))
}

func TestSimilarityEmbeddings(t *testing.T) {
	a := doc("a", "completely")
	b := doc("b", "different")
	a.Embedding = []float64{1, 0, 0}
	b.Embedding = []float64{1, 0, 0}

	// Identical embeddings dominate disjoint keywords.
	assert.Equal(t, 1.0, Similarity(a, b))

	// Zero-norm embedding falls back to keywords.
	b.Embedding = []float64{0, 0, 0}
	assert.Equal(t, 0.0, Similarity(a, b))
}

func TestSharedKeywords(t *testing.T) {
	a := doc("a", "imre", "protocolo", "avaliacao")
	b := doc("b", "IMRE", "clinica", "protocolo")
	assert.Equal(t, []string{"imre", "protocolo"}, SharedKeywords(a, b))
}

func TestAnalyzePairs(t *testing.T) {
	a := doc("Protocolo IMRE v1", "imre", "protocolo", "avaliacao")
	b := doc("Protocolo IMRE v2", "imre", "protocolo", "avaliacao", "clinica")
	c := doc("Guia do Paciente", "paciente")

	analysis := Analyze([]*types.Document{a, b, c})

	// a-b share 3 of 4 terms (0.75 > 0.7); c pairs with nothing.
	assert.Len(t, analysis.RelatedPairs, 1)
	pair := analysis.RelatedPairs[0]
	assert.Equal(t, "Protocolo IMRE v1", pair.TitleA)
	assert.Equal(t, "Protocolo IMRE v2", pair.TitleB)
	assert.Equal(t, []string{"avaliacao", "imre", "protocolo"}, pair.SharedKeywords)
}

func TestAnalyzeBelowThresholdNotPaired(t *testing.T) {
	// Jaccard 0.5 — flagged for find-similar, not for cross-analysis.
	a := doc("a", "imre", "protocolo", "avaliacao")
	b := doc("b", "imre", "protocolo", "clinica")

	analysis := Analyze([]*types.Document{a, b})
	assert.Empty(t, analysis.RelatedPairs)
}

func TestAnalyzePatterns(t *testing.T) {
	docs := []*types.Document{
		doc("a", "cbd", "dosagem", "epilepsia"),
		doc("b", "cbd", "dosagem", "ansiedade"),
		doc("c", "cbd", "titulacao"),
		doc("d", "cbd", "dosagem", "insonia", "autismo", "parkinson"),
	}

	analysis := Analyze(docs)
	assert.Len(t, analysis.Patterns, 5)
	assert.Equal(t, "cbd", analysis.Patterns[0])
	assert.Equal(t, "dosagem", analysis.Patterns[1])
}

func TestAnalyzeCrossReferences(t *testing.T) {
	a := doc("Revisão CBD", "cbd")
	a.Content = "Um estudo randomizado demonstrou redução das crises."
	b := doc("Guia prático", "dosagem")
	b.Content = "Comece com doses baixas e aumente gradualmente."

	analysis := Analyze([]*types.Document{a, b})
	assert.Len(t, analysis.CrossReferences, 1)
	assert.Equal(t, "Revisão CBD", analysis.CrossReferences[0].Title)
	assert.Equal(t, "estudo", analysis.CrossReferences[0].Indicator)
	assert.Equal(t, "alta", analysis.CrossReferences[0].Relevance)
}

func TestAnalyzeEmptySet(t *testing.T) {
	analysis := Analyze(nil)
	assert.Empty(t, analysis.RelatedPairs)
	assert.Empty(t, analysis.Patterns)
	assert.Empty(t, analysis.CrossReferences)
}
