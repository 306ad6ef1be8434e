// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"sort"
	"strings"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// maxPatterns caps how many dominant keywords Analyze reports.
const maxPatterns = 5

// researchIndicators are the substrings that mark a document as citing
// empirical research. Matched case-insensitively against content.
var researchIndicators = []string{"estudo", "pesquisa", "ensaio clinico", "revisao sistematica"}

// researchRelevanceLabel is the fixed label attached to every research
// cross-reference.
const researchRelevanceLabel = "alta"

// Analyze runs the cross-document analysis over a retrieved set: pairwise
// similarities above CrossAnalysisThreshold, the dominant keywords across
// the set, and research cross-references. The pairwise pass is O(n²) and
// assumes retrieved sets stay small (n ≤ 10). Output is descriptive only;
// it enriches formatted answers and never gates retrieval.
func Analyze(docs []*types.Document) types.CrossAnalysis {
	var analysis types.CrossAnalysis

	for i := 0; i < len(docs); i++ {
		for j := i + 1; j < len(docs); j++ {
			sim := Similarity(docs[i], docs[j])
			if sim <= CrossAnalysisThreshold {
				continue
			}
			analysis.RelatedPairs = append(analysis.RelatedPairs, types.RelatedPair{
				TitleA:         docs[i].Title,
				TitleB:         docs[j].Title,
				Similarity:     sim,
				SharedKeywords: SharedKeywords(docs[i], docs[j]),
			})
		}
	}

	analysis.Patterns = dominantKeywords(docs)

	for _, doc := range docs {
		content := strings.ToLower(doc.Content)
		for _, indicator := range researchIndicators {
			if strings.Contains(content, indicator) {
				analysis.CrossReferences = append(analysis.CrossReferences, types.CrossReference{
					Title:     doc.Title,
					Indicator: indicator,
					Relevance: researchRelevanceLabel,
				})
				break
			}
		}
	}

	return analysis
}

// dominantKeywords builds a frequency histogram over all documents'
// keyword sets and returns the top entries, most frequent first. Ties
// break alphabetically for stable output.
func dominantKeywords(docs []*types.Document) []string {
	freq := make(map[string]int)
	for _, doc := range docs {
		for _, kw := range doc.Keywords {
			freq[strings.ToLower(kw)]++
		}
	}
	if len(freq) == 0 {
		return nil
	}

	keywords := make([]string, 0, len(freq))
	for kw := range freq {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if freq[keywords[i]] != freq[keywords[j]] {
			return freq[keywords[i]] > freq[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > maxPatterns {
		keywords = keywords[:maxPatterns]
	}
	return keywords
}
