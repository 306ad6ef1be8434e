// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords extracts salient terms from document text by combining
// a fixed clinical vocabulary with frequency-free extraction of long words.
// See docs/ARCHITECTURE.md § Engine.
package keywords

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/knowledge-engine/internal/textnorm"
)

// maxGenericTerms caps how many non-vocabulary words are kept per
// document. Vocabulary matches are unbounded but typically few.
const maxGenericTerms = 5

// minGenericLength is the shortest non-vocabulary word worth keeping.
// Words of four characters or fewer are mostly function words.
const minGenericLength = 5

// defaultVocabulary is the built-in clinical domain term list. Terms are
// stored normalized so matching needs no per-call normalization.
var defaultVocabulary = []string{
	"cannabis", "canabidiol", "cbd", "thc", "canabinoide",
	"dosagem", "titulacao", "posologia", "prescricao",
	"protocolo", "imre", "anamnese", "avaliacao clinica",
	"epilepsia", "dor cronica", "ansiedade", "insonia", "autismo",
	"parkinson", "alzheimer", "fibromialgia", "esclerose",
	"neurologia", "psiquiatria", "farmacologia",
	"efeito colateral", "interacao medicamentosa", "contraindicacao",
	"paciente", "tratamento", "terapeutico",
}

// Extractor matches a fixed vocabulary and extracts long generic words.
type Extractor struct {
	vocabulary []string
}

// NewExtractor returns an extractor over the built-in clinical vocabulary.
func NewExtractor() *Extractor {
	return &Extractor{vocabulary: defaultVocabulary}
}

// NewExtractorFromFile returns an extractor whose vocabulary is loaded
// from a YAML file holding a list of terms. Terms are normalized on load.
func NewExtractorFromFile(path string) (*Extractor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file %s: %w", path, err)
	}

	var terms []string
	if err := yaml.Unmarshal(data, &terms); err != nil {
		return nil, fmt.Errorf("parsing vocabulary file %s: %w", path, err)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("vocabulary file %s contains no terms", path)
	}

	vocab := make([]string, 0, len(terms))
	for _, term := range terms {
		if n := textnorm.Normalize(term); n != "" {
			vocab = append(vocab, n)
		}
	}
	return &Extractor{vocabulary: vocab}, nil
}

// Extract returns the ranked keyword list for text: every vocabulary term
// present as a substring of the normalized text, in vocabulary order,
// followed by up to five long generic words in first-occurrence order.
// Duplicates are removed case-insensitively. Empty text yields nil.
func (e *Extractor) Extract(text string) []string {
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return nil
	}

	var result []string
	seen := make(map[string]bool)

	for _, term := range e.vocabulary {
		if strings.Contains(normalized, term) && !seen[term] {
			seen[term] = true
			result = append(result, term)
		}
	}

	generic := 0
	for _, word := range strings.Fields(normalized) {
		if generic >= maxGenericTerms {
			break
		}
		if len(word) < minGenericLength || seen[word] {
			continue
		}
		// Skip words already covered by a matched vocabulary term.
		if coveredByVocabulary(word, result, len(result)-generic) {
			continue
		}
		seen[word] = true
		result = append(result, word)
		generic++
	}

	return result
}

// coveredByVocabulary reports whether word appears inside one of the
// first vocabCount vocabulary matches.
func coveredByVocabulary(word string, matches []string, vocabCount int) bool {
	for i := 0; i < vocabCount && i < len(matches); i++ {
		if strings.Contains(matches[i], word) {
			return true
		}
	}
	return false
}
