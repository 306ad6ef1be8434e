// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/knowledge-engine/internal/textnorm"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// EmbedDim is the fixed dimensionality of locally computed embeddings.
const EmbedDim = 256

// Local is the built-in provider: hashed term-frequency embeddings,
// extractive sentence-overlap QA, and frequency-ranked summarization.
// Everything is computed in-process with no external inference cost.
type Local struct {
	mu          sync.Mutex
	initialized bool

	sentenceRe *regexp.Regexp
	stopwords  map[string]struct{}
}

// NewLocal returns an uninitialized local provider. Initialization runs
// lazily on first use.
func NewLocal() *Local {
	return &Local{}
}

// ensureInit compiles patterns and builds the stopword set once. Safe for
// concurrent first use; repeated calls are no-ops.
func (p *Local) ensureInit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return
	}
	p.sentenceRe = regexp.MustCompile(`[^.!?\n]+[.!?]?`)
	p.stopwords = stopwordSet()
	p.initialized = true
}

// Embed hashes the normalized, stopword-filtered tokens of text into a
// fixed-length term-frequency vector and L2-normalizes it, so cosine
// similarity reduces to a dot product. Text with no usable tokens yields
// an empty vector.
func (p *Local) Embed(ctx context.Context, text string) ([]float64, error) {
	p.ensureInit()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, EmbedDim)
	count := 0
	for _, tok := range textnorm.Tokenize(text) {
		if _, stop := p.stopwords[tok]; stop {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%EmbedDim]++
		count++
	}
	if count == 0 {
		return nil, nil
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// Answer selects the passage sentence with the highest query-term overlap
// as the answer span. Confidence is the fraction of query terms covered
// by the chosen sentence; below ConfidenceThreshold the canned
// insufficient-information response is returned instead.
func (p *Local) Answer(ctx context.Context, question, passage string) (types.Answer, error) {
	p.ensureInit()
	if err := ctx.Err(); err != nil {
		return types.Answer{}, err
	}

	terms := p.contentTerms(question)
	if len(terms) == 0 || strings.TrimSpace(passage) == "" {
		return types.Answer{Text: InsufficientText, Confidence: 0}, nil
	}

	var (
		best      string
		bestScore float64
	)
	for _, raw := range p.sentenceRe.FindAllString(passage, -1) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" {
			continue
		}
		matched := 0
		normalized := textnorm.Normalize(sentence)
		for _, term := range terms {
			if strings.Contains(normalized, term) {
				matched++
			}
		}
		score := float64(matched) / float64(len(terms))
		if score > bestScore {
			bestScore = score
			best = sentence
		}
	}

	if bestScore < ConfidenceThreshold {
		return types.Answer{Text: InsufficientText, Confidence: bestScore}, nil
	}
	return types.Answer{Text: best, Confidence: bestScore}, nil
}

// Summarize ranks sentences by normalized token frequency (dampened by
// sentence length) and reassembles the best ones in original order until
// the word budget is spent. Input beyond SummarizeInputCap is truncated
// first. minLen stops early pruning: once at least minLen words are
// collected, lower-ranked sentences are only added while under maxLen.
func (p *Local) Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	p.ensureInit()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text = textnorm.TruncateBytes(text, SummarizeInputCap)
	if maxLen <= 0 {
		maxLen = 150
	}

	sentences := p.sentenceRe.FindAllString(text, -1)
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	// Token frequencies across the whole text, stopwords excluded.
	freq := make(map[string]float64)
	for _, sentence := range sentences {
		for _, tok := range p.contentTerms(sentence) {
			freq[tok]++
		}
	}
	maxFreq := 0.0
	for _, v := range freq {
		if v > maxFreq {
			maxFreq = v
		}
	}
	if maxFreq > 0 {
		for k := range freq {
			freq[k] /= maxFreq
		}
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, 0, len(sentences))
	for i, sentence := range sentences {
		toks := p.contentTerms(sentence)
		if len(toks) == 0 {
			continue
		}
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		score /= math.Sqrt(float64(len(toks)))
		scores = append(scores, ranked{i, score})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	// Take top sentences until the word budget is exhausted.
	var selected []int
	words := 0
	for _, r := range scores {
		n := len(strings.Fields(sentences[r.idx]))
		if words >= minLen && words+n > maxLen {
			continue
		}
		selected = append(selected, r.idx)
		words += n
		if words >= maxLen {
			break
		}
	}
	sort.Ints(selected)

	parts := make([]string, 0, len(selected))
	for _, idx := range selected {
		parts = append(parts, sentences[idx])
	}
	return strings.Join(parts, " "), nil
}

// contentTerms returns the normalized non-stopword tokens of text.
func (p *Local) contentTerms(text string) []string {
	var out []string
	for _, tok := range textnorm.Tokenize(text) {
		if _, stop := p.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// stopwordSet holds Portuguese function words plus a few English ones
// that show up in mixed-language clinical material.
func stopwordSet() map[string]struct{} {
	words := []string{
		"a", "o", "as", "os", "um", "uma", "uns", "umas",
		"de", "do", "da", "dos", "das", "em", "no", "na", "nos", "nas",
		"por", "para", "com", "sem", "sobre", "entre", "ate", "apos",
		"e", "ou", "mas", "se", "que", "qual", "quais", "como", "quando",
		"ser", "estar", "ter", "haver", "foi", "sao", "era", "esta", "este",
		"isso", "isto", "aquele", "aquela", "seu", "sua", "seus", "suas",
		"ele", "ela", "eles", "elas", "nos", "voce", "voces", "lhe",
		"mais", "menos", "muito", "pouco", "tambem", "ja", "nao", "sim",
		"the", "and", "of", "in", "to", "for", "with", "is", "are",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
