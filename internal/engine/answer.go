// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/knowledge-engine/internal/logger"
	"github.com/pdiddy/knowledge-engine/internal/provider"
	"github.com/pdiddy/knowledge-engine/internal/relevance"
	"github.com/pdiddy/knowledge-engine/internal/similarity"
	"github.com/pdiddy/knowledge-engine/internal/store"
	"github.com/pdiddy/knowledge-engine/internal/textnorm"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// NoContextResponse is returned when no AI-linked documents exist. The
// QA provider is never invoked with empty context.
const NoContextResponse = "Ainda não há documentos vinculados à base de conhecimento para responder a essa pergunta. " +
	"Vincule materiais relevantes e tente novamente."

// embeddingWeight converts a cosine similarity in [0, 1] into the same
// magnitude range as the textual relevance score when ranking candidates.
const embeddingWeight = 50

// templateFamily pairs question keywords with a response framing.
type templateFamily struct {
	keywords []string
	header   string
	footer   string
}

// templateFamilies is scanned in order; the first keyword hit wins.
// Keywords are matched against the normalized question.
var templateFamilies = []templateFamily{
	{
		keywords: []string{"dose", "dosagem", "titulacao", "quantidade", "quanto"},
		header:   "Sobre dosagem e titulação:",
		footer:   "Ajustes de dose devem sempre ser conduzidos por um profissional habilitado.",
	},
	{
		keywords: []string{"protocolo", "imre", "avaliacao", "anamnese"},
		header:   "Sobre protocolos de avaliação:",
		footer:   "Consulte o protocolo completo antes de aplicá-lo em atendimento.",
	},
	{
		keywords: []string{"legislacao", "lei", "anvisa", "juridico", "regulamentacao"},
		header:   "Sobre o contexto regulatório:",
		footer:   "Normas mudam com frequência; confirme a vigência junto às fontes oficiais.",
	},
	{
		keywords: []string{"estudo", "pesquisa", "evidencia", "eficacia"},
		header:   "Sobre as evidências disponíveis:",
		footer:   "As conclusões refletem os materiais vinculados, não uma revisão sistemática.",
	},
}

const defaultHeader = "Com base nos materiais consultados:"

// AnswerQuestion runs the retrieval-augmented answering pipeline. The
// returned QuestionAnswer always carries a usable Text, even on failure;
// a non-nil error additionally signals a store failure, the one category
// that is never masked. Panics inside the pipeline degrade to the
// provider apology instead of propagating.
func (e *Engine) AnswerQuestion(ctx context.Context, question string) (qa types.QuestionAnswer, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("answer pipeline panic: %v", r)
			qa = types.QuestionAnswer{Text: provider.ApologyText}
			err = nil
		}
	}()

	// Malformed input short-circuits before any store or provider work.
	if len(textnorm.Tokenize(question)) == 0 {
		return types.QuestionAnswer{Text: NoContextResponse}, nil
	}

	// Retrieve: recent AI-linked documents only. Unlinked documents are
	// never eligible for answer context, whatever their score.
	candidates, err := e.store.Find(ctx, store.Filter{LinkedOnly: true}, e.candidateLimit)
	if err != nil {
		return types.QuestionAnswer{Text: provider.ApologyText},
			fmt.Errorf("retrieving answer context: %w", err)
	}
	if len(candidates) == 0 {
		return types.QuestionAnswer{Text: NoContextResponse}, nil
	}

	selected := e.selectContext(ctx, question, candidates)

	// Cross-analysis is side-channel enrichment; it never gates the answer.
	analysis := similarity.Analyze(selected)

	var contextParts []string
	var titles []string
	for _, doc := range selected {
		titles = append(titles, doc.Title)
		if doc.Content != "" {
			contextParts = append(contextParts, doc.Content)
		}
	}

	answer, _ := e.provider.Answer(ctx, question, strings.Join(contextParts, "\n"))

	return types.QuestionAnswer{
		Text:            formatAnswer(question, answer, titles, analysis),
		ConsultedTitles: titles,
	}, nil
}

// selectContext ranks candidates by embedding similarity to the question
// combined with the textual relevance score, and keeps the top few for
// QA context.
func (e *Engine) selectContext(ctx context.Context, question string, candidates []*types.Document) []*types.Document {
	queryVec, _ := e.provider.Embed(ctx, question)
	queryDoc := &types.Document{Embedding: queryVec}

	type ranked struct {
		doc   *types.Document
		score float64
	}
	rankedDocs := make([]ranked, 0, len(candidates))
	for _, doc := range candidates {
		score := relevance.Score(question, doc).Score
		if len(queryVec) > 0 && len(doc.Embedding) > 0 {
			score += similarity.Similarity(queryDoc, doc) * embeddingWeight
		}
		rankedDocs = append(rankedDocs, ranked{doc, score})
	}

	sort.SliceStable(rankedDocs, func(i, j int) bool {
		return rankedDocs[i].score > rankedDocs[j].score
	})

	limit := e.contextLimit
	if limit > len(rankedDocs) {
		limit = len(rankedDocs)
	}
	selected := make([]*types.Document, 0, limit)
	for _, r := range rankedDocs[:limit] {
		selected = append(selected, r.doc)
	}
	return selected
}

// formatAnswer assembles the domain-flavored response: a template family
// chosen by question keywords, the raw answer span, the consulted titles,
// and any cross-analysis findings.
func formatAnswer(question string, answer types.Answer, titles []string, analysis types.CrossAnalysis) string {
	family := templateFamily{header: defaultHeader}
	normQuestion := textnorm.Normalize(question)
	for _, f := range templateFamilies {
		if matchesFamily(normQuestion, f.keywords) {
			family = f
			break
		}
	}

	var b strings.Builder
	b.WriteString(family.header)
	b.WriteString("\n\n")
	b.WriteString(answer.Text)

	if len(titles) > 0 {
		b.WriteString("\n\nDocumentos consultados:\n")
		for _, title := range titles {
			b.WriteString("  - ")
			b.WriteString(title)
			b.WriteString("\n")
		}
	}

	if len(analysis.Patterns) > 0 {
		b.WriteString("\nTemas dominantes: ")
		b.WriteString(strings.Join(analysis.Patterns, ", "))
		b.WriteString("\n")
	}
	for _, pair := range analysis.RelatedPairs {
		fmt.Fprintf(&b, "Materiais fortemente relacionados: %q e %q (%.0f%%)\n",
			pair.TitleA, pair.TitleB, pair.Similarity*100)
	}
	for _, ref := range analysis.CrossReferences {
		fmt.Fprintf(&b, "Referência a pesquisa empírica em %q (relevância %s)\n",
			ref.Title, ref.Relevance)
	}

	if family.footer != "" {
		b.WriteString("\n")
		b.WriteString(family.footer)
	}

	return strings.TrimRight(b.String(), "\n")
}

// matchesFamily reports whether any family keyword occurs in the
// normalized question.
func matchesFamily(normQuestion string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(normQuestion, kw) {
			return true
		}
	}
	return false
}
