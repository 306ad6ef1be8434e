// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine orchestrates retrieval, answering, and ingestion over
// the document store and the embedding provider. It is the surface the
// surrounding application calls.
// See docs/ARCHITECTURE.md § Engine.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/pdiddy/knowledge-engine/internal/keywords"
	"github.com/pdiddy/knowledge-engine/internal/logger"
	"github.com/pdiddy/knowledge-engine/internal/provider"
	"github.com/pdiddy/knowledge-engine/internal/relevance"
	"github.com/pdiddy/knowledge-engine/internal/similarity"
	"github.com/pdiddy/knowledge-engine/internal/store"
	"github.com/pdiddy/knowledge-engine/internal/textnorm"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)


// DocumentStore is the persistence contract the engine needs. *store.Store
// implements it; tests may substitute a failing double.
type DocumentStore interface {
	Find(ctx context.Context, filter store.Filter, limit int) ([]*types.Document, error)
	GetByID(ctx context.Context, id string) (*types.Document, error)
	Insert(ctx context.Context, doc *types.Document) (*types.Document, error)
	Update(ctx context.Context, id string, patch store.Patch) (*types.Document, error)
	Count(ctx context.Context, filter store.Filter) (int, error)
	CategoryCounts(ctx context.Context) ([]types.CategoryCount, error)
	AvgLinkedRelevance(ctx context.Context) (float64, error)
	TitleExists(ctx context.Context, title string) (bool, error)
	IncrementDownloads(ctx context.Context, id string) error
}

// Engine wires the document store, the embedding provider, and the
// keyword extractor into the operations exposed to the application.
type Engine struct {
	store     DocumentStore
	provider  provider.Provider
	extractor *keywords.Extractor

	candidateLimit   int
	contextLimit     int
	maxContentLength int
}

// New builds an engine from its injected collaborators and configuration.
func New(st DocumentStore, p provider.Provider, extractor *keywords.Extractor, cfg types.EngineConfig) *Engine {
	e := &Engine{
		store:            st,
		provider:         p,
		extractor:        extractor,
		candidateLimit:   cfg.Retrieval.CandidateLimit,
		contextLimit:     cfg.Retrieval.ContextLimit,
		maxContentLength: cfg.Ingest.MaxContentLength,
	}
	if e.candidateLimit <= 0 || e.candidateLimit > 10 {
		e.candidateLimit = 10
	}
	if e.contextLimit <= 0 {
		e.contextLimit = 3
	}
	if e.maxContentLength <= 0 {
		e.maxContentLength = 100000
	}
	return e
}

// scanCorpus fetches every document matching filter. Search, Similar,
// and re-extraction score the whole corpus, so no retrieval cap applies;
// the corpus is small (tens to low thousands) and scoring it directly is
// cheaper than maintaining a second index.
func (e *Engine) scanCorpus(ctx context.Context, filter store.Filter) ([]*types.Document, error) {
	total, err := e.store.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("counting candidates: %w", err)
	}
	if total == 0 {
		return nil, nil
	}
	docs, err := e.store.Find(ctx, filter, total)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}
	return docs, nil
}

// Search scores the filtered corpus against query and returns matches in
// descending score order, most recent first on ties. Zero-score documents
// are excluded entirely: a query matching nothing yields an empty result
// set, not a best-effort fallback. An empty query short-circuits to an
// empty result without touching the store.
func (e *Engine) Search(ctx context.Context, query string, filter store.Filter, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	// Malformed input: nothing to match against.
	if len(textnorm.Tokenize(query)) == 0 {
		return nil, nil
	}

	docs, err := e.scanCorpus(ctx, filter)
	if err != nil {
		return nil, err
	}

	var results []types.SearchResult
	for _, doc := range docs {
		scored := relevance.Score(query, doc)
		if scored.Score <= 0 {
			continue
		}
		results = append(results, types.SearchResult{
			Document: doc,
			Score:    scored.Score,
			Matched:  scored.Matched,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.CreatedAt.After(results[j].Document.CreatedAt)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Get fetches a document by ID and records the access in its downloads
// counter. A failed counter bump is logged, never surfaced: the fetch
// already succeeded.
func (e *Engine) Get(ctx context.Context, id string) (*types.Document, error) {
	doc, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.store.IncrementDownloads(ctx, id); err != nil {
		logger.Warn("counting download of %s: %v", id, err)
	}
	return doc, nil
}

// Similar returns documents related to the document with the given ID,
// using the general find-similar threshold (0.3), most similar first.
func (e *Engine) Similar(ctx context.Context, id string, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	doc, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pool, err := e.scanCorpus(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}

	var results []types.SearchResult
	for _, other := range pool {
		if other.ID == doc.ID {
			continue
		}
		sim := similarity.Similarity(doc, other)
		if sim <= similarity.RelatedThreshold {
			continue
		}
		results = append(results, types.SearchResult{
			Document: other,
			Score:    sim,
			Matched:  similarity.SharedKeywords(doc, other),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// LinkToAI marks a document as eligible for answer-generation context
// with the given relevance weight. Out-of-range weights are clamped onto
// the canonical [0, 1] scale by the store, never rejected.
func (e *Engine) LinkToAI(ctx context.Context, id string, relevanceWeight float64) error {
	linked := true
	_, err := e.store.Update(ctx, id, store.Patch{
		AILinked:    &linked,
		AIRelevance: &relevanceWeight,
	})
	return err
}

// UnlinkFromAI removes a document from answer-generation eligibility.
// The stored relevance weight is kept for a later re-link.
func (e *Engine) UnlinkFromAI(ctx context.Context, id string) error {
	linked := false
	_, err := e.store.Update(ctx, id, store.Patch{AILinked: &linked})
	return err
}

// Stats reports corpus totals: document count, AI-linked count, average
// linked relevance, and categories by size.
func (e *Engine) Stats(ctx context.Context) (types.Stats, error) {
	total, err := e.store.Count(ctx, store.Filter{})
	if err != nil {
		return types.Stats{}, fmt.Errorf("counting documents: %w", err)
	}
	linked, err := e.store.Count(ctx, store.Filter{LinkedOnly: true})
	if err != nil {
		return types.Stats{}, fmt.Errorf("counting linked documents: %w", err)
	}
	avg, err := e.store.AvgLinkedRelevance(ctx)
	if err != nil {
		return types.Stats{}, fmt.Errorf("averaging relevance: %w", err)
	}
	categories, err := e.store.CategoryCounts(ctx)
	if err != nil {
		return types.Stats{}, fmt.Errorf("counting categories: %w", err)
	}

	logger.Debug("stats: %d documents, %d linked", total, linked)
	return types.Stats{
		Total:         total,
		AILinked:      linked,
		AvgRelevance:  avg,
		TopCategories: categories,
	}, nil
}
