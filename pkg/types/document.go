// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the knowledge engine.
// See docs/ARCHITECTURE.md § Data Model.
package types

import "time"

// Category classifies a document for coarse filtering.
type Category string

const (
	CategoryAILinked   Category = "ai-linked"
	CategoryProtocol   Category = "protocol"
	CategoryResearch   Category = "research"
	CategoryCase       Category = "case"
	CategoryMultimedia Category = "multimedia"
)

// Audience labels the intended readership of a document. Retrieval can be
// scoped to a single audience.
type Audience string

const (
	AudienceProfessional Audience = "professional"
	AudienceStudent      Audience = "student"
	AudiencePatient      Audience = "patient"
)

// Document is the central entity of the knowledge base: an uploaded file
// enriched with extracted text, a generated summary, keywords, and an
// optional embedding vector.
type Document struct {
	// ID is a unique, immutable identifier assigned at insert.
	ID string `json:"id" yaml:"id"`

	// Title is the display name, usually the original filename.
	Title string `json:"title" yaml:"title"`

	// Content is the extracted full text. Empty for uploads whose text
	// extraction has not run yet; backfilled by re-extraction.
	Content string `json:"content" yaml:"content"`

	// Summary is a short generated abstract of Content.
	Summary string `json:"summary" yaml:"summary"`

	// Keywords holds domain vocabulary matches followed by extracted long
	// words, deduplicated case-insensitively, in first-occurrence order.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Embedding is an L2-normalized dense vector, or nil until an
	// embedding job has run for this document.
	Embedding []float64 `json:"embedding,omitempty" yaml:"embedding,omitempty"`

	// Category is the coarse document class.
	Category Category `json:"category" yaml:"category"`

	// Tags supplement Category for free-form filtering.
	Tags []string `json:"tags" yaml:"tags"`

	// Audience lists the audience labels this document targets.
	Audience []Audience `json:"audience" yaml:"audience"`

	// AILinked marks the document as eligible for answer-generation
	// context. Documents with AILinked false are never fed to the QA
	// provider, regardless of relevance score.
	AILinked bool `json:"ai_linked" yaml:"ai_linked"`

	// AIRelevance is a relevance weight on the canonical [0, 1] scale.
	// Out-of-range writes are clamped, not rejected.
	AIRelevance float64 `json:"ai_relevance" yaml:"ai_relevance"`

	// Downloads counts how often the document was fetched. Monotonic.
	Downloads int `json:"downloads" yaml:"downloads"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// ClampRelevance forces v onto the canonical [0, 1] relevance scale.
func ClampRelevance(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SearchResult pairs a document with the score computed for one query and
// the terms that justified the match. Ephemeral; never persisted.
type SearchResult struct {
	Document *Document `json:"document" yaml:"document"`

	// Score is the weighted relevance score, always > 0 in returned
	// result sets.
	Score float64 `json:"score" yaml:"score"`

	// Matched lists the query terms that contributed to Score.
	Matched []string `json:"matched,omitempty" yaml:"matched,omitempty"`
}

// RawFile is an uploaded document before ingestion.
type RawFile struct {
	// Name becomes the document title.
	Name string `json:"name" yaml:"name"`

	// Data is the raw file contents.
	Data []byte `json:"-" yaml:"-"`

	Category Category   `json:"category" yaml:"category"`
	Tags     []string   `json:"tags" yaml:"tags"`
	Audience []Audience `json:"audience" yaml:"audience"`
}

// Stats summarizes the state of the document corpus.
type Stats struct {
	// Total is the number of stored documents.
	Total int `json:"total" yaml:"total"`

	// AILinked is the number of documents eligible for answer context.
	AILinked int `json:"ai_linked" yaml:"ai_linked"`

	// AvgRelevance is the mean AIRelevance across linked documents, on
	// the [0, 1] scale. Zero when no documents are linked.
	AvgRelevance float64 `json:"avg_relevance" yaml:"avg_relevance"`

	// TopCategories lists categories by descending document count.
	TopCategories []CategoryCount `json:"top_categories" yaml:"top_categories"`
}

// CategoryCount is one entry of Stats.TopCategories.
type CategoryCount struct {
	Category Category `json:"category" yaml:"category"`
	Count    int      `json:"count" yaml:"count"`
}
