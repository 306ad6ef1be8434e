// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider supplies the embedding, question-answering, and
// summarization functions the retrieval engine depends on. Providers are
// explicitly constructed and injected; initialization is lazy, idempotent,
// and serialized behind a mutex so concurrent first use loads once.
// See docs/ARCHITECTURE.md § Providers.
package provider

import (
	"context"
	"time"

	"github.com/pdiddy/knowledge-engine/internal/logger"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// Degraded outputs returned when a provider call fails. Callers treat
// these as soft failures and keep going.
const (
	// ApologyText replaces an answer when QA fails internally.
	ApologyText = "Desculpe, não foi possível processar sua pergunta no momento. Tente novamente em instantes."

	// InsufficientText is the canned answer when QA confidence falls
	// below ConfidenceThreshold.
	InsufficientText = "Não há informações suficientes nos documentos consultados para responder com segurança."

	// UnavailableSummary replaces a summary when summarization fails.
	UnavailableSummary = "Resumo indisponível."
)

// ConfidenceThreshold is the minimum QA confidence for returning an
// extracted span instead of InsufficientText.
const ConfidenceThreshold = 0.1

// SummarizeInputCap bounds summarization input; longer text is truncated
// before processing to keep latency predictable.
const SummarizeInputCap = 5000

// Provider produces embeddings, extractive answers, and summaries.
type Provider interface {
	// Embed returns an L2-normalized dense vector for text. Identical
	// input yields identical output for a fixed backend.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Answer extracts an answer span from context for question. The span
	// is always groundable in context; low confidence yields the canned
	// insufficient-information response.
	Answer(ctx context.Context, question, passage string) (types.Answer, error)

	// Summarize compresses text into at most maxLen words, aiming for at
	// least minLen where the input allows.
	Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error)
}

// New constructs the provider selected by cfg, wrapped so every call is
// bounded by cfg.Timeout and fails closed to degraded outputs.
func New(cfg types.ProviderConfig) Provider {
	var p Provider
	switch cfg.Backend {
	case types.BackendOllama:
		p = NewOllama(cfg)
	default:
		p = NewLocal()
	}
	return &guarded{inner: p, timeout: cfg.Timeout}
}

// guarded enforces the fail-closed contract: internal errors and timeouts
// become degraded defaults (empty vector, apology text, unavailable
// summary), logged but never propagated.
type guarded struct {
	inner   Provider
	timeout time.Duration
}

func (g *guarded) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *guarded) Embed(ctx context.Context, text string) ([]float64, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	vec, err := g.inner.Embed(ctx, text)
	if err != nil {
		logger.Warn("embed failed, returning empty vector: %v", err)
		return nil, nil
	}
	return vec, nil
}

func (g *guarded) Answer(ctx context.Context, question, passage string) (types.Answer, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	ans, err := g.inner.Answer(ctx, question, passage)
	if err != nil {
		logger.Warn("answer failed, returning apology: %v", err)
		return types.Answer{Text: ApologyText, Confidence: 0}, nil
	}
	return ans, nil
}

func (g *guarded) Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	summary, err := g.inner.Summarize(ctx, text, maxLen, minLen)
	if err != nil {
		logger.Warn("summarize failed, returning placeholder: %v", err)
		return UnavailableSummary, nil
	}
	return summary, nil
}
