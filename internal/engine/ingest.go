// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/knowledge-engine/internal/logger"
	"github.com/pdiddy/knowledge-engine/internal/provider"
	"github.com/pdiddy/knowledge-engine/internal/store"
	"github.com/pdiddy/knowledge-engine/internal/textnorm"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// ErrEmptyFile rejects uploads with no content at all. Everything past
// this check is best-effort: a document whose enrichment failed is still
// stored and can be backfilled later.
var ErrEmptyFile = errors.New("file has no content")

// textExtensions lists the file extensions batch ingestion picks up.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Ingest runs the full pipeline for one uploaded file: text extraction,
// summarization, keyword extraction, and embedding, then a single store
// insert. Enrichment steps are individually fault-tolerant; only an empty
// upload or a store failure aborts the ingest.
func (e *Engine) Ingest(ctx context.Context, file types.RawFile) (*types.Document, error) {
	if len(file.Data) == 0 {
		return nil, fmt.Errorf("ingesting %q: %w", file.Name, ErrEmptyFile)
	}

	content := e.extractText(file.Data)

	doc := &types.Document{
		Title:    file.Name,
		Content:  content,
		Category: file.Category,
		Tags:     file.Tags,
		Audience: file.Audience,
	}
	e.enrich(ctx, doc)

	stored, err := e.store.Insert(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("storing %q: %w", file.Name, err)
	}
	logger.Debug("ingested %q as %s (%d keywords, %d-dim embedding)",
		stored.Title, stored.ID, len(stored.Keywords), len(stored.Embedding))
	return stored, nil
}

// extractText pulls UTF-8 text out of the raw bytes and truncates it to
// the configured maximum. Invalid byte sequences are dropped rather than
// carried into the index.
func (e *Engine) extractText(data []byte) string {
	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		text = strings.ToValidUTF8(string(data), "")
	}
	text = strings.TrimSpace(text)
	return textnorm.TruncateBytes(text, e.maxContentLength)
}

// enrich fills the derived fields of doc from its content. Each step
// tolerates provider failure independently: a summarizer outage does not
// cost the document its keywords or embedding.
func (e *Engine) enrich(ctx context.Context, doc *types.Document) {
	if doc.Content == "" {
		return
	}

	summary, err := e.provider.Summarize(ctx, doc.Content, 0, 0)
	if err != nil {
		logger.Warn("summarizing %q: %v", doc.Title, err)
	} else if summary != provider.UnavailableSummary {
		doc.Summary = summary
	}

	doc.Keywords = e.extractor.Extract(doc.Content)

	embedding, err := e.provider.Embed(ctx, doc.Content)
	if err != nil {
		logger.Warn("embedding %q: %v", doc.Title, err)
	} else {
		doc.Embedding = embedding
	}
}

// IngestSummary reports the outcome of a batch ingestion run.
type IngestSummary struct {
	Ingested int
	Skipped  int
	Failed   int
}

// IngestDir walks dir for text files and ingests each one, skipping
// files whose title already exists in the corpus. Per-file failures are
// logged and counted; they never abort the batch.
func (e *Engine) IngestDir(ctx context.Context, dir string, category types.Category, tags []string, audience []types.Audience) (IngestSummary, error) {
	var summary IngestSummary

	entries, err := os.ReadDir(dir)
	if err != nil {
		return summary, fmt.Errorf("reading %q: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !textExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		exists, err := e.store.TitleExists(ctx, entry.Name())
		if err != nil {
			return summary, fmt.Errorf("checking %q: %w", entry.Name(), err)
		}
		if exists {
			logger.Debug("skipping %q: already ingested", entry.Name())
			summary.Skipped++
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Warn("reading %q: %v", entry.Name(), err)
			summary.Failed++
			continue
		}

		if _, err := e.Ingest(ctx, types.RawFile{
			Name:     entry.Name(),
			Data:     data,
			Category: category,
			Tags:     tags,
			Audience: audience,
		}); err != nil {
			logger.Warn("ingesting %q: %v", entry.Name(), err)
			summary.Failed++
			continue
		}
		summary.Ingested++
	}

	return summary, nil
}

// Reextract backfills derived fields for documents that are missing a
// summary, keywords, or an embedding, typically after a provider outage
// during the original ingest. It returns how many documents were updated.
func (e *Engine) Reextract(ctx context.Context) (int, error) {
	docs, err := e.scanCorpus(ctx, store.Filter{})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		if doc.Summary != "" && len(doc.Keywords) > 0 && len(doc.Embedding) > 0 {
			continue
		}

		fresh := &types.Document{Title: doc.Title, Content: doc.Content}
		e.enrich(ctx, fresh)

		patch := store.Patch{}
		changed := false
		if doc.Summary == "" && fresh.Summary != "" {
			patch.Summary = &fresh.Summary
			changed = true
		}
		if len(doc.Keywords) == 0 && len(fresh.Keywords) > 0 {
			patch.Keywords = &fresh.Keywords
			changed = true
		}
		if len(doc.Embedding) == 0 && len(fresh.Embedding) > 0 {
			patch.Embedding = &fresh.Embedding
			changed = true
		}
		if !changed {
			continue
		}

		if _, err := e.store.Update(ctx, doc.ID, patch); err != nil {
			logger.Warn("backfilling %q: %v", doc.Title, err)
			continue
		}
		updated++
	}

	return updated, nil
}
