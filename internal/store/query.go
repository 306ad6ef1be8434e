// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// Filter restricts Find and Count. Zero-value fields are ignored.
type Filter struct {
	// Category keeps only documents of one category.
	Category types.Category

	// Audience keeps only documents targeting the given audience.
	Audience types.Audience

	// LinkedOnly keeps only documents eligible for answer context.
	// This filter is strict: an unlinked document never passes it,
	// regardless of any score.
	LinkedOnly bool

	// TextMatch is an FTS5 full-text query over title, summary, and
	// content.
	TextMatch string
}

const selectColumns = `SELECT d.id, d.title, d.content, d.summary, d.keywords, d.embedding,
	d.category, d.tags, d.audience, d.ai_linked, d.ai_relevance, d.downloads,
	d.created_at, d.updated_at`

// Find returns documents matching filter, most recent first (FTS queries
// rank by relevance instead). limit of zero uses the store default.
func (s *Store) Find(ctx context.Context, filter Filter, limit int) ([]*types.Document, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = filter.TextMatch != ""
	)

	if useFTS {
		qb.WriteString(selectColumns + `
			FROM documents_fts
			JOIN documents d ON d.rowid = documents_fts.rowid
			WHERE documents_fts MATCH ?`)
		args = append(args, ftsQuery(filter.TextMatch))
	} else {
		qb.WriteString(selectColumns + ` FROM documents d WHERE 1=1`)
	}

	appendFilter(&qb, &args, filter)

	if useFTS {
		qb.WriteString(` ORDER BY documents_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY d.created_at DESC`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []*types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the number of documents matching filter.
func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	var (
		qb   strings.Builder
		args []any
	)

	if filter.TextMatch != "" {
		qb.WriteString(`SELECT count(*)
			FROM documents_fts
			JOIN documents d ON d.rowid = documents_fts.rowid
			WHERE documents_fts MATCH ?`)
		args = append(args, ftsQuery(filter.TextMatch))
	} else {
		qb.WriteString(`SELECT count(*) FROM documents d WHERE 1=1`)
	}

	appendFilter(&qb, &args, filter)

	var count int
	if err := s.db.QueryRowContext(ctx, qb.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// TitleExists reports whether any document carries the exact title.
// Batch ingestion uses it to skip files already in the corpus.
func (s *Store) TitleExists(ctx context.Context, title string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM documents WHERE title = ?`, title).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking title %q: %w", title, err)
	}
	return count > 0, nil
}

// CategoryCounts returns per-category document counts, largest first.
func (s *Store) CategoryCounts(ctx context.Context) ([]types.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, count(*) FROM documents
		 WHERE category != '' GROUP BY category ORDER BY count(*) DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	var counts []types.CategoryCount
	for rows.Next() {
		var cc types.CategoryCount
		var category string
		if err := rows.Scan(&category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		cc.Category = types.Category(category)
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

// AvgLinkedRelevance returns the mean relevance over AI-linked documents,
// or 0 when none are linked.
func (s *Store) AvgLinkedRelevance(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT avg(ai_relevance) FROM documents WHERE ai_linked = 1`).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("averaging relevance: %w", err)
	}
	return avg.Float64, nil
}

// appendFilter adds the structured filter clauses shared by Find and Count.
func appendFilter(qb *strings.Builder, args *[]any, filter Filter) {
	if filter.Category != "" {
		qb.WriteString(` AND d.category = ?`)
		*args = append(*args, string(filter.Category))
	}
	if filter.Audience != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(d.audience) WHERE value = ?)`)
		*args = append(*args, string(filter.Audience))
	}
	if filter.LinkedOnly {
		qb.WriteString(` AND d.ai_linked = 1`)
	}
}

// ftsQuery quotes each term so user input cannot inject FTS5 operators.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, ``)+`"`)
	}
	return strings.Join(quoted, " ")
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*types.Document, error) {
	var (
		doc           types.Document
		keywordsJSON  string
		embeddingJSON sql.NullString
		category      string
		tagsJSON      string
		audienceJSON  string
		aiLinked      int
		createdAt     string
		updatedAt     string
	)

	if err := row.Scan(
		&doc.ID, &doc.Title, &doc.Content, &doc.Summary, &keywordsJSON, &embeddingJSON,
		&category, &tagsJSON, &audienceJSON, &aiLinked, &doc.AIRelevance, &doc.Downloads,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(keywordsJSON), &doc.Keywords)
	json.Unmarshal([]byte(tagsJSON), &doc.Tags)
	json.Unmarshal([]byte(audienceJSON), &doc.Audience)
	if embeddingJSON.Valid {
		json.Unmarshal([]byte(embeddingJSON.String), &doc.Embedding)
	}

	doc.Category = types.Category(category)
	doc.AILinked = aiLinked == 1

	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		doc.CreatedAt = t
	}
	if t, err := time.Parse(timeLayout, updatedAt); err == nil {
		doc.UpdatedAt = t
	}

	return &doc, nil
}
