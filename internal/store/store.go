// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists documents in SQLite and serves filtered queries
// for the retrieval engine. Store failures always propagate to the
// caller; a missing row is reported as ErrNotFound, never masked as an
// empty result. See docs/ARCHITECTURE.md § Data Model.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "documents.db"
)

// ErrNotFound reports that no document exists for the requested ID.
var ErrNotFound = errors.New("document not found")

// timeLayout is RFC 3339 with fixed nanosecond width. Timestamps are
// stored as TEXT and ordered lexicographically, so the fractional part
// must not trim trailing zeros the way RFC3339Nano does.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the document database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int

	// now is injected so tests control timestamps.
	now func() time.Time
}

// NewStore opens or creates the document database at
// dataDir/index/documents.db, creating the schema if needed.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
		now:        func() time.Time { return time.Now().UTC() },
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			keywords TEXT NOT NULL DEFAULT '[]',
			embedding TEXT,
			category TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			audience TEXT NOT NULL DEFAULT '[]',
			ai_linked INTEGER NOT NULL DEFAULT 0,
			ai_relevance REAL NOT NULL DEFAULT 0,
			downloads INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_ai_linked ON documents(ai_linked)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE documents_fts USING fts5(title, summary, content, content=documents, content_rowid=rowid)`,
			`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(rowid, title, summary, content)
				VALUES (new.rowid, new.title, new.summary, new.content);
			END`,
			`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, summary, content)
				VALUES('delete', old.rowid, old.title, old.summary, old.content);
			END`,
			`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, summary, content)
				VALUES('delete', old.rowid, old.title, old.summary, old.content);
				INSERT INTO documents_fts(rowid, title, summary, content)
				VALUES (new.rowid, new.title, new.summary, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Insert stores a new document, assigning its ID and timestamps. The
// relevance weight is clamped onto the canonical [0, 1] scale.
func (s *Store) Insert(ctx context.Context, doc *types.Document) (*types.Document, error) {
	stored := *doc
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	stored.AIRelevance = types.ClampRelevance(stored.AIRelevance)
	stored.Downloads = 0

	keywordsJSON, _ := json.Marshal(stored.Keywords)
	tagsJSON, _ := json.Marshal(stored.Tags)
	audienceJSON, _ := json.Marshal(stored.Audience)

	var embeddingJSON any
	if len(stored.Embedding) > 0 {
		data, _ := json.Marshal(stored.Embedding)
		embeddingJSON = string(data)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, content, summary, keywords, embedding,
			category, tags, audience, ai_linked, ai_relevance, downloads, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Title, stored.Content, stored.Summary,
		string(keywordsJSON), embeddingJSON, string(stored.Category),
		string(tagsJSON), string(audienceJSON),
		boolToInt(stored.AILinked), stored.AIRelevance, stored.Downloads,
		stored.CreatedAt.Format(timeLayout), stored.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	return &stored, nil
}

// GetByID returns the document with the given ID, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*types.Document, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM documents d WHERE d.id = ?`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading document %s: %w", id, err)
	}
	return doc, nil
}

// Patch holds a partial document update. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Content     *string
	Summary     *string
	Keywords    *[]string
	Embedding   *[]float64
	Category    *types.Category
	Tags        *[]string
	Audience    *[]types.Audience
	AILinked    *bool
	AIRelevance *float64
}

// Update applies a partial update and returns the updated document.
// Returns ErrNotFound when the ID does not exist. Relevance writes are
// clamped to [0, 1], not rejected.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*types.Document, error) {
	sets := []string{"updated_at = ?"}
	args := []any{s.now().Format(timeLayout)}

	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Summary != nil {
		add("summary", *patch.Summary)
	}
	if patch.Keywords != nil {
		data, _ := json.Marshal(*patch.Keywords)
		add("keywords", string(data))
	}
	if patch.Embedding != nil {
		if len(*patch.Embedding) == 0 {
			add("embedding", nil)
		} else {
			data, _ := json.Marshal(*patch.Embedding)
			add("embedding", string(data))
		}
	}
	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.Tags != nil {
		data, _ := json.Marshal(*patch.Tags)
		add("tags", string(data))
	}
	if patch.Audience != nil {
		data, _ := json.Marshal(*patch.Audience)
		add("audience", string(data))
	}
	if patch.AILinked != nil {
		add("ai_linked", boolToInt(*patch.AILinked))
	}
	if patch.AIRelevance != nil {
		add("ai_relevance", types.ClampRelevance(*patch.AIRelevance))
	}

	query := "UPDATE documents SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating document %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

// IncrementDownloads bumps the usage counter for a document.
func (s *Store) IncrementDownloads(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET downloads = downloads + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("incrementing downloads for %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
