// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{DataDir: t.TempDir(), MaxResults: 20})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDocument(title string) *types.Document {
	return &types.Document{
		Title:    title,
		Content:  "A titulação inicia com doses baixas de CBD.",
		Summary:  "Orientações de titulação.",
		Keywords: []string{"cbd", "titulacao"},
		Category: types.CategoryProtocol,
		Tags:     []string{"dosagem"},
		Audience: []types.Audience{types.AudienceProfessional},
	}
}

func insertHelper(t *testing.T, s *Store, doc *types.Document) *types.Document {
	t.Helper()
	stored, err := s.Insert(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	return stored
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	s := testStore(t)

	tables := []string{"documents", "documents_fts"}
	for _, table := range tables {
		var count int
		err := s.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, indexDir, dbFile)); os.IsNotExist(err) {
		t.Error("database file not created")
	}
}

// --- insert / get tests ---

func TestInsertAssignsIDAndTimestamps(t *testing.T) {
	s := testStore(t)

	stored := insertHelper(t, s, sampleDocument("Guia Cannabis Medicinal"))
	if stored.ID == "" {
		t.Fatal("expected assigned ID")
	}
	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := s.GetByID(context.Background(), stored.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Guia Cannabis Medicinal" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "cbd" {
		t.Errorf("keywords = %v", got.Keywords)
	}
	if got.Category != types.CategoryProtocol {
		t.Errorf("category = %q", got.Category)
	}
}

func TestInsertClampsRelevance(t *testing.T) {
	s := testStore(t)

	doc := sampleDocument("doc")
	doc.AIRelevance = 3.7
	stored := insertHelper(t, s, doc)
	if stored.AIRelevance != 1.0 {
		t.Errorf("relevance = %v, want clamped 1.0", stored.AIRelevance)
	}

	doc2 := sampleDocument("doc2")
	doc2.AIRelevance = -0.5
	stored2 := insertHelper(t, s, doc2)
	if stored2.AIRelevance != 0.0 {
		t.Errorf("relevance = %v, want clamped 0.0", stored2.AIRelevance)
	}
}

func TestInsertStoresEmbedding(t *testing.T) {
	s := testStore(t)

	doc := sampleDocument("embedded")
	doc.Embedding = []float64{0.6, 0.8}
	stored := insertHelper(t, s, doc)

	got, err := s.GetByID(context.Background(), stored.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Embedding) != 2 || got.Embedding[0] != 0.6 {
		t.Errorf("embedding = %v", got.Embedding)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// --- update tests ---

func TestUpdatePartial(t *testing.T) {
	s := testStore(t)
	stored := insertHelper(t, s, sampleDocument("original"))

	linked := true
	relevance := 0.8
	summary := "Novo resumo."
	updated, err := s.Update(context.Background(), stored.ID, Patch{
		AILinked:    &linked,
		AIRelevance: &relevance,
		Summary:     &summary,
	})
	if err != nil {
		t.Fatal(err)
	}

	if !updated.AILinked || updated.AIRelevance != 0.8 {
		t.Errorf("linked = %v relevance = %v", updated.AILinked, updated.AIRelevance)
	}
	if updated.Summary != "Novo resumo." {
		t.Errorf("summary = %q", updated.Summary)
	}
	// Untouched fields survive.
	if updated.Title != "original" {
		t.Errorf("title = %q", updated.Title)
	}
}

func TestUpdateClampsRelevance(t *testing.T) {
	s := testStore(t)
	stored := insertHelper(t, s, sampleDocument("doc"))

	over := 1.5
	updated, err := s.Update(context.Background(), stored.ID, Patch{AIRelevance: &over})
	if err != nil {
		t.Fatal(err)
	}
	if updated.AIRelevance != 1.0 {
		t.Errorf("relevance = %v, want 1.0", updated.AIRelevance)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := testStore(t)

	title := "x"
	_, err := s.Update(context.Background(), "missing", Patch{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestIncrementDownloads(t *testing.T) {
	s := testStore(t)
	stored := insertHelper(t, s, sampleDocument("doc"))

	for i := 0; i < 3; i++ {
		if err := s.IncrementDownloads(context.Background(), stored.ID); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetByID(context.Background(), stored.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Downloads != 3 {
		t.Errorf("downloads = %d, want 3", got.Downloads)
	}

	if err := s.IncrementDownloads(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// --- find / count tests ---

func TestFindFilters(t *testing.T) {
	s := testStore(t)

	protocol := sampleDocument("Protocolo IMRE")
	protocol.AILinked = true
	insertHelper(t, s, protocol)

	research := sampleDocument("Revisão de estudos")
	research.Category = types.CategoryResearch
	research.Audience = []types.Audience{types.AudienceStudent}
	insertHelper(t, s, research)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 2},
		{"by category", Filter{Category: types.CategoryResearch}, 1},
		{"by audience", Filter{Audience: types.AudienceStudent}, 1},
		{"linked only", Filter{LinkedOnly: true}, 1},
		{"category misses", Filter{Category: types.CategoryCase}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.Find(context.Background(), tt.filter, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(docs) != tt.want {
				t.Errorf("got %d documents, want %d", len(docs), tt.want)
			}

			count, err := s.Count(context.Background(), tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if count != tt.want {
				t.Errorf("count = %d, want %d", count, tt.want)
			}
		})
	}
}

func TestFindLinkedOnlyNeverLeaksUnlinked(t *testing.T) {
	s := testStore(t)

	unlinked := sampleDocument("Altamente relevante mas não vinculado")
	unlinked.AIRelevance = 1.0
	insertHelper(t, s, unlinked)

	docs, err := s.Find(context.Background(), Filter{LinkedOnly: true}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Fatalf("unlinked document leaked into linked-only results")
	}
}

func TestFindTextMatch(t *testing.T) {
	s := testStore(t)

	insertHelper(t, s, sampleDocument("Guia de titulação"))
	other := sampleDocument("Outro tema")
	other.Content = "Nada relacionado a canabinoides aqui."
	other.Summary = "Outro resumo."
	insertHelper(t, s, other)

	docs, err := s.Find(context.Background(), Filter{TextMatch: "titulação"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Title != "Guia de titulação" {
		t.Fatalf("text match returned %d docs", len(docs))
	}
}

func TestFindMostRecentFirst(t *testing.T) {
	s := testStore(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	insertHelper(t, s, sampleDocument("antigo"))
	insertHelper(t, s, sampleDocument("recente"))

	docs, err := s.Find(context.Background(), Filter{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].Title != "recente" {
		t.Fatalf("expected most recent first, got %v", docs[0].Title)
	}
}

func TestFindOrdersSubsecondTimestamps(t *testing.T) {
	s := testStore(t)

	// .1s serializes after .15s under a trailing-zero-trimming layout,
	// so lexicographic DESC would report the older document first.
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	stamps := []time.Time{
		base.Add(100 * time.Millisecond),
		base.Add(150 * time.Millisecond),
	}
	i := 0
	s.now = func() time.Time {
		ts := stamps[i]
		i++
		return ts
	}

	insertHelper(t, s, sampleDocument("antigo"))
	insertHelper(t, s, sampleDocument("recente"))

	docs, err := s.Find(context.Background(), Filter{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].Title != "recente" {
		t.Fatalf("expected most recent first, got %v", docs[0].Title)
	}
}

func TestFindLimit(t *testing.T) {
	s := testStore(t)
	for i := 0; i < 5; i++ {
		insertHelper(t, s, sampleDocument("doc"))
	}

	docs, err := s.Find(context.Background(), Filter{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Errorf("got %d docs, want 3", len(docs))
	}
}

// --- stats helpers ---

func TestCategoryCounts(t *testing.T) {
	s := testStore(t)

	for i := 0; i < 3; i++ {
		insertHelper(t, s, sampleDocument("p"))
	}
	research := sampleDocument("r")
	research.Category = types.CategoryResearch
	insertHelper(t, s, research)

	counts, err := s.CategoryCounts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("got %d categories", len(counts))
	}
	if counts[0].Category != types.CategoryProtocol || counts[0].Count != 3 {
		t.Errorf("top category = %+v", counts[0])
	}
}

func TestAvgLinkedRelevance(t *testing.T) {
	s := testStore(t)

	// No linked documents: average is zero.
	avg, err := s.AvgLinkedRelevance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if avg != 0 {
		t.Errorf("avg = %v, want 0", avg)
	}

	for _, rel := range []float64{0.4, 0.8} {
		doc := sampleDocument("linked")
		doc.AILinked = true
		doc.AIRelevance = rel
		insertHelper(t, s, doc)
	}
	unlinked := sampleDocument("unlinked")
	unlinked.AIRelevance = 1.0
	insertHelper(t, s, unlinked)

	avg, err = s.AvgLinkedRelevance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if avg < 0.59 || avg > 0.61 {
		t.Errorf("avg = %v, want 0.6", avg)
	}
}

// --- export tests ---

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	stored, err := s.Insert(context.Background(), sampleDocument("exportável"))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.ExportJSON(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, indexDir, "export.json"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []ExportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != stored.ID {
		t.Errorf("entries = %+v", entries)
	}
}

func TestExportYAML(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.Insert(context.Background(), sampleDocument("doc")); err != nil {
		t.Fatal(err)
	}
	if err := s.ExportYAML(context.Background(), Filter{}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, indexDir, "export.yaml")); err != nil {
		t.Error("export.yaml not written")
	}
}
