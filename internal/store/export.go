// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// ExportEntry is one document in an export file. Content is omitted to
// keep exports reviewable; summaries and keywords carry the substance.
type ExportEntry struct {
	ID          string           `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Summary     string           `json:"summary" yaml:"summary"`
	Keywords    []string         `json:"keywords" yaml:"keywords"`
	Category    types.Category   `json:"category" yaml:"category"`
	Tags        []string         `json:"tags" yaml:"tags"`
	Audience    []types.Audience `json:"audience" yaml:"audience"`
	AILinked    bool             `json:"ai_linked" yaml:"ai_linked"`
	AIRelevance float64          `json:"ai_relevance" yaml:"ai_relevance"`
	Downloads   int              `json:"downloads" yaml:"downloads"`
}

const exportLimit = 100000

// ExportYAML writes the document index to dataDir/index/export.yaml,
// honoring the same filters as Find.
func (s *Store) ExportYAML(ctx context.Context, filter Filter) error {
	entries, err := s.exportEntries(ctx, filter)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dataDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the document index to dataDir/index/export.json,
// honoring the same filters as Find.
func (s *Store) ExportJSON(ctx context.Context, filter Filter) error {
	entries, err := s.exportEntries(ctx, filter)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dataDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, filter Filter) ([]ExportEntry, error) {
	docs, err := s.Find(ctx, filter, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(docs))
	for i, doc := range docs {
		entries[i] = ExportEntry{
			ID:          doc.ID,
			Title:       doc.Title,
			Summary:     doc.Summary,
			Keywords:    doc.Keywords,
			Category:    doc.Category,
			Tags:        doc.Tags,
			Audience:    doc.Audience,
			AILinked:    doc.AILinked,
			AIRelevance: doc.AIRelevance,
			Downloads:   doc.Downloads,
		}
	}
	return entries, nil
}
