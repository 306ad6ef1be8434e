// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/knowledge-engine/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file-or-directory]",
	Short: "Ingest documents into the knowledge base",
	Long: `Ingest runs the full pipeline for a file: text extraction, summarization,
keyword extraction, and embedding. Given a directory, every .txt and .md
file inside is ingested; files whose title already exists are skipped.

Enrichment is best-effort: a document whose summary or embedding failed is
still stored and can be backfilled later with reextract.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var reextractCmd = &cobra.Command{
	Use:   "reextract",
	Short: "Backfill missing summaries, keywords, and embeddings",
	Long: `Reextract re-runs enrichment for documents missing a summary, keywords,
or an embedding, typically after a provider outage during ingestion.`,
	RunE: runReextract,
}

func runIngest(cmd *cobra.Command, args []string) error {
	eng, st, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	category, _ := cmd.Flags().GetString("category")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	audiences, _ := cmd.Flags().GetStringSlice("audience")

	audience := make([]types.Audience, 0, len(audiences))
	for _, a := range audiences {
		audience = append(audience, types.Audience(a))
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("inspecting %q: %w", path, err)
	}

	ctx := context.Background()
	if info.IsDir() {
		summary, err := eng.IngestDir(ctx, path, types.Category(category), tags, audience)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d, skipped %d, failed %d\n",
			summary.Ingested, summary.Skipped, summary.Failed)
		if summary.Failed > 0 {
			return fmt.Errorf("%d file(s) failed ingestion", summary.Failed)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}
	doc, err := eng.Ingest(ctx, types.RawFile{
		Name:     filepath.Base(path),
		Data:     data,
		Category: types.Category(category),
		Tags:     tags,
		Audience: audience,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %q as %s (%d keywords)\n", doc.Title, doc.ID, len(doc.Keywords))
	return nil
}

func runReextract(cmd *cobra.Command, args []string) error {
	eng, st, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	updated, err := eng.Reextract(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Backfilled %d document(s)\n", updated)
	return nil
}

func init() {
	ingestCmd.Flags().String("category", string(types.CategoryResearch), "document category: ai-linked, protocol, research, case, multimedia")
	ingestCmd.Flags().StringSlice("tags", nil, "free-form tags")
	ingestCmd.Flags().StringSlice("audience", nil, "target audiences: professional, student, patient")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reextractCmd)
}
