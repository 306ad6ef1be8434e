// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/knowledge-engine/internal/store"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base with weighted relevance scoring",
	Long: `Search scores documents against the query across title, summary,
keywords, and tags, boosted by the AI-relevance weight of linked documents.
Only documents with a positive score are returned, best match first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var similarCmd = &cobra.Command{
	Use:   "similar [document-id]",
	Short: "Find documents related to a given document",
	Long: `Similar ranks the rest of the corpus against the given document using
embedding cosine similarity, falling back to keyword overlap for documents
without embeddings.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSearch(cmd *cobra.Command, args []string) error {
	eng, st, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	category, _ := cmd.Flags().GetString("category")
	audience, _ := cmd.Flags().GetString("audience")
	linkedOnly, _ := cmd.Flags().GetBool("linked")
	limit, _ := cmd.Flags().GetInt("limit")

	filter := store.Filter{
		Category:   types.Category(category),
		Audience:   types.Audience(audience),
		LinkedOnly: linkedOnly,
	}

	results, err := eng.Search(context.Background(), strings.Join(args, " "), filter, limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	eng, st, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := eng.Similar(context.Background(), args[0], limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []types.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-8s  %-40s  %-10s  %s\n",
		"Rank", "Score", "Title", "Category", "Matched")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for i, r := range results {
		title := r.Document.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-8.1f  %-40s  %-10s  %s\n",
			i+1, r.Score, title, r.Document.Category, strings.Join(r.Matched, ", "))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func init() {
	searchCmd.Flags().String("category", "", "filter by category: ai-linked, protocol, research, case, multimedia")
	searchCmd.Flags().String("audience", "", "filter by audience: professional, student, patient")
	searchCmd.Flags().Bool("linked", false, "only AI-linked documents")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	similarCmd.Flags().Int("limit", 5, "maximum results")
	similarCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(similarCmd)
}
