// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Long: `Stats reports the document total, how many documents are AI-linked, the
average relevance weight across linked documents, and categories by size.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	eng, st, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := eng.Stats(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Documents:       %d\n", stats.Total)
	fmt.Printf("AI-linked:       %d\n", stats.AILinked)
	fmt.Printf("Avg relevance:   %.2f\n", stats.AvgRelevance)
	if len(stats.TopCategories) > 0 {
		fmt.Println("Categories:")
		for _, c := range stats.TopCategories {
			fmt.Printf("  %-12s %d\n", c.Category, c.Count)
		}
	}
	return nil
}

func init() {
	statsCmd.Flags().Bool("json", false, "output statistics as JSON")

	rootCmd.AddCommand(statsCmd)
}
