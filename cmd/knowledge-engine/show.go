// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [document-id]",
	Short: "Show a document and record the access",
	Long: `Show prints a stored document and bumps its downloads counter. Use
--content to include the full extracted text.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	eng, st, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := eng.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	fmt.Printf("Title:       %s\n", doc.Title)
	fmt.Printf("ID:          %s\n", doc.ID)
	fmt.Printf("Category:    %s\n", doc.Category)
	if len(doc.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(doc.Tags, ", "))
	}
	if len(doc.Keywords) > 0 {
		fmt.Printf("Keywords:    %s\n", strings.Join(doc.Keywords, ", "))
	}
	fmt.Printf("AI-linked:   %v", doc.AILinked)
	if doc.AILinked {
		fmt.Printf(" (relevance %.2f)", doc.AIRelevance)
	}
	fmt.Println()
	fmt.Printf("Downloads:   %d\n", doc.Downloads)
	if doc.Summary != "" {
		fmt.Printf("\n%s\n", doc.Summary)
	}

	withContent, _ := cmd.Flags().GetBool("content")
	if withContent && doc.Content != "" {
		fmt.Printf("\n%s\n", doc.Content)
	}
	return nil
}

func init() {
	showCmd.Flags().Bool("json", false, "output the document as JSON")
	showCmd.Flags().Bool("content", false, "include the full extracted text")

	rootCmd.AddCommand(showCmd)
}
