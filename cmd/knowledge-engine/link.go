// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link [document-id]",
	Short: "Mark a document as answer-generation context",
	Long: `Link makes a document eligible as context for the ask command, with a
relevance weight on a 0 to 1 scale. Out-of-range weights are clamped.`,
	Args: cobra.ExactArgs(1),
	RunE: runLink,
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink [document-id]",
	Short: "Remove a document from answer-generation context",
	Long: `Unlink removes a document from ask eligibility. The stored relevance
weight is kept for a later re-link.`,
	Args: cobra.ExactArgs(1),
	RunE: runUnlink,
}

func runLink(cmd *cobra.Command, args []string) error {
	eng, st, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	relevance, _ := cmd.Flags().GetFloat64("relevance")
	if err := eng.LinkToAI(context.Background(), args[0], relevance); err != nil {
		return err
	}
	fmt.Printf("Linked %s\n", args[0])
	return nil
}

func runUnlink(cmd *cobra.Command, args []string) error {
	eng, st, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := eng.UnlinkFromAI(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Unlinked %s\n", args[0])
	return nil
}

func init() {
	linkCmd.Flags().Float64("relevance", 0.5, "relevance weight on a 0 to 1 scale")

	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
}
