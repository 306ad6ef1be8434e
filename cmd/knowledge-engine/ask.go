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

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from AI-linked documents",
	Long: `Ask runs retrieval-augmented answering: recent AI-linked documents are
ranked against the question, the best few serve as context for extractive
question answering, and the response lists the consulted documents plus
cross-analysis findings.

Only documents linked with the link command are ever used as context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	eng, st, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	qa, err := eng.AnswerQuestion(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(qa)
	}

	fmt.Println(qa.Text)
	return nil
}

func init() {
	askCmd.Flags().Bool("json", false, "output the response as JSON")

	rootCmd.AddCommand(askCmd)
}
