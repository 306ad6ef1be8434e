// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/knowledge-engine/internal/store"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base to YAML or JSON",
	Long: `Export writes the document index (without full content) to
<data-dir>/index/export.yaml or export.json. Supports the same filter
flags as search for partial exports.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	_, st, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	category, _ := cmd.Flags().GetString("category")
	linkedOnly, _ := cmd.Flags().GetBool("linked")
	filter := store.Filter{
		Category:   types.Category(category),
		LinkedOnly: linkedOnly,
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		if err := st.ExportYAML(context.Background(), filter); err != nil {
			return err
		}
		fmt.Println("Exported to index/export.yaml")
	case "json":
		if err := st.ExportJSON(context.Background(), filter); err != nil {
			return err
		}
		fmt.Println("Exported to index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("category", "", "filter by category")
	exportCmd.Flags().Bool("linked", false, "only AI-linked documents")

	rootCmd.AddCommand(exportCmd)
}
