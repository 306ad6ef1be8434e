// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the knowledge-engine CLI.
// See docs/ARCHITECTURE.md § CLI Surface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/knowledge-engine/internal/engine"
	"github.com/pdiddy/knowledge-engine/internal/keywords"
	"github.com/pdiddy/knowledge-engine/internal/logger"
	"github.com/pdiddy/knowledge-engine/internal/provider"
	"github.com/pdiddy/knowledge-engine/internal/secrets"
	"github.com/pdiddy/knowledge-engine/internal/store"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the knowledge-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "knowledge-engine",
	Short: "Semantic knowledge base for clinical cannabis material",
	Long: `knowledge-engine manages a local document knowledge base: ingestion with
summarization, keyword extraction and embeddings; weighted full-text search;
and retrieval-augmented question answering over AI-linked documents.

Each operation is a subcommand: ingest, search, ask, link, similar, stats,
and export. Documents live in a local SQLite database under the data
directory.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger.SetVerbose(verbose)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./knowledge-engine.yaml or ~/.config/knowledge-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "base directory for the knowledge base (default: ./data)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging on stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("knowledge-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "knowledge-engine"))
		}
	}

	viper.SetDefault("data_dir", "data")
	viper.SetDefault("provider.backend", string(types.BackendLocal))
	viper.SetDefault("provider.timeout", "30s")

	viper.SetEnvPrefix("KNOWLEDGE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engineConfig assembles the engine configuration from config file, env,
// and flags. Flags win over config values.
func engineConfig(cmd *cobra.Command) types.EngineConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("data_dir")
	}

	timeout, err := time.ParseDuration(viper.GetString("provider.timeout"))
	if err != nil {
		timeout = 30 * time.Second
	}

	return types.EngineConfig{
		Store: types.StoreConfig{
			DataDir:    dataDir,
			MaxResults: viper.GetInt("store.max_results"),
		},
		Provider: types.ProviderConfig{
			Backend:           types.ProviderBackend(viper.GetString("provider.backend")),
			Timeout:           timeout,
			OllamaBaseURL:     viper.GetString("provider.ollama_base_url"),
			OllamaModel:       viper.GetString("provider.ollama_model"),
			OllamaEmbedModel:  viper.GetString("provider.ollama_embed_model"),
			OllamaBearerToken: loadedSecrets["ollama-bearer-token"],
		},
		Retrieval: types.RetrievalConfig{
			CandidateLimit: viper.GetInt("retrieval.candidate_limit"),
			ContextLimit:   viper.GetInt("retrieval.context_limit"),
		},
		Ingest: types.IngestConfig{
			MaxContentLength: viper.GetInt("ingest.max_content_length"),
			VocabularyFile:   viper.GetString("ingest.vocabulary_file"),
		},
	}
}

// openEngine builds the engine and its store for one command invocation.
// The caller must Close the returned store.
func openEngine(cmd *cobra.Command) (*engine.Engine, *store.Store, error) {
	cfg := engineConfig(cmd)

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	extractor := keywords.NewExtractor()
	if cfg.Ingest.VocabularyFile != "" {
		extractor, err = keywords.NewExtractorFromFile(cfg.Ingest.VocabularyFile)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
	}

	return engine.New(st, provider.New(cfg.Provider), extractor, cfg), st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
