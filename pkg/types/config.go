// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// StoreConfig holds settings for the SQLite document store.
type StoreConfig struct {
	// DataDir is the base directory for the store (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ProviderBackend selects the embedding/QA/summarization implementation.
type ProviderBackend string

const (
	// BackendLocal is the built-in hashed-term provider. Deterministic
	// and free of external inference cost.
	BackendLocal ProviderBackend = "local"

	// BackendOllama delegates to a local Ollama server.
	BackendOllama ProviderBackend = "ollama"
)

// ProviderConfig holds settings for the embedding provider.
type ProviderConfig struct {
	// Backend selects the implementation: local or ollama.
	Backend ProviderBackend `json:"backend" yaml:"backend"`

	// Timeout bounds each provider call. A timeout is a soft failure:
	// the caller receives a degraded result, not an error.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// OllamaBaseURL is the Ollama API base URL (default http://localhost:11434).
	OllamaBaseURL string `json:"ollama_base_url,omitempty" yaml:"ollama_base_url,omitempty"`

	// OllamaModel is the generation model used for QA and summarization.
	OllamaModel string `json:"ollama_model,omitempty" yaml:"ollama_model,omitempty"`

	// OllamaEmbedModel is the embedding model.
	OllamaEmbedModel string `json:"ollama_embed_model,omitempty" yaml:"ollama_embed_model,omitempty"`

	// OllamaBearerToken authenticates against a remote Ollama deployment
	// behind an authenticating proxy. Loaded from .secrets/, never from
	// the config file.
	OllamaBearerToken string `json:"-" yaml:"-"`
}

// RetrievalConfig holds settings for the answering pipeline.
type RetrievalConfig struct {
	// CandidateLimit caps how many recent documents are fetched per
	// question (default 10).
	CandidateLimit int `json:"candidate_limit" yaml:"candidate_limit"`

	// ContextLimit caps how many of the candidates are used as QA
	// context (default 3).
	ContextLimit int `json:"context_limit" yaml:"context_limit"`
}

// IngestConfig holds settings for the ingestion pipeline.
type IngestConfig struct {
	// MaxContentLength bounds extracted text; excess is truncated, not
	// rejected (default 100000).
	MaxContentLength int `json:"max_content_length" yaml:"max_content_length"`

	// VocabularyFile optionally overrides the built-in domain vocabulary
	// with a YAML list of terms.
	VocabularyFile string `json:"vocabulary_file,omitempty" yaml:"vocabulary_file,omitempty"`
}

// EngineConfig groups all component configurations.
type EngineConfig struct {
	Store     StoreConfig     `json:"store" yaml:"store"`
	Provider  ProviderConfig  `json:"provider" yaml:"provider"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
}
