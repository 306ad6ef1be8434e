// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/knowledge-engine/internal/httputil"
	"github.com/pdiddy/knowledge-engine/internal/textnorm"
	"github.com/pdiddy/knowledge-engine/pkg/types"
)

// Default Ollama settings. The base URL is declared here rather than in
// config defaults so tests can point a provider at an httptest server.
const (
	defaultOllamaBaseURL    = "http://localhost:11434"
	defaultOllamaModel      = "llama3.2"
	defaultOllamaEmbedModel = "nomic-embed-text"
	defaultOllamaTimeout    = 120 * time.Second
)

// Ollama delegates embedding, QA, and summarization to a local Ollama
// server over its HTTP API. Construction is cheap; the HTTP client is
// built lazily on first use behind a mutex.
type Ollama struct {
	baseURL     string
	model       string
	embedModel  string
	bearerToken string
	timeout     time.Duration

	mu     sync.Mutex
	client *http.Client
}

// NewOllama returns an Ollama-backed provider for cfg.
func NewOllama(cfg types.ProviderConfig) *Ollama {
	o := &Ollama{
		baseURL:     cfg.OllamaBaseURL,
		model:       cfg.OllamaModel,
		embedModel:  cfg.OllamaEmbedModel,
		bearerToken: cfg.OllamaBearerToken,
		timeout:     cfg.Timeout,
	}
	if o.baseURL == "" {
		o.baseURL = defaultOllamaBaseURL
	}
	if o.model == "" {
		o.model = defaultOllamaModel
	}
	if o.embedModel == "" {
		o.embedModel = defaultOllamaEmbedModel
	}
	if o.timeout <= 0 {
		o.timeout = defaultOllamaTimeout
	}
	return o
}

func (o *Ollama) httpClient() *http.Client {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client == nil {
		o.client = &http.Client{Timeout: o.timeout}
	}
	return o.client
}

// embeddingsRequest is the Ollama /api/embeddings request format.
type embeddingsRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embeddingsResponse is the Ollama /api/embeddings response format.
type embeddingsResponse struct {
	Embedding []float64 `json:"embedding"`
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Embed requests an embedding from Ollama and L2-normalizes it.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var resp embeddingsResponse
	err := o.post(ctx, "/api/embeddings", embeddingsRequest{
		Model:  o.embedModel,
		Prompt: text,
	}, &resp)
	if err != nil {
		return nil, err
	}

	norm := 0.0
	for _, v := range resp.Embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, nil
	}
	vec := make([]float64, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = v / norm
	}
	return vec, nil
}

// Answer prompts the generation model to quote an answer span from the
// passage. An empty or refusal response maps to the canned
// insufficient-information answer.
func (o *Ollama) Answer(ctx context.Context, question, passage string) (types.Answer, error) {
	prompt := fmt.Sprintf(
		"Responda à pergunta citando apenas um trecho literal do contexto abaixo. "+
			"Se o contexto não contiver a resposta, responda exatamente: SEM_RESPOSTA.\n\n"+
			"Contexto:\n%s\n\nPergunta: %s\n\nTrecho:", passage, question)

	var resp generateResponse
	err := o.post(ctx, "/api/generate", generateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	}, &resp)
	if err != nil {
		return types.Answer{}, err
	}

	text := strings.TrimSpace(resp.Response)
	if text == "" || strings.Contains(text, "SEM_RESPOSTA") {
		return types.Answer{Text: InsufficientText, Confidence: 0}, nil
	}
	return types.Answer{Text: text, Confidence: 0.9}, nil
}

// Summarize prompts the generation model for a short abstract. Input is
// truncated at SummarizeInputCap like the local provider.
func (o *Ollama) Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	text = textnorm.TruncateBytes(text, SummarizeInputCap)
	if maxLen <= 0 {
		maxLen = 150
	}

	prompt := fmt.Sprintf(
		"Resuma o texto abaixo em no máximo %d palavras, mantendo os termos clínicos.\n\n%s",
		maxLen, text)

	var resp generateResponse
	err := o.post(ctx, "/api/generate", generateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	}, &resp)
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Response)
	if summary == "" {
		return UnavailableSummary, nil
	}
	return summary, nil
}

// post sends a JSON request to the Ollama API and decodes the response,
// retrying on HTTP 429.
func (o *Ollama) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+o.bearerToken)
	}

	resp, err := httputil.DoWithRetry(ctx, o.httpClient(), req, 0)
	if err != nil {
		return fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
