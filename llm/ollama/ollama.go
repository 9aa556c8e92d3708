// Package ollama implements llm.Provider using Ollama's HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skillsenselab/audtext/llm"
)

const (
	// ProviderName is the registered name for the Ollama provider.
	ProviderName = "ollama"

	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3"
	defaultTimeout     = 120 * time.Second
)

// Config holds configuration for the Ollama provider.
type Config struct {
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Model       string        `mapstructure:"model" json:"model"`
	Temperature float64       `mapstructure:"temperature" json:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultOllamaURL
	}
	if c.Model == "" {
		c.Model = defaultOllamaModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Provider implements llm.Provider using Ollama's HTTP API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Ollama LLM provider.
func NewProvider(cfg Config) *Provider {
	cfg.ApplyDefaults()
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Ollama server is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/api/tags", http.NoBody)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Complete sends a completion request and returns the full response.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	chatReq := p.buildChatRequest(req)

	resp, err := p.doRequest(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("ollama complete: %w", err)
	}

	return &llm.CompletionResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}

// --- internal Ollama API types ---

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model       string              `json:"model"`
	Messages    []ollamaChatMessage `json:"messages"`
	Stream      bool                `json:"stream"`
	Temperature float64             `json:"temperature,omitempty"`
}

type ollamaChatResponse struct {
	Model           string            `json:"model"`
	Message         ollamaChatMessage `json:"message"`
	Done            bool              `json:"done"`
	PromptEvalCount int               `json:"prompt_eval_count,omitempty"`
	EvalCount       int               `json:"eval_count,omitempty"`
}

// buildChatRequest creates an Ollama API request from a llm.CompletionRequest.
func (p *Provider) buildChatRequest(req llm.CompletionRequest) ollamaChatRequest {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	temp := p.cfg.Temperature
	if req.Temperature != 0 {
		temp = req.Temperature
	}

	msgs := make([]ollamaChatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, ollamaChatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, ollamaChatMessage{Role: m.Role, Content: m.Content})
	}

	return ollamaChatRequest{
		Model:       model,
		Messages:    msgs,
		Stream:      false,
		Temperature: temp,
	}
}

// doRequest marshals the request, sends it to the Ollama API, and decodes the response.
func (p *Provider) doRequest(ctx context.Context, req ollamaChatRequest) (*ollamaChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp ollamaChatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &resp, nil
}

// compile-time check
var _ llm.Provider = (*Provider)(nil)
