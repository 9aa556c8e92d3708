package llm

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// CompletionRequest is the universal input for all LLM providers.
type CompletionRequest struct {
	// Model overrides the provider's default model.
	Model string `json:"model,omitempty"`
	// Messages is the conversation history.
	Messages []Message `json:"messages"`
	// SystemPrompt is prepended as a system message.
	SystemPrompt string `json:"system_prompt,omitempty"`
	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64 `json:"temperature,omitempty"`
}

// CompletionResponse is the universal output from all LLM providers.
type CompletionResponse struct {
	// Content is the generated text.
	Content string `json:"content"`
	// Model is the model that produced the response.
	Model string `json:"model"`
	// Usage reports token consumption.
	Usage Usage `json:"usage"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
