// Package llm defines the LLM provider interface and common types for
// interacting with language model backends.
package llm

import (
	"context"

	"github.com/skillsenselab/audtext/provider"
)

// Provider is the interface that LLM backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
