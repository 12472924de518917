// Package llm provides the hosted language-model clients used to draft complaints.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashureev/draft-studio/internal/config"
)

// ErrNotConfigured is returned by New when no API key is available for the provider.
var ErrNotConfigured = errors.New("llm provider not configured")

// Message is one turn of a conversation sent to the model.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Request is a provider-neutral completion request.
type Request struct {
	System   string
	Messages []Message
	// JSON asks the model to answer with a single JSON object.
	JSON bool
}

// Provider completes a conversation.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, req Request) (string, error)
}

// New builds the provider selected by cfg.
func New(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	if !cfg.AIEnabled() {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, cfg.Provider)
	}
	switch cfg.Provider {
	case "gemini":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ModelName(), cfg.Timeout)
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.ModelName(),
			Timeout: cfg.Timeout,

			RateLimitRetries: cfg.RateLimitRetries,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
