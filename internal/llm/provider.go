// Package llm abstracts the text-generation endpoint behind a Provider
// interface with OpenAI-compatible, Anthropic and Ollama backends.
package llm

import (
	"context"

	"github.com/vkotliar/gavel/internal/model"
)

// Provider defines the interface for generation backends.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Generate produces a completion for the request.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and
	// reachable.
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for a single generation call.
type GenerateRequest struct {
	// System is the system prompt establishing the answering rules.
	System string

	// Prompt is the fully assembled user prompt: conversation history,
	// numbered context sources and the question.
	Prompt string

	// Model overrides the configured model when non-empty.
	Model string

	// MaxTokens bounds the response length; zero uses the config value.
	MaxTokens int

	// Temperature overrides the configured temperature when set.
	Temperature *float64
}

// GenerateResponse is a provider-independent completion result.
type GenerateResponse struct {
	// Text is the generated answer.
	Text string

	// Model is the model that produced the response.
	Model string

	// TokensUsed tracks total token consumption when the provider
	// reports it.
	TokensUsed int
}

// resolve fills request defaults from the endpoint configuration.
func (r *GenerateRequest) resolve(cfg model.LLMConfig) (modelName string, maxTokens int, temperature float64) {
	modelName = r.Model
	if modelName == "" {
		modelName = cfg.Model
	}
	maxTokens = r.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1024
	}
	if r.Temperature != nil {
		temperature = *r.Temperature
	} else {
		temperature = cfg.Temperature
	}
	return modelName, maxTokens, temperature
}
