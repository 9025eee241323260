package llm

import (
	"fmt"
	"strings"

	"github.com/vkotliar/gavel/internal/model"
)

// NewProvider creates a generation provider based on configuration.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)

	case "anthropic", "claude":
		return NewAnthropicProvider(cfg)

	case "ollama":
		return NewOllamaProvider(cfg)

	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q (supported: openai, anthropic, ollama)", model.ErrConfiguration, cfg.Provider)
	}
}
