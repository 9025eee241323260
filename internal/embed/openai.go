package embed

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/vkotliar/gavel/internal/model"
	"github.com/vkotliar/gavel/internal/worker"
)

// endpointKey names the embedding endpoint in the shared rate limiter.
const endpointKey = "embedding"

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint. With a
// custom BaseURL this covers any gateway speaking the same wire format.
type OpenAIEmbedder struct {
	client  *openai.Client
	cfg     model.EmbeddingConfig
	limiter *worker.Limiter
}

// NewOpenAIEmbedder creates an embedder for the configured endpoint.
func NewOpenAIEmbedder(cfg model.EmbeddingConfig, limiter *worker.Limiter) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: embedding endpoint needs an API key or a base URL", model.ErrConfiguration)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientConfig),
		cfg:     cfg,
		limiter: limiter,
	}, nil
}

// Embed computes the embedding vector for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, endpointKey); err != nil {
			return nil, err
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.cfg.EmbedTimeout())
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctxWithTimeout, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.cfg.Model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embed: %v", model.ErrServiceUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: embed: empty response", model.ErrServiceUnavailable)
	}

	vector := resp.Data[0].Embedding
	if e.cfg.Dimension > 0 && len(vector) != e.cfg.Dimension {
		return nil, fmt.Errorf("embed: expected dimension %d, got %d", e.cfg.Dimension, len(vector))
	}

	return vector, nil
}

// Dimension returns the configured vector dimension.
func (e *OpenAIEmbedder) Dimension() int {
	return e.cfg.Dimension
}
