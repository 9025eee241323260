package embed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vkotliar/gavel/internal/cache"
)

// CachedEmbedder decorates an Embedder with a cache keyed by content
// hash. Chunk IDs are content hashes, so a re-ingest of an unchanged
// document hits the cache for every chunk.
type CachedEmbedder struct {
	inner Embedder
	cache cache.Cache
	model string
	ttl   time.Duration
}

// NewCachedEmbedder wraps an embedder with the given cache.
func NewCachedEmbedder(inner Embedder, c cache.Cache, embeddingModel string, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: c,
		model: embeddingModel,
		ttl:   ttl,
	}
}

// Embed returns the cached vector when present, otherwise delegates and
// stores the result. Cache failures are non-fatal: the inner embedder's
// answer is always returned.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(e.model, text)

	if data, found := e.cache.Get(key); found {
		var vector []float32
		if err := json.Unmarshal(data, &vector); err == nil {
			return vector, nil
		}
		// Corrupt entry: drop it and re-embed.
		_ = e.cache.Delete(key)
	}

	vector, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vector); err == nil {
		_ = e.cache.Set(key, data, e.ttl)
	}

	return vector, nil
}

// Dimension returns the inner embedder's dimension.
func (e *CachedEmbedder) Dimension() int {
	return e.inner.Dimension()
}
