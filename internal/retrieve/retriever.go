// Package retrieve ranks judgment chunks against a query. It embeds
// the query, fetches a candidate superset from the vector index,
// applies section and entity boosts, and returns a deterministically
// ordered top-N.
package retrieve

import (
	"context"
	"fmt"
	"sort"

	"github.com/vkotliar/gavel/internal/embed"
	"github.com/vkotliar/gavel/internal/index"
	"github.com/vkotliar/gavel/internal/model"
)

// ChunkLookup resolves chunk IDs to full chunks. The disk store
// implements it; tests use a map.
type ChunkLookup interface {
	Get(ctx context.Context, id string) (model.Chunk, bool, error)
}

// Retriever embeds queries and ranks index hits.
type Retriever struct {
	cfg      model.RetrievalConfig
	embedder embed.Embedder
	idx      index.VectorIndex
	chunks   ChunkLookup
}

// New creates a retriever over the given embedder, index and chunk store.
func New(cfg model.RetrievalConfig, embedder embed.Embedder, idx index.VectorIndex, chunks ChunkLookup) *Retriever {
	return &Retriever{cfg: cfg, embedder: embedder, idx: idx, chunks: chunks}
}

// Search returns up to numResults ranked chunks for the query. A zero
// or negative numResults falls back to the configured default. An
// empty candidate set is not an error: the caller decides whether a
// context-free answer is acceptable.
func (r *Retriever) Search(ctx context.Context, query string, numResults int) ([]model.SearchResult, error) {
	if numResults <= 0 {
		numResults = r.cfg.DefaultNumResults
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve: embedding query: %w", err)
	}

	// Fetch a superset so re-ranking can promote boosted chunks that
	// raw similarity alone would have cut off.
	superset := numResults * r.cfg.SupersetFactor
	hits, err := r.idx.Search(ctx, vector, superset)
	if err != nil {
		return nil, fmt.Errorf("retrieve: index search: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	b := newBooster(r.cfg, query)

	results := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		chunk, ok, err := r.chunks.Get(ctx, h.ChunkID)
		if err != nil {
			return nil, fmt.Errorf("retrieve: resolving chunk %s: %w", h.ChunkID, err)
		}
		if !ok {
			// Index and store have drifted; skip rather than fail the query.
			continue
		}
		results = append(results, model.SearchResult{
			Chunk:      chunk,
			Similarity: h.Similarity,
			Relevance:  h.Similarity * b.multiplier(chunk),
		})
	}

	sortResults(results)

	if numResults < len(results) {
		results = results[:numResults]
	}
	return results, nil
}

// sortResults orders by relevance descending, then similarity
// descending, then chunk ID ascending. The full rule makes ranking
// reproducible for identical index state and configuration.
func sortResults(results []model.SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
}
