package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force cosine similarity index. It is the
// default backend for local ingestion and the test double for the
// retrieval layer.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]Entry
}

// NewMemoryIndex creates an empty index expecting vectors of the given
// dimension.
func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{
		dimension: dimension,
		entries:   make(map[string]Entry),
	}
}

// Upsert inserts or replaces entries keyed by chunk ID.
func (m *MemoryIndex) Upsert(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		if len(e.Vector) != m.dimension {
			return fmt.Errorf("index: entry %s has dimension %d, want %d", e.ChunkID, len(e.Vector), m.dimension)
		}
		m.entries[e.ChunkID] = e
	}
	return nil
}

// Search scores every entry against the query vector and returns the
// top K by similarity, ties broken by chunk ID so results are stable
// across runs.
func (m *MemoryIndex) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	if len(vector) != m.dimension {
		return nil, fmt.Errorf("index: query dimension %d, want %d", len(vector), m.dimension)
	}
	if topK <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := make([]Hit, 0, len(m.entries))
	for _, e := range m.entries {
		hits = append(hits, Hit{
			ChunkID:    e.ChunkID,
			Similarity: cosine(vector, e.Vector),
			Section:    e.Section,
			PageStart:  e.PageStart,
			PageEnd:    e.PageEnd,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// Count reports the number of indexed entries.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Clear removes all entries.
func (m *MemoryIndex) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
	return nil
}

// cosine computes cosine similarity. Embedding endpoints do not
// guarantee normalized vectors, so both norms are computed.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
