// Package index provides vector similarity search over chunk embeddings.
// Two backends exist: an in-memory brute-force index for local runs and
// tests, and a Qdrant REST client for managed deployments.
package index

import "context"

// Entry pairs a chunk ID with its embedding vector and the payload
// fields a search hit needs to carry back.
type Entry struct {
	ChunkID string
	Vector  []float32

	// Payload fields mirrored into the index so hits can be ranked
	// without a chunk-store round trip.
	Section   string
	PageStart int
	PageEnd   int
}

// Hit is a single similarity match.
type Hit struct {
	ChunkID    string
	Similarity float64
	Section    string
	PageStart  int
	PageEnd    int
}

// VectorIndex stores chunk embeddings and answers top-K cosine queries.
type VectorIndex interface {
	// Upsert inserts or replaces entries by chunk ID. Because chunk IDs
	// are content hashes, re-ingesting an unchanged document is a no-op
	// at the index level.
	Upsert(ctx context.Context, entries []Entry) error

	// Search returns up to topK hits ordered by similarity descending,
	// ties broken by chunk ID ascending.
	Search(ctx context.Context, vector []float32, topK int) ([]Hit, error)

	// Count reports the number of indexed entries.
	Count(ctx context.Context) (int, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error
}
