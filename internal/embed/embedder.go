// Package embed wraps the external embedding endpoint behind the
// Embedder capability interface. The core pipelines never assume a
// vendor-specific response shape; any endpoint that turns text into a
// fixed-dimension vector can sit behind this contract.
package embed

import "context"

// Embedder turns text into a fixed-dimension vector. It is invoked for
// both indexing-time chunk embedding and query-time embedding.
type Embedder interface {
	// Embed computes the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension is the fixed vector dimension the index expects.
	Dimension() int
}
