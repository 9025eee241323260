package model

import "errors"

// Error taxonomy. ErrConfiguration is fatal at startup, before any
// external call. The others are per-query and recoverable: a failure in
// one query never affects other concurrent queries or other sessions.
var (
	// ErrConfiguration signals a missing or invalid endpoint, index
	// reference, or parameter. Checked once, at construction time.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmptyResult signals that chunking or retrieval produced nothing
	// usable. Surfaced as a low-confidence outcome, not a crash.
	ErrEmptyResult = errors.New("empty result")

	// ErrServiceUnavailable signals that an embedding, index, or
	// generation call failed or timed out.
	ErrServiceUnavailable = errors.New("external service unavailable")
)
