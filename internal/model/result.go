package model

// SearchResult is a ranked reference to a chunk returned by the retriever.
type SearchResult struct {
	Chunk Chunk `json:"chunk"`

	// Similarity is the raw score reported by the vector index.
	Similarity float64 `json:"similarity"`

	// Relevance is the post-boost score. It is deterministic given
	// (similarity, section, query entities) and the configured weights,
	// and never drops below Similarity when any boost applies.
	Relevance float64 `json:"relevance"`
}

// Citation attributes a span of a generated response to a context chunk.
type Citation struct {
	// Index is the 1-based source number as tagged in the prompt.
	Index     int         `json:"index"`
	ChunkID   string      `json:"chunk_id"`
	Section   SectionType `json:"section"`
	PageStart int         `json:"page_start"`
	PageEnd   int         `json:"page_end"`
}

// FailureKind classifies a per-query failure. Empty means success.
type FailureKind string

const (
	FailureNone               FailureKind = ""
	FailureEmptyResult        FailureKind = "empty_result"
	FailureServiceUnavailable FailureKind = "service_unavailable"
	FailureCitationValidation FailureKind = "citation_validation"
)

// QueryResult is the orchestrator's output for a single query.
type QueryResult struct {
	Response  string     `json:"response"`
	Citations []Citation `json:"citations"`

	// ContextUsed is the number of context chunks supplied to generation.
	ContextUsed int `json:"context_used"`

	// ContextFree marks responses generated with zero retrieved context.
	// Callers should treat these as low-confidence.
	ContextFree bool `json:"context_free,omitempty"`

	// LowConfidence is set when a citation failed validation and was
	// stripped, or when the result is context-free.
	LowConfidence bool `json:"low_confidence,omitempty"`

	// Failure is the explicit failure kind; FailureNone on success.
	Failure FailureKind `json:"failure,omitempty"`

	// SessionID echoes the conversation session the query ran under.
	SessionID string `json:"session_id,omitempty"`

	// Model is the generation model that produced the response.
	Model string `json:"model,omitempty"`

	// TokensUsed tracks generation token consumption.
	TokensUsed int `json:"tokens_used,omitempty"`
}
