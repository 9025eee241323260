package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SectionType is the structural category of a judgment section.
// The taxonomy follows the standard layout of an ICC trial judgment.
type SectionType string

const (
	SectionVerdict  SectionType = "VERDICT"
	SectionSentence SectionType = "SENTENCE"
	SectionFindings SectionType = "FINDINGS_OF_FACT"
	SectionOverview SectionType = "OVERVIEW"
	SectionEvidence SectionType = "EVIDENTIARY_CONSIDERATIONS"
	SectionHeader   SectionType = "HEADER"
	SectionUnknown  SectionType = "UNKNOWN"
)

// Chunk is a bounded, section-tagged unit of extracted judgment text.
// It is the atomic retrieval item. Chunks are immutable once created;
// reprocessing a document supersedes old chunks rather than mutating them.
type Chunk struct {
	// ID is a content hash, stable across reprocessing runs as long as
	// the chunk content is unchanged.
	ID string `json:"id"`

	// Content is the extracted main text.
	Content string `json:"content"`

	// Summary is an optional short summary used for source previews.
	Summary string `json:"summary,omitempty"`

	// Section is always assigned; SectionUnknown when no heading was seen.
	Section SectionType `json:"section"`

	// PageStart/PageEnd are the inclusive page range the content spans.
	PageStart int `json:"page_start"`
	PageEnd   int `json:"page_end"`

	// ParagraphNumbers are the numbered paragraphs merged into this chunk.
	ParagraphNumbers []string `json:"paragraph_numbers,omitempty"`

	// FootnoteRefs are footnote numbers referenced by the content.
	FootnoteRefs []string `json:"footnote_refs,omitempty"`

	// TokenCount is the estimated token count of Content.
	TokenCount int `json:"token_count"`

	// LowQuality marks chunks that fall below the configured quality
	// bounds. They are kept for completeness but excluded from indexing.
	LowQuality bool `json:"low_quality,omitempty"`
}

// ChunkID derives the stable identifier for a piece of chunk content.
func ChunkID(content string) string {
	hash := sha256.Sum256([]byte(content))
	return "chunk-" + hex.EncodeToString(hash[:8])
}

// EstimateTokens approximates the token count of a text. Legal English
// averages roughly 1.3 tokens per word across the tokenizers we target.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(float64(words) * 1.3)
}

// ParseSection maps a heading string to a known section type.
// Unrecognized headings map to SectionUnknown.
func ParseSection(s string) SectionType {
	switch SectionType(strings.ToUpper(strings.TrimSpace(s))) {
	case SectionVerdict, SectionSentence, SectionFindings,
		SectionOverview, SectionEvidence, SectionHeader:
		return SectionType(strings.ToUpper(strings.TrimSpace(s)))
	default:
		return SectionUnknown
	}
}
