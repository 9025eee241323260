package rag

import (
	"strings"
	"testing"

	"github.com/vkotliar/gavel/internal/model"
)

func ctxResults(n int) []model.SearchResult {
	out := make([]model.SearchResult, n)
	for i := range out {
		out[i] = model.SearchResult{Chunk: model.Chunk{
			ID:        model.ChunkID(strings.Repeat("c", i+1)),
			Section:   model.SectionFindings,
			PageStart: 10 + i,
			PageEnd:   10 + i,
		}}
	}
	return out
}

func TestValidateCitations(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		contexts      int
		wantCitations int
		wantStripped  bool
	}{
		{"no markers", "Plain answer with no citations.", 3, 0, false},
		{"all valid", "Claim [Source 1] and claim [Source 2].", 2, 2, false},
		{"out of range", "Claim [Source 5].", 2, 0, true},
		{"zero index", "Claim [Source 0].", 2, 0, true},
		{"mixed", "Valid [Source 1], invalid [Source 9].", 2, 1, true},
		{"duplicate markers", "Twice [Source 1] and again [Source 1].", 2, 1, false},
		{"no contexts at all", "Hallucinated [Source 1].", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, citations, stripped := validateCitations(tt.response, ctxResults(tt.contexts))
			if len(citations) != tt.wantCitations {
				t.Errorf("citations: expected %d, got %d", tt.wantCitations, len(citations))
			}
			if stripped != tt.wantStripped {
				t.Errorf("stripped: expected %v, got %v", tt.wantStripped, stripped)
			}
			if tt.wantCitations == 0 && tt.wantStripped && citationPattern.MatchString(cleaned) {
				t.Errorf("invalid markers survived: %q", cleaned)
			}
		})
	}
}

func TestValidateCitations_StripsOnlyInvalidMarkers(t *testing.T) {
	contexts := ctxResults(2)
	cleaned, citations, stripped := validateCitations("Good [Source 2]. Bad [Source 3].", contexts)

	if !stripped {
		t.Fatal("expected stripping")
	}
	if strings.Contains(cleaned, "[Source 3]") {
		t.Errorf("invalid marker survived: %q", cleaned)
	}
	if !strings.Contains(cleaned, "[Source 2]") {
		t.Errorf("valid marker removed: %q", cleaned)
	}
	if len(citations) != 1 || citations[0].Index != 2 {
		t.Errorf("unexpected citations: %+v", citations)
	}
	if citations[0].ChunkID != contexts[1].Chunk.ID {
		t.Errorf("citation resolves to wrong chunk: %s", citations[0].ChunkID)
	}
}

func TestValidateCitations_CleansLeftoverSpacing(t *testing.T) {
	cleaned, _, _ := validateCitations("The answer [Source 9] is clear.", nil)
	if strings.Contains(cleaned, "  ") {
		t.Errorf("double space left behind: %q", cleaned)
	}
	if strings.Contains(cleaned, "[Source") {
		t.Errorf("marker left behind: %q", cleaned)
	}
}
