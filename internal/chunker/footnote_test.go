package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/vkotliar/gavel/internal/model"
)

func TestFootnoteConfidence(t *testing.T) {
	cases := []struct {
		name    string
		content string
		min     float64
		max     float64
	}{
		{
			name:    "witness and transcript citations",
			content: "P-0045: T-28, ICC-01/14-01/18-2784-Red, para. 102, discussing the attack",
			min:     0.9,
			max:     1.0,
		},
		{
			name:    "statute citation",
			content: "Article 28 of the Statute; see also Rule 145 on sentencing factors",
			min:     0.3,
			max:     0.5,
		},
		{
			name:    "date is not a footnote",
			content: "February 2014 saw renewed fighting across the capital",
			min:     0,
			max:     0,
		},
		{
			name:    "year at start disqualifies",
			content: "2013 marked the beginning of the conflict in the region",
			min:     0,
			max:     0,
		},
		{
			name:    "too short",
			content: "see above",
			min:     0,
			max:     0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := footnoteConfidence(tc.content)
			if got < tc.min || got > tc.max {
				t.Errorf("footnoteConfidence(%q) = %.2f, expected [%.2f, %.2f]",
					tc.content, got, tc.min, tc.max)
			}
		})
	}
}

func TestChunkDocument_FootnotesTrackedSeparately(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	doc := model.Document{
		Source: "footnotes.pdf",
		Pages: []model.Page{
			{Number: 1, Text: "1. " + words(80) + "\n" +
				"312 P-0045: T-28, ICC-01/14-01/18-2784-Red, para. 102, discussing the attack"},
		},
	}

	result, err := c.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("ChunkDocument failed: %v", err)
	}

	if len(result.Footnotes) != 1 {
		t.Fatalf("expected 1 footnote, got %d", len(result.Footnotes))
	}
	note := result.Footnotes[0]
	if note.Number != "312" {
		t.Errorf("expected footnote number 312, got %s", note.Number)
	}
	if note.Page != 1 {
		t.Errorf("expected footnote page 1, got %d", note.Page)
	}
	if note.Confidence < testConfig().FootnoteMinConfidence {
		t.Errorf("footnote confidence %.2f below threshold", note.Confidence)
	}

	// The footnote text must not leak into the main-text chunk.
	for _, ch := range result.Chunks {
		if strings.Contains(ch.Content, "P-0045") || strings.Contains(ch.Content, "T-28") {
			t.Errorf("footnote content leaked into chunk: %q", ch.Content)
		}
	}
}
