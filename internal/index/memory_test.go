package index

import (
	"context"
	"testing"
)

func TestMemoryIndex_SearchOrdersBySimilarity(t *testing.T) {
	idx := NewMemoryIndex(3)
	ctx := context.Background()

	entries := []Entry{
		{ChunkID: "chunk-aaa", Vector: []float32{1, 0, 0}, Section: "VERDICT"},
		{ChunkID: "chunk-bbb", Vector: []float32{0, 1, 0}, Section: "OVERVIEW"},
		{ChunkID: "chunk-ccc", Vector: []float32{0.9, 0.1, 0}, Section: "SENTENCE"},
	}
	if err := idx.Upsert(ctx, entries); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ChunkID != "chunk-aaa" {
		t.Errorf("expected chunk-aaa first, got %s", hits[0].ChunkID)
	}
	if hits[1].ChunkID != "chunk-ccc" {
		t.Errorf("expected chunk-ccc second, got %s", hits[1].ChunkID)
	}
	if hits[0].Similarity < hits[1].Similarity {
		t.Errorf("hits not ordered by similarity: %f < %f", hits[0].Similarity, hits[1].Similarity)
	}
	if hits[0].Section != "VERDICT" {
		t.Errorf("payload section lost: got %q", hits[0].Section)
	}
}

func TestMemoryIndex_TiesBreakByChunkID(t *testing.T) {
	idx := NewMemoryIndex(2)
	ctx := context.Background()

	// Identical vectors produce identical similarities.
	entries := []Entry{
		{ChunkID: "chunk-zzz", Vector: []float32{1, 1}},
		{ChunkID: "chunk-aaa", Vector: []float32{1, 1}},
		{ChunkID: "chunk-mmm", Vector: []float32{1, 1}},
	}
	if err := idx.Upsert(ctx, entries); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	for run := 0; run < 5; run++ {
		hits, err := idx.Search(ctx, []float32{1, 1}, 3)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		want := []string{"chunk-aaa", "chunk-mmm", "chunk-zzz"}
		for i, id := range want {
			if hits[i].ChunkID != id {
				t.Fatalf("run %d: position %d: expected %s, got %s", run, i, id, hits[i].ChunkID)
			}
		}
	}
}

func TestMemoryIndex_UpsertReplacesByID(t *testing.T) {
	idx := NewMemoryIndex(2)
	ctx := context.Background()

	if err := idx.Upsert(ctx, []Entry{{ChunkID: "chunk-x", Vector: []float32{1, 0}}}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := idx.Upsert(ctx, []Entry{{ChunkID: "chunk-x", Vector: []float32{0, 1}}}); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	n, _ := idx.Count(ctx)
	if n != 1 {
		t.Errorf("expected 1 entry after re-upsert, got %d", n)
	}

	hits, err := idx.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if hits[0].Similarity < 0.99 {
		t.Errorf("expected replaced vector to match query, similarity %f", hits[0].Similarity)
	}
}

func TestMemoryIndex_DimensionMismatch(t *testing.T) {
	idx := NewMemoryIndex(3)
	ctx := context.Background()

	if err := idx.Upsert(ctx, []Entry{{ChunkID: "chunk-x", Vector: []float32{1, 0}}}); err == nil {
		t.Error("expected upsert dimension error")
	}
	if _, err := idx.Search(ctx, []float32{1, 0}, 1); err == nil {
		t.Error("expected search dimension error")
	}
}

func TestMemoryIndex_EmptyIndex(t *testing.T) {
	idx := NewMemoryIndex(2)
	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits from empty index, got %d", len(hits))
	}
}
