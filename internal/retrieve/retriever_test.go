package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/vkotliar/gavel/internal/index"
	"github.com/vkotliar/gavel/internal/model"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func (e *stubEmbedder) Dimension() int { return len(e.vector) }

type stubIndex struct {
	hits []index.Hit
	err  error
	topK int
}

func (s *stubIndex) Upsert(ctx context.Context, entries []index.Entry) error { return nil }

func (s *stubIndex) Search(ctx context.Context, vector []float32, topK int) ([]index.Hit, error) {
	s.topK = topK
	if s.err != nil {
		return nil, s.err
	}
	if topK < len(s.hits) {
		return s.hits[:topK], nil
	}
	return s.hits, nil
}

func (s *stubIndex) Count(ctx context.Context) (int, error) { return len(s.hits), nil }
func (s *stubIndex) Clear(ctx context.Context) error        { return nil }

type mapLookup map[string]model.Chunk

func (m mapLookup) Get(ctx context.Context, id string) (model.Chunk, bool, error) {
	c, ok := m[id]
	return c, ok, nil
}

func testChunk(id, content string, section model.SectionType) model.Chunk {
	return model.Chunk{ID: id, Content: content, Section: section, PageStart: 1, PageEnd: 1}
}

func TestSearch_SectionWeightOutranksRawSimilarity(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	idx := &stubIndex{hits: []index.Hit{
		{ChunkID: "chunk-evid", Similarity: 0.85},
		{ChunkID: "chunk-verd", Similarity: 0.80},
	}}
	chunks := mapLookup{
		"chunk-evid": testChunk("chunk-evid", "The witness testimony describes the events.", model.SectionEvidence),
		"chunk-verd": testChunk("chunk-verd", "The Chamber finds the accused guilty.", model.SectionVerdict),
	}
	r := New(cfg, &stubEmbedder{vector: []float32{1}}, idx, chunks)

	results, err := r.Search(context.Background(), "what was the outcome", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "chunk-verd" {
		t.Errorf("expected weighted VERDICT chunk first, got %s", results[0].Chunk.ID)
	}
	if results[0].Relevance != 0.80*1.5 {
		t.Errorf("expected relevance 1.20, got %f", results[0].Relevance)
	}
	if results[1].Relevance != 0.85 {
		t.Errorf("expected unboosted relevance 0.85, got %f", results[1].Relevance)
	}
}

func TestSearch_EntityBoostRequiresBothSides(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	idx := &stubIndex{hits: []index.Hit{
		{ChunkID: "chunk-a", Similarity: 0.7},
		{ChunkID: "chunk-b", Similarity: 0.7},
	}}
	chunks := mapLookup{
		"chunk-a": testChunk("chunk-a", "Mr Yekatom commanded the group near Bangui.", model.SectionFindings),
		"chunk-b": testChunk("chunk-b", "The defence filed procedural motions.", model.SectionFindings),
	}
	r := New(cfg, &stubEmbedder{vector: []float32{1}}, idx, chunks)

	results, err := r.Search(context.Background(), "What did Yekatom do?", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].Chunk.ID != "chunk-a" {
		t.Errorf("expected entity-matched chunk first, got %s", results[0].Chunk.ID)
	}
	if results[0].Relevance <= results[1].Relevance {
		t.Errorf("entity boost did not separate scores: %f vs %f", results[0].Relevance, results[1].Relevance)
	}
	// The unmatched chunk keeps its plain section weight.
	if results[1].Relevance != 0.7*1.3 {
		t.Errorf("expected 0.91 for unmatched chunk, got %f", results[1].Relevance)
	}
}

func TestSearch_RelevanceNeverBelowSimilarityWhenBoosted(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	idx := &stubIndex{hits: []index.Hit{{ChunkID: "chunk-a", Similarity: 0.6}}}
	chunks := mapLookup{
		"chunk-a": testChunk("chunk-a", "The Chamber convicts the accused of war crimes.", model.SectionVerdict),
	}
	r := New(cfg, &stubEmbedder{vector: []float32{1}}, idx, chunks)

	results, err := r.Search(context.Background(), "war crimes verdict", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].Relevance < results[0].Similarity {
		t.Errorf("boosted relevance %f fell below similarity %f", results[0].Relevance, results[0].Similarity)
	}
}

func TestSearch_FetchesSupersetBeforeRanking(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	idx := &stubIndex{}
	r := New(cfg, &stubEmbedder{vector: []float32{1}}, idx, mapLookup{})

	if _, err := r.Search(context.Background(), "q", 4); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if idx.topK != 4*cfg.SupersetFactor {
		t.Errorf("expected superset fetch of %d, got %d", 4*cfg.SupersetFactor, idx.topK)
	}
}

func TestSearch_DefaultsNumResults(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	idx := &stubIndex{}
	r := New(cfg, &stubEmbedder{vector: []float32{1}}, idx, mapLookup{})

	if _, err := r.Search(context.Background(), "q", 0); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if idx.topK != cfg.DefaultNumResults*cfg.SupersetFactor {
		t.Errorf("expected default superset %d, got %d", cfg.DefaultNumResults*cfg.SupersetFactor, idx.topK)
	}
}

func TestSearch_EmptyCandidatesIsNotAnError(t *testing.T) {
	r := New(model.DefaultConfig().Retrieval, &stubEmbedder{vector: []float32{1}}, &stubIndex{}, mapLookup{})

	results, err := r.Search(context.Background(), "anything", 8)
	if err != nil {
		t.Fatalf("expected nil error for empty candidates, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearch_EmbedFailurePropagates(t *testing.T) {
	embErr := model.ErrServiceUnavailable
	r := New(model.DefaultConfig().Retrieval, &stubEmbedder{err: embErr}, &stubIndex{}, mapLookup{})

	_, err := r.Search(context.Background(), "q", 8)
	if !errors.Is(err, model.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestSearch_SkipsUnresolvableChunks(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	idx := &stubIndex{hits: []index.Hit{
		{ChunkID: "chunk-gone", Similarity: 0.9},
		{ChunkID: "chunk-here", Similarity: 0.5},
	}}
	chunks := mapLookup{
		"chunk-here": testChunk("chunk-here", "Present in the store.", model.SectionOverview),
	}
	r := New(cfg, &stubEmbedder{vector: []float32{1}}, idx, chunks)

	results, err := r.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.ID != "chunk-here" {
		t.Errorf("expected only the resolvable chunk, got %+v", results)
	}
}

func TestSearch_DeterministicTieBreak(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	idx := &stubIndex{hits: []index.Hit{
		{ChunkID: "chunk-bb", Similarity: 0.5},
		{ChunkID: "chunk-aa", Similarity: 0.5},
	}}
	chunks := mapLookup{
		"chunk-aa": testChunk("chunk-aa", "Same section, same score.", model.SectionOverview),
		"chunk-bb": testChunk("chunk-bb", "Same section, same score too.", model.SectionOverview),
	}
	r := New(cfg, &stubEmbedder{vector: []float32{1}}, idx, chunks)

	for run := 0; run < 5; run++ {
		results, err := r.Search(context.Background(), "q", 2)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if results[0].Chunk.ID != "chunk-aa" || results[1].Chunk.ID != "chunk-bb" {
			t.Fatalf("run %d: tie not broken by chunk ID: %s, %s", run, results[0].Chunk.ID, results[1].Chunk.ID)
		}
	}
}
