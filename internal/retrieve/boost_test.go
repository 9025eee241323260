package retrieve

import (
	"testing"

	"github.com/vkotliar/gavel/internal/model"
)

func TestBooster_SectionWeightOnly(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	b := newBooster(cfg, "what happened during the trial")

	tests := []struct {
		section model.SectionType
		want    float64
	}{
		{model.SectionVerdict, 1.5},
		{model.SectionSentence, 1.4},
		{model.SectionFindings, 1.3},
		{model.SectionOverview, 1.1},
		{model.SectionEvidence, 1.0},
		{model.SectionHeader, 0.5},
		{model.SectionUnknown, 1.0},
	}
	for _, tt := range tests {
		chunk := model.Chunk{Content: "neutral procedural text", Section: tt.section}
		if got := b.multiplier(chunk); got != tt.want {
			t.Errorf("section %s: expected %f, got %f", tt.section, tt.want, got)
		}
	}
}

func TestBooster_EntityInQueryAndChunk(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	b := newBooster(cfg, "what is Yekatom accused of in Bangui")

	matched := model.Chunk{
		Content: "Yekatom led armed elements through Bangui in December 2013.",
		Section: model.SectionEvidence,
	}
	if got := b.multiplier(matched); got != 1.2*1.2 {
		t.Errorf("expected two entity boosts (1.44), got %f", got)
	}

	partial := model.Chunk{
		Content: "Yekatom was present at the meeting.",
		Section: model.SectionEvidence,
	}
	if got := b.multiplier(partial); got != 1.2 {
		t.Errorf("expected one entity boost, got %f", got)
	}

	unmatched := model.Chunk{
		Content: "The Registry transmitted the filings.",
		Section: model.SectionEvidence,
	}
	if got := b.multiplier(unmatched); got != 1.0 {
		t.Errorf("expected no boost for unmatched chunk, got %f", got)
	}
}

func TestBooster_EntityInQueryOnlyDoesNotBoost(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	b := newBooster(cfg, "tell me about Ngaïssona")

	chunk := model.Chunk{Content: "Unrelated procedural history.", Section: model.SectionEvidence}
	if got := b.multiplier(chunk); got != 1.0 {
		t.Errorf("boost applied without a chunk-side match: %f", got)
	}
}

func TestBooster_ExpansionMatchesSynonym(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	b := newBooster(cfg, "was anyone convicted of murder")

	// The chunk never says "murder" but contains a configured synonym.
	chunk := model.Chunk{
		Content: "The unlawful killing of civilians was established beyond reasonable doubt.",
		Section: model.SectionEvidence,
	}
	if got := b.multiplier(chunk); got != 1.2 {
		t.Errorf("expected synonym-matched boost 1.2, got %f", got)
	}
}

func TestBooster_CaseInsensitive(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	b := newBooster(cfg, "ANTI-BALAKA operations")

	chunk := model.Chunk{Content: "the anti-balaka groups attacked", Section: model.SectionEvidence}
	if got := b.multiplier(chunk); got != 1.2 {
		t.Errorf("expected case-insensitive entity match, got %f", got)
	}
}

func TestBooster_MultiplierAtLeastSectionWeight(t *testing.T) {
	cfg := model.DefaultConfig().Retrieval
	queries := []string{
		"",
		"war crimes persecution Yekatom Bangui",
		"completely unrelated gardening question",
	}
	for _, q := range queries {
		b := newBooster(cfg, q)
		chunk := model.Chunk{Content: "Yekatom persecution war crime Bangui", Section: model.SectionVerdict}
		if got := b.multiplier(chunk); got < cfg.SectionWeight(model.SectionVerdict) {
			t.Errorf("query %q: multiplier %f below section weight", q, got)
		}
	}
}
