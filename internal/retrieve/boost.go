package retrieve

import (
	"strings"

	"github.com/vkotliar/gavel/internal/model"
)

// booster computes the relevance multiplier for a chunk given a query.
// Multipliers are always >= 1 so boosting can only promote, never
// demote, a candidate relative to its raw similarity.
type booster struct {
	cfg model.RetrievalConfig

	// terms are the lowercase entity and expansion-key terms the query
	// matched, precomputed once per query.
	terms []term
}

// term is a matchable unit: the base form plus its synonyms. A chunk
// matches the term when it contains the base or any synonym.
type term struct {
	base     string
	synonyms []string
}

// newBooster scans the query once against the configured entity routes
// and legal-term expansions.
func newBooster(cfg model.RetrievalConfig, query string) *booster {
	q := strings.ToLower(query)
	b := &booster{cfg: cfg}

	for _, entities := range cfg.EntityRoutes {
		for _, e := range entities {
			if strings.Contains(q, strings.ToLower(e)) {
				b.terms = append(b.terms, term{base: strings.ToLower(e), synonyms: lowerAll(cfg.Expansions[e])})
			}
		}
	}
	for key, synonyms := range cfg.Expansions {
		k := strings.ToLower(key)
		if strings.Contains(q, k) && !b.hasTerm(k) {
			b.terms = append(b.terms, term{base: k, synonyms: lowerAll(synonyms)})
		}
	}
	return b
}

// multiplier returns sectionWeight * entityBoost^matches for the chunk.
func (b *booster) multiplier(chunk model.Chunk) float64 {
	m := b.cfg.SectionWeight(chunk.Section)

	if len(b.terms) > 0 {
		content := strings.ToLower(chunk.Content)
		for _, t := range b.terms {
			if termMatches(content, t) {
				m *= b.cfg.EntityBoost
			}
		}
	}
	return m
}

func (b *booster) hasTerm(base string) bool {
	for _, t := range b.terms {
		if t.base == base {
			return true
		}
	}
	return false
}

func termMatches(content string, t term) bool {
	if strings.Contains(content, t.base) {
		return true
	}
	for _, s := range t.synonyms {
		if strings.Contains(content, s) {
			return true
		}
	}
	return false
}

func lowerAll(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
