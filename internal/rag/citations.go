package rag

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vkotliar/gavel/internal/model"
)

var citationPattern = regexp.MustCompile(`\[Source (\d+)\]`)

// validateCitations extracts [Source N] markers from the response and
// checks each against the supplied contexts. Markers pointing outside
// the context list are stripped from the text; the cleaned response,
// the valid citations and whether anything was stripped are returned.
func validateCitations(response string, contexts []model.SearchResult) (string, []model.Citation, bool) {
	matches := citationPattern.FindAllStringSubmatch(response, -1)
	if len(matches) == 0 {
		return response, nil, false
	}

	seen := make(map[int]bool)
	var citations []model.Citation
	stripped := false

	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(contexts) {
			// Fabricated source number: remove the marker.
			response = strings.ReplaceAll(response, m[0], "")
			stripped = true
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true

		chunk := contexts[n-1].Chunk
		citations = append(citations, model.Citation{
			Index:     n,
			ChunkID:   chunk.ID,
			Section:   chunk.Section,
			PageStart: chunk.PageStart,
			PageEnd:   chunk.PageEnd,
		})
	}

	if stripped {
		response = collapseSpaces(response)
	}
	return response, citations, stripped
}

// collapseSpaces tidies the gaps left by stripped markers.
func collapseSpaces(s string) string {
	s = strings.ReplaceAll(s, "  ", " ")
	s = strings.ReplaceAll(s, " .", ".")
	s = strings.ReplaceAll(s, " ,", ",")
	return strings.TrimSpace(s)
}
