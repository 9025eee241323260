package chunker

import (
	"regexp"
)

// Footnote lines start with a bare footnote number. Paragraph numbers
// carry a trailing dot, so the two patterns do not overlap.
var footnotePattern = regexp.MustCompile(`^(\d{1,3})\s+(.+)$`)

// Legal citation patterns that mark genuine footnote content.
var citationPatterns = []struct {
	re     *regexp.Regexp
	weight float64
}{
	{regexp.MustCompile(`P-\d+:`), 0.4},           // witness references
	{regexp.MustCompile(`T-\d+`), 0.3},            // transcript references
	{regexp.MustCompile(`CAR-`), 0.2},             // document references
	{regexp.MustCompile(`ICC-`), 0.2},             // case references
	{regexp.MustCompile(`para\.?\s+\d+`), 0.1},    // paragraph references
	{regexp.MustCompile(`p\.\s+\d+`), 0.1},        // page references
	{regexp.MustCompile(`Article\s+\d+`), 0.1},    // article references
	{regexp.MustCompile(`Rule\s+\d+`), 0.1},       // rule references
}

// Bare dates are the main false-positive source: "23 February 1975"
// parses as footnote number 23 otherwise.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(19|20)\d{2}\b`),
	regexp.MustCompile(`(?i)^\s*(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`),
}

// footnoteConfidence scores how strongly content looks like a legal
// footnote, in [0, 1]. Date-like content scores zero outright.
func footnoteConfidence(content string) float64 {
	if len(content) < 10 {
		return 0
	}
	for _, re := range datePatterns {
		if re.MatchString(content) {
			return 0
		}
	}

	score := 0.0
	for _, p := range citationPatterns {
		if p.re.MatchString(content) {
			score += p.weight
		}
	}
	if len(content) > 50 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
