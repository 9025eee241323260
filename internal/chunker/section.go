package chunker

import (
	"regexp"
	"strings"

	"github.com/vkotliar/gavel/internal/model"
)

// Judgment section headings as they appear in the document body.
// Headings are printed in capitals, optionally prefixed with a roman
// or arabic ordinal ("IX. VERDICT", "10. SENTENCE").
var headingOrdinal = regexp.MustCompile(`^(?:[IVXLC]+|\d{1,2})[.)]\s+`)

var headingSections = map[string]model.SectionType{
	"VERDICT":                    model.SectionVerdict,
	"DISPOSITION":                model.SectionVerdict,
	"SENTENCE":                   model.SectionSentence,
	"SENTENCING":                 model.SectionSentence,
	"FINDINGS OF FACT":           model.SectionFindings,
	"OVERVIEW":                   model.SectionOverview,
	"EVIDENTIARY CONSIDERATIONS": model.SectionEvidence,
}

// detectHeading reports whether a line is a section heading and, if so,
// which section it opens. Only fully upper-case lines qualify: body
// text quoting the word "verdict" must not flip the section.
func detectHeading(line string) (model.SectionType, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed != strings.ToUpper(trimmed) {
		return model.SectionUnknown, false
	}

	trimmed = headingOrdinal.ReplaceAllString(trimmed, "")
	trimmed = strings.TrimSpace(strings.TrimRight(trimmed, ".:"))

	if section, ok := headingSections[trimmed]; ok {
		return section, true
	}
	return model.SectionUnknown, false
}
