package chunker

import (
	"regexp"
	"strings"

	"github.com/vkotliar/gavel/internal/model"
)

// Numbered legal paragraphs: "412. The Chamber finds ...". Four digits
// cover judgments into the thousands of paragraphs.
var paragraphPattern = regexp.MustCompile(`^(\d{1,4})\.\s*(.*)$`)

// Inline footnote markers survive text extraction glued to the
// preceding sentence: "... attack.312 The Chamber ...".
var footnoteRefPattern = regexp.MustCompile(`\.(\d{1,3})(?:\s|$)`)

// paragraph is a unit of main text attributed to one page. Section is
// resolved in a sequential pass after parallel page parsing: a page
// without its own heading inherits the section in force before it.
type paragraph struct {
	number       string
	content      string
	page         int
	section      model.SectionType
	sectionKnown bool
}

// parsePage segments one page into main-text paragraphs and footnotes.
// Pages are independent, so this is safe to run concurrently.
func (c *Chunker) parsePage(page model.Page) ([]paragraph, []model.Footnote) {
	var (
		paragraphs []paragraph
		footnotes  []model.Footnote

		current     *paragraph
		currentNote *model.Footnote

		section      = model.SectionUnknown
		sectionKnown = false
	)

	closePara := func() {
		if current != nil && strings.TrimSpace(current.content) != "" {
			current.content = strings.TrimSpace(current.content)
			paragraphs = append(paragraphs, *current)
		}
		current = nil
	}
	closeNote := func() {
		if currentNote != nil {
			currentNote.Content = strings.TrimSpace(currentNote.Content)
			currentNote.Confidence = footnoteConfidence(currentNote.Content)
			footnotes = append(footnotes, *currentNote)
		}
		currentNote = nil
	}

	for _, line := range strings.Split(page.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			// Blank lines separate unnumbered paragraphs.
			closePara()
			continue
		}
		if c.isHeaderFooter(line) {
			continue
		}

		if heading, ok := detectHeading(line); ok {
			closePara()
			closeNote()
			section = heading
			sectionKnown = true
			continue
		}

		if m := paragraphPattern.FindStringSubmatch(line); m != nil {
			closePara()
			closeNote()
			current = &paragraph{
				number:       m[1],
				content:      m[2],
				page:         page.Number,
				section:      section,
				sectionKnown: sectionKnown,
			}
			continue
		}

		if m := footnotePattern.FindStringSubmatch(line); m != nil {
			if footnoteConfidence(m[2]) >= c.cfg.FootnoteMinConfidence {
				closePara()
				closeNote()
				currentNote = &model.Footnote{
					Number:  m[1],
					Content: m[2],
					Page:    page.Number,
				}
				continue
			}
			// Below the confidence threshold: not a footnote, fall
			// through to continuation handling.
		}

		switch {
		case currentNote != nil && len(line) > 10:
			currentNote.Content += " " + line
		case current != nil:
			current.content += " " + line
		default:
			// Unnumbered text opens an implicit paragraph.
			current = &paragraph{
				content:      line,
				page:         page.Number,
				section:      section,
				sectionKnown: sectionKnown,
			}
		}
	}
	closePara()
	closeNote()

	return paragraphs, footnotes
}

// extractFootnoteRefs pulls inline footnote markers out of paragraph
// content, deduplicated in order of first appearance.
func extractFootnoteRefs(content string) []string {
	matches := footnoteRefPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var refs []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			refs = append(refs, m[1])
		}
	}
	return refs
}
