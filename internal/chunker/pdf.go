package chunker

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/vkotliar/gavel/internal/model"
)

// LoadPDF reads a PDF from a volume path into an ordered document.
// The first skipFirstPages pages (cover, table of contents) are
// skipped. A page whose text cannot be extracted contributes an empty
// page rather than aborting the load.
func LoadPDF(path string, skipFirstPages int) (*model.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	if skipFirstPages >= total {
		return nil, fmt.Errorf("open pdf %s: %w: only %d pages, skip_first_pages is %d",
			path, model.ErrEmptyResult, total, skipFirstPages)
	}

	doc := &model.Document{Source: path}
	for num := skipFirstPages + 1; num <= total; num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, model.Page{Number: num})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Per-page extraction failure: the page contributes no
			// chunks but the run continues.
			doc.Pages = append(doc.Pages, model.Page{Number: num})
			continue
		}
		doc.Pages = append(doc.Pages, model.Page{Number: num, Text: text})
	}

	return doc, nil
}
