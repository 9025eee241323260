package model

// Page is a single page of extractable text.
type Page struct {
	// Number is the 1-based page number in the source document.
	Number int `json:"number"`

	// Text is the raw extracted page text, line-oriented.
	Text string `json:"text"`
}

// Document is an ordered sequence of pages from a single source file.
type Document struct {
	// Source identifies where the document came from (path or volume URI).
	Source string `json:"source"`

	Pages []Page `json:"pages"`
}

// Footnote is a footnote detected during chunking. Footnotes are tracked
// separately from main-text chunks and persisted to their own table.
type Footnote struct {
	// Number is the footnote number as printed (kept as string: OCR and
	// text extraction occasionally yield non-numeric artifacts).
	Number string `json:"number"`

	Content string `json:"content"`
	Page    int    `json:"page"`

	// Confidence is the legal-citation confidence score in [0, 1].
	// Lines below the configured threshold are not treated as footnotes.
	Confidence float64 `json:"confidence"`
}
