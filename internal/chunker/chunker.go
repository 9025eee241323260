package chunker

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/vkotliar/gavel/internal/model"
	"github.com/vkotliar/gavel/internal/worker"
)

// Chunker segments a judgment document into quality-validated,
// section-aware chunks. Pages are parsed in parallel; the resulting
// chunk sequence always follows document order.
type Chunker struct {
	cfg       model.ChunkingConfig
	headerRes []*regexp.Regexp
}

// Result holds the chunking output for one document.
type Result struct {
	Chunks    []model.Chunk
	Footnotes []model.Footnote
}

// New creates a chunker, compiling the configured header patterns.
func New(cfg model.ChunkingConfig) (*Chunker, error) {
	headerRes := make([]*regexp.Regexp, 0, len(cfg.HeaderPatterns))
	for _, pattern := range cfg.HeaderPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: header pattern %q: %v", model.ErrConfiguration, pattern, err)
		}
		headerRes = append(headerRes, re)
	}

	return &Chunker{
		cfg:       cfg,
		headerRes: headerRes,
	}, nil
}

func (c *Chunker) isHeaderFooter(line string) bool {
	for _, re := range c.headerRes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// pageJob parses a single page on the worker pool.
type pageJob struct {
	chunker *Chunker
	page    model.Page
}

type pageParse struct {
	page       int
	paragraphs []paragraph
	footnotes  []model.Footnote
	err        error
}

func (p *pageParse) GetError() error { return p.err }

func (j *pageJob) Execute(ctx context.Context) worker.Result {
	if err := ctx.Err(); err != nil {
		return &pageParse{page: j.page.Number, err: err}
	}
	paragraphs, footnotes := j.chunker.parsePage(j.page)
	return &pageParse{page: j.page.Number, paragraphs: paragraphs, footnotes: footnotes}
}

// ChunkDocument produces the ordered chunk sequence for a document.
// A page that yields no paragraphs contributes no chunks but does not
// abort the run; a document that yields zero quality chunks fails with
// ErrEmptyResult.
func (c *Chunker) ChunkDocument(ctx context.Context, doc model.Document) (*Result, error) {
	pages := doc.Pages
	if len(pages) == 0 {
		return nil, fmt.Errorf("chunk %s: %w: document has no pages", doc.Source, model.ErrEmptyResult)
	}

	pool := worker.NewPool(c.cfg.PageWorkers)
	pool.Start()
	for _, page := range pages {
		pool.Submit(&pageJob{chunker: c, page: page})
	}
	results := pool.Wait()

	parses := make([]*pageParse, 0, len(results))
	for _, r := range results {
		if err := r.GetError(); err != nil {
			return nil, fmt.Errorf("chunk %s: %w", doc.Source, err)
		}
		parses = append(parses, r.(*pageParse))
	}
	// Completion order is arbitrary; restore document order.
	sort.Slice(parses, func(i, j int) bool { return parses[i].page < parses[j].page })

	var (
		paragraphs []paragraph
		footnotes  []model.Footnote
	)
	prevailing := model.SectionUnknown
	for _, p := range parses {
		for _, para := range p.paragraphs {
			if para.sectionKnown {
				prevailing = para.section
			} else {
				para.section = prevailing
			}
			paragraphs = append(paragraphs, para)
		}
		footnotes = append(footnotes, p.footnotes...)
	}

	chunks := c.assemble(paragraphs)

	quality := 0
	for _, ch := range chunks {
		if !ch.LowQuality {
			quality++
		}
	}
	if quality == 0 {
		return nil, fmt.Errorf("chunk %s: %w: no quality chunks produced", doc.Source, model.ErrEmptyResult)
	}

	return &Result{Chunks: chunks, Footnotes: footnotes}, nil
}

// builder accumulates adjacent paragraphs of one section into a chunk.
type builder struct {
	parts     []string
	numbers   []string
	section   model.SectionType
	pageStart int
	pageEnd   int
	tokens    int
}

// assemble merges adjacent main-text paragraphs within a section until
// the token budget would be exceeded, then closes the chunk. A chunk
// never spans two sections; an oversized single paragraph is split.
func (c *Chunker) assemble(paragraphs []paragraph) []model.Chunk {
	var chunks []model.Chunk
	var b *builder

	flush := func() {
		if b == nil || len(b.parts) == 0 {
			return
		}
		chunks = append(chunks, c.newChunk(strings.Join(b.parts, "\n\n"), b.section, b.pageStart, b.pageEnd, b.numbers))
		b = nil
	}

	for _, para := range paragraphs {
		tokens := model.EstimateTokens(para.content)

		if b != nil && para.section != b.section {
			flush()
		}

		if tokens > c.cfg.MaxTokensPerChunk {
			flush()
			for _, piece := range c.splitOversized(para.content) {
				chunks = append(chunks, c.newChunk(piece, para.section, para.page, para.page, numberOf(para)))
			}
			continue
		}

		if b != nil && b.tokens+tokens > c.cfg.MaxTokensPerChunk {
			flush()
		}

		if b == nil {
			b = &builder{section: para.section, pageStart: para.page, pageEnd: para.page}
		}
		b.parts = append(b.parts, para.content)
		if para.number != "" {
			b.numbers = append(b.numbers, para.number)
		}
		b.pageEnd = para.page
		b.tokens += tokens
	}
	flush()

	return chunks
}

func numberOf(p paragraph) []string {
	if p.number == "" {
		return nil
	}
	return []string{p.number}
}

func (c *Chunker) newChunk(content string, section model.SectionType, pageStart, pageEnd int, numbers []string) model.Chunk {
	if section == "" {
		section = model.SectionUnknown
	}
	return model.Chunk{
		ID:               model.ChunkID(content),
		Content:          content,
		Section:          section,
		PageStart:        pageStart,
		PageEnd:          pageEnd,
		ParagraphNumbers: numbers,
		FootnoteRefs:     extractFootnoteRefs(content),
		TokenCount:       model.EstimateTokens(content),
		LowQuality:       len(content) < c.cfg.MinParagraphLength,
	}
}

var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// splitOversized breaks a paragraph that alone exceeds the token budget
// into pieces at sentence boundaries, falling back to word boundaries
// for a single run-on sentence.
func (c *Chunker) splitOversized(content string) []string {
	sentences := splitSentences(content)

	var pieces []string
	var parts []string
	tokens := 0
	flush := func() {
		if len(parts) > 0 {
			pieces = append(pieces, strings.Join(parts, " "))
			parts = nil
			tokens = 0
		}
	}

	for _, sentence := range sentences {
		st := model.EstimateTokens(sentence)
		if st > c.cfg.MaxTokensPerChunk {
			flush()
			pieces = append(pieces, c.splitByWords(sentence)...)
			continue
		}
		if tokens+st > c.cfg.MaxTokensPerChunk {
			flush()
		}
		parts = append(parts, sentence)
		tokens += st
	}
	flush()

	return pieces
}

func (c *Chunker) splitByWords(text string) []string {
	// 1.3 tokens per word keeps each piece within the budget.
	maxWords := int(float64(c.cfg.MaxTokensPerChunk) / 1.3)
	if maxWords < 1 {
		maxWords = 1
	}

	words := strings.Fields(text)
	var pieces []string
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		pieces = append(pieces, strings.Join(words[start:end], " "))
	}
	return pieces
}

func splitSentences(text string) []string {
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	raw := strings.Split(marked, "\x00")
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
