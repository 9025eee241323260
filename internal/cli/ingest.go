package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkotliar/gavel/internal/chunker"
)

var (
	ingestTimeout time.Duration
	skipPages     int
	noIndex       bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <judgment.pdf>",
	Short: "Chunk a judgment PDF and index it for retrieval",
	Long: `Ingest extracts text from a judgment PDF, splits it into
section-tagged chunks with footnotes tracked separately, persists the
chunk and footnote tables, and indexes chunk embeddings for search.

Re-ingesting the same document supersedes its previous chunks; chunk
IDs are content hashes, so unchanged text keeps its identity and warm
embedding cache entries.

Example:
  gavel ingest trial-judgment.pdf
  gavel ingest trial-judgment.pdf --skip-pages 6 --no-index`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 15*time.Minute, "overall ingest timeout")
	ingestCmd.Flags().IntVar(&skipPages, "skip-pages", -1, "pages to skip at the front (-1 uses the configured default)")
	ingestCmd.Flags().BoolVar(&noIndex, "no-index", false, "store chunks without embedding and indexing them")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if skipPages >= 0 {
		cfg.Chunking.SkipFirstPages = skipPages
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	doc, err := chunker.LoadPDF(path, cfg.Chunking.SkipFirstPages)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d pages from %s\n", len(doc.Pages), path)
	}

	ch, err := chunker.New(cfg.Chunking)
	if err != nil {
		return err
	}
	result, err := ch.ChunkDocument(ctx, *doc)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	if err := a.store.SaveChunks(ctx, doc.Source, result.Chunks); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := a.store.SaveFootnotes(ctx, doc.Source, result.Footnotes); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	quality := 0
	for _, c := range result.Chunks {
		if !c.LowQuality {
			quality++
		}
	}
	fmt.Printf("Stored %d chunks (%d quality) and %d footnotes from %s\n",
		len(result.Chunks), quality, len(result.Footnotes), doc.Source)

	if noIndex {
		return nil
	}

	if q, ok := a.index.(interface{ EnsureCollection(context.Context) error }); ok {
		if err := q.EnsureCollection(ctx); err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
	}

	entries, err := a.embedChunks(ctx, result.Chunks)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := a.index.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	fmt.Printf("Indexed %d chunk embeddings\n", len(entries))
	return nil
}
