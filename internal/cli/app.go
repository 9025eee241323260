package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/vkotliar/gavel/internal/cache"
	"github.com/vkotliar/gavel/internal/embed"
	"github.com/vkotliar/gavel/internal/index"
	"github.com/vkotliar/gavel/internal/llm"
	"github.com/vkotliar/gavel/internal/memory"
	"github.com/vkotliar/gavel/internal/model"
	"github.com/vkotliar/gavel/internal/rag"
	"github.com/vkotliar/gavel/internal/retrieve"
	"github.com/vkotliar/gavel/internal/store"
	"github.com/vkotliar/gavel/internal/worker"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg      *model.Config
	store    *store.DiskStore
	embedder embed.Embedder
	index    index.VectorIndex
}

// loadConfig merges defaults, the config file and environment
// variables, then validates the result before any component starts.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing config: %v", model.ErrConfiguration, err)
	}

	// API keys come from the environment, never the config file.
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires the storage, embedding and index components.
func newApp(cfg *model.Config) (*app, error) {
	chunkStore, err := store.NewDiskStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	limiter := worker.NewLimiter(cfg.Embedding.RequestsPerSecond, 1)
	base, err := embed.NewOpenAIEmbedder(cfg.Embedding, limiter)
	if err != nil {
		return nil, err
	}

	var embedder embed.Embedder = base
	if cfg.Embedding.CacheTTL > 0 {
		ttl := time.Duration(cfg.Embedding.CacheTTL) * time.Minute
		layered := cache.NewLayeredCache(ttl, filepath.Join(cfg.Storage.VolumeDir, "cache"), ttl)
		embedder = embed.NewCachedEmbedder(base, layered, cfg.Embedding.Model, ttl)
	}

	var idx index.VectorIndex
	switch cfg.Index.Backend {
	case "qdrant":
		idx, err = index.NewQdrantIndex(cfg.Index.Qdrant, cfg.Embedding.Dimension)
		if err != nil {
			return nil, err
		}
	default:
		idx = index.NewMemoryIndex(cfg.Embedding.Dimension)
	}

	return &app{
		cfg:      cfg,
		store:    chunkStore,
		embedder: embedder,
		index:    idx,
	}, nil
}

// newEngine builds the full query path on top of the app components.
func (a *app) newEngine() (*rag.Engine, error) {
	provider, err := llm.NewProvider(a.cfg.LLM)
	if err != nil {
		return nil, err
	}

	retriever := retrieve.New(a.cfg.Retrieval, a.embedder, a.index, a.store)
	sessions := memory.NewStore(a.cfg.Memory)

	return rag.NewEngine(a.cfg.Retrieval, retriever, llm.NewBreakerProvider(provider), sessions), nil
}

// hydrateIndex rebuilds an in-memory index from the stored chunks.
// Qdrant keeps its points across runs, so only the memory backend
// needs this. Vectors come from the embedding cache when warm.
func (a *app) hydrateIndex(ctx context.Context) error {
	if a.cfg.Index.Backend == "qdrant" {
		if q, ok := a.index.(*index.QdrantIndex); ok {
			return q.EnsureCollection(ctx)
		}
		return nil
	}

	chunks, err := a.store.LoadChunks(ctx)
	if err != nil {
		return fmt.Errorf("hydrate index: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	entries, err := a.embedChunks(ctx, chunks)
	if err != nil {
		return fmt.Errorf("hydrate index: %w", err)
	}
	return a.index.Upsert(ctx, entries)
}

// embedChunks embeds every quality chunk and pairs it with its index
// payload. Low-quality chunks are stored but never indexed.
func (a *app) embedChunks(ctx context.Context, chunks []model.Chunk) ([]index.Entry, error) {
	entries := make([]index.Entry, 0, len(chunks))
	for _, c := range chunks {
		if c.LowQuality {
			continue
		}
		vector, err := a.embedder.Embed(ctx, c.Content)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %s: %w", c.ID, err)
		}
		entries = append(entries, index.Entry{
			ChunkID:   c.ID,
			Vector:    vector,
			Section:   string(c.Section),
			PageStart: c.PageStart,
			PageEnd:   c.PageEnd,
		})
	}
	return entries, nil
}
