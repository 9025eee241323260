// Package store persists chunk and footnote tables as JSON files under
// a volume directory. Tables are keyed by source document, so
// reprocessing a document supersedes its previous rows instead of
// accumulating duplicates.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vkotliar/gavel/internal/model"
)

// DiskStore is a file-backed chunk and footnote store. All methods are
// safe for concurrent use.
type DiskStore struct {
	dir           string
	chunkTable    string
	footnoteTable string

	mu     sync.RWMutex
	chunks map[string][]model.Chunk    // source -> chunks
	foots  map[string][]model.Footnote // source -> footnotes
	byID   map[string]model.Chunk
	loaded bool
}

// NewDiskStore opens a store rooted at the configured volume directory.
func NewDiskStore(cfg model.StorageConfig) (*DiskStore, error) {
	if cfg.VolumeDir == "" {
		return nil, fmt.Errorf("%w: storage.volume_dir is required", model.ErrConfiguration)
	}
	if err := os.MkdirAll(cfg.VolumeDir, 0755); err != nil {
		return nil, fmt.Errorf("create volume dir: %w", err)
	}
	return &DiskStore{
		dir:           cfg.VolumeDir,
		chunkTable:    tableName(cfg.ChunkTable, "chunks"),
		footnoteTable: tableName(cfg.FootnoteTable, "footnotes"),
		chunks:        make(map[string][]model.Chunk),
		foots:         make(map[string][]model.Footnote),
		byID:          make(map[string]model.Chunk),
	}, nil
}

func tableName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// SaveChunks replaces the stored chunks for a source document.
func (s *DiskStore) SaveChunks(ctx context.Context, source string, chunks []model.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	s.chunks[source] = chunks
	s.rebuildIndex()
	return writeTable(s.tablePath(s.chunkTable), s.chunks)
}

// LoadChunks returns every stored chunk across all sources.
func (s *DiskStore) LoadChunks(ctx context.Context) ([]model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	var out []model.Chunk
	for _, cs := range s.chunks {
		out = append(out, cs...)
	}
	return out, nil
}

// Get resolves a chunk by ID.
func (s *DiskStore) Get(ctx context.Context, id string) (model.Chunk, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return model.Chunk{}, false, err
	}

	c, ok := s.byID[id]
	return c, ok, nil
}

// SaveFootnotes replaces the stored footnotes for a source document.
func (s *DiskStore) SaveFootnotes(ctx context.Context, source string, footnotes []model.Footnote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	s.foots[source] = footnotes
	return writeTable(s.tablePath(s.footnoteTable), s.foots)
}

// LoadFootnotes returns the stored footnotes for a source document.
func (s *DiskStore) LoadFootnotes(ctx context.Context, source string) ([]model.Footnote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}
	return s.foots[source], nil
}

// load reads both tables once. Missing files mean an empty store.
// Caller must hold s.mu.
func (s *DiskStore) load() error {
	if s.loaded {
		return nil
	}

	if err := readTable(s.tablePath(s.chunkTable), &s.chunks); err != nil {
		return fmt.Errorf("read chunk table: %w", err)
	}
	if err := readTable(s.tablePath(s.footnoteTable), &s.foots); err != nil {
		return fmt.Errorf("read footnote table: %w", err)
	}

	s.rebuildIndex()
	s.loaded = true
	return nil
}

// rebuildIndex refreshes the chunk-ID lookup. Caller must hold s.mu.
func (s *DiskStore) rebuildIndex() {
	s.byID = make(map[string]model.Chunk)
	for _, cs := range s.chunks {
		for _, c := range cs {
			s.byID[c.ID] = c
		}
	}
}

func (s *DiskStore) tablePath(table string) string {
	return filepath.Join(s.dir, table+".json")
}

func readTable(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// writeTable writes atomically via a temp file so a crash mid-write
// never leaves a truncated table.
func writeTable(path string, table any) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal table: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace table: %w", err)
	}
	return nil
}
