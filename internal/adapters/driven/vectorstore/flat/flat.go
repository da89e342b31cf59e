// Package flat provides an in-memory vector store with brute-force
// cosine search, persisted as JSON artifacts on disk. It is the
// default backend for small and medium document sets.
package flat

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Artifact file names within the index directory.
const (
	entriesFile  = "index_entries.json"
	manifestFile = "index_manifest.json"
)

// Config holds configuration for the flat store.
type Config struct {
	// Dir is the directory holding the index artifacts.
	Dir string

	// Model is the embedding model the index was built with. Recorded
	// in the manifest so a later load can detect a model change.
	Model string
}

// manifest describes a persisted index.
type manifest struct {
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is an in-memory vector store with JSON persistence.
type Store struct {
	mu      sync.RWMutex
	dir     string
	model   string
	dims    int
	entries []domain.IndexEntry
	byID    map[string]int
}

// New creates a flat store rooted at cfg.Dir. Call Open before use.
func New(cfg Config) *Store {
	return &Store{
		dir:   cfg.Dir,
		model: cfg.Model,
		byID:  make(map[string]int),
	}
}

// Open loads persisted artifacts when present. A directory without
// artifacts opens as an empty store.
func (s *Store) Open(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	manData, err := os.ReadFile(filepath.Join(s.dir, manifestFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var man manifest
	if err := json.Unmarshal(manData, &man); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	entData, err := os.ReadFile(filepath.Join(s.dir, entriesFile))
	if err != nil {
		return fmt.Errorf("read entries: %w", err)
	}

	var entries []domain.IndexEntry
	if err := json.Unmarshal(entData, &entries); err != nil {
		return fmt.Errorf("parse entries: %w", err)
	}

	s.dims = man.Dimensions
	s.entries = entries
	s.byID = make(map[string]int, len(entries))
	for i, e := range entries {
		s.byID[e.Chunk.ID] = i
	}
	if s.model == "" {
		s.model = man.Model
	}
	return nil
}

// Model returns the embedding model recorded for this index.
func (s *Store) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Upsert inserts or replaces entries keyed by chunk ID.
func (s *Store) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if len(e.Embedding) == 0 {
			return fmt.Errorf("%w: empty embedding for chunk %s", domain.ErrInvalidInput, e.Chunk.ID)
		}
		if s.dims == 0 {
			s.dims = len(e.Embedding)
		}
		if len(e.Embedding) != s.dims {
			return fmt.Errorf("%w: got %d, index has %d", domain.ErrDimensionMismatch, len(e.Embedding), s.dims)
		}

		if i, ok := s.byID[e.Chunk.ID]; ok {
			s.entries[i] = e
			continue
		}
		s.byID[e.Chunk.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

// Search scores every stored entry against the query and returns the
// topK best by cosine similarity. Ties keep insertion order.
func (s *Store) Search(_ context.Context, query []float32, topK int) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf("%w: query has %d, index has %d", domain.ErrDimensionMismatch, len(query), s.dims)
	}
	if topK <= 0 {
		return nil, nil
	}

	results := make([]domain.RetrievalResult, len(s.entries))
	for i, e := range s.entries {
		results[i] = domain.RetrievalResult{
			Chunk: e.Chunk,
			Score: cosineSimilarity(query, e.Embedding),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	results = results[:topK]
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// Persist writes the artifacts atomically via a temp file rename.
func (s *Store) Persist(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	man := manifest{
		Model:      s.model,
		Dimensions: s.dims,
		Total:      len(s.entries),
		CreatedAt:  time.Now(),
	}

	if err := writeJSON(filepath.Join(s.dir, entriesFile), s.entries); err != nil {
		return fmt.Errorf("persist entries: %w", err)
	}
	if err := writeJSON(filepath.Join(s.dir, manifestFile), man); err != nil {
		return fmt.Errorf("persist manifest: %w", err)
	}
	return nil
}

// Reset drops all entries and removes the persisted artifacts.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.byID = make(map[string]int)
	s.dims = 0

	for _, name := range []string{entriesFile, manifestFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

// Count returns the number of stored entries.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Dimensions returns the embedding dimension, or 0 when empty.
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims
}

// Location returns the index directory.
func (s *Store) Location() string {
	return s.dir
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// writeJSON marshals v and renames the temp file into place so a
// crashed persist never leaves a truncated artifact.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
