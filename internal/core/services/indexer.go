package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/credostack/underwrite/internal/chunker"
	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
	"github.com/credostack/underwrite/internal/core/ports/driving"
	"github.com/credostack/underwrite/internal/loaders"
	"github.com/credostack/underwrite/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.IndexService = (*IndexerService)(nil)

// DefaultEmbedBatchSize is how many chunks each embedding batch holds.
const DefaultEmbedBatchSize = 32

// IndexerService builds and loads the vector index: load documents,
// chunk, embed in batches, upsert, persist.
type IndexerService struct {
	registry  *loaders.Registry
	splitter  *chunker.Splitter
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	backend   domain.VectorBackend
	batchSize int
}

// IndexerConfig holds indexer tuning.
type IndexerConfig struct {
	// Backend names the active store type for stats reporting.
	Backend domain.VectorBackend

	// BatchSize is the embedding batch size (default 32).
	BatchSize int
}

// NewIndexerService creates an indexer over the given dependencies.
func NewIndexerService(
	registry *loaders.Registry,
	splitter *chunker.Splitter,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	cfg IndexerConfig,
) *IndexerService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultEmbedBatchSize
	}
	return &IndexerService{
		registry:  registry,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		backend:   cfg.Backend,
		batchSize: cfg.BatchSize,
	}
}

// Build loads documents from dir, chunks, embeds, and stores them.
// Returns domain.ErrNoDocuments when dir is missing or holds no
// supported files.
func (s *IndexerService) Build(ctx context.Context, dir string, opts driving.BuildOptions) error {
	logger.Section("Index Build")

	paths, err := s.collectFiles(dir, opts.Recursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNoDocuments, dir)
	}
	logger.Info("Found %d documents in %s", len(paths), dir)

	if err := s.store.Open(ctx); err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := s.registry.Load(ctx, path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		docs = append(docs, *doc)
	}

	chunks := s.splitter.SplitAll(docs)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: documents produced no chunks", domain.ErrNoDocuments)
	}
	logger.Info("Split %d documents into %d chunks", len(docs), len(chunks))

	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}

		entries := make([]domain.IndexEntry, len(batch))
		for i, c := range batch {
			entries[i] = domain.IndexEntry{Chunk: c, Embedding: vectors[i]}
		}
		if err := s.store.Upsert(ctx, entries); err != nil {
			return fmt.Errorf("store batch at %d: %w", start, err)
		}
		logger.Debug("Indexed chunks %d-%d", start, end-1)
	}

	if opts.Persist {
		if err := s.store.Persist(ctx); err != nil {
			return fmt.Errorf("persist index: %w", err)
		}
		logger.Info("Index persisted to %s", s.store.Location())
	}
	return nil
}

// Load reopens a persisted index and verifies it matches the
// configured embedding model's dimension.
func (s *IndexerService) Load(ctx context.Context) error {
	if err := s.store.Open(ctx); err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("inspect store: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w at %s", domain.ErrIndexNotFound, s.store.Location())
	}

	if dims := s.store.Dimensions(); dims != s.embedder.Dimensions() {
		return fmt.Errorf("%w: index has %d, model %s produces %d",
			domain.ErrDimensionMismatch, dims, s.embedder.ModelName(), s.embedder.Dimensions())
	}

	logger.Debug("Loaded index with %d chunks from %s", count, s.store.Location())
	return nil
}

// Rebuild deletes existing artifacts and builds fresh. A failed build
// after the delete leaves no index behind.
func (s *IndexerService) Rebuild(ctx context.Context, dir string, opts driving.BuildOptions) error {
	if err := s.store.Open(ctx); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	logger.Info("Cleared existing index at %s", s.store.Location())
	return s.Build(ctx, dir, opts)
}

// Stats returns read-only index data. Internal failures are logged and
// reported as a zero count.
func (s *IndexerService) Stats(ctx context.Context) domain.IndexStats {
	stats := domain.IndexStats{
		Backend:  s.backend,
		Location: s.store.Location(),
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		logger.Warn("Stats unavailable: %v", err)
		return stats
	}
	stats.TotalChunks = count
	return stats
}

// collectFiles gathers supported files under dir in sorted order so
// rebuilds over the same tree are deterministic.
func (s *IndexerService) collectFiles(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoDocuments, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if s.registry.Supports(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}
