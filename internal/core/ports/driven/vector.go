package driven

import (
	"context"

	"github.com/credostack/underwrite/internal/core/domain"
)

// VectorStore persists index entries and answers nearest-neighbour
// queries. Implementations form a closed set selected by the
// domain.VectorBackend configuration value.
//
// Search is side-effect-free and safe for concurrent readers. The
// indexer is the only writer; rebuilds require exclusive access to the
// persisted location.
type VectorStore interface {
	// Open prepares the store at its configured location. Opening an
	// already-existing store is idempotent.
	Open(ctx context.Context) error

	// Upsert inserts or replaces entries. All entries must share the
	// store's embedding dimension.
	Upsert(ctx context.Context, entries []domain.IndexEntry) error

	// Search returns up to topK results ordered by descending
	// similarity, ties broken by insertion order. topK larger than the
	// stored entry count is capped, never an error.
	Search(ctx context.Context, query []float32, topK int) ([]domain.RetrievalResult, error)

	// Persist writes the index artifacts to durable storage.
	Persist(ctx context.Context) error

	// Reset deletes all entries and persisted artifacts, returning the
	// store to its freshly-opened empty state.
	Reset(ctx context.Context) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the embedding dimension the store was built
	// with, or 0 if nothing is stored yet.
	Dimensions() int

	// Location returns the directory or database path backing the store.
	Location() string

	// Close releases resources.
	Close() error
}
