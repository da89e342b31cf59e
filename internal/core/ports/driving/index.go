// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/credostack/underwrite/internal/core/domain"
)

// BuildOptions configures an index build.
type BuildOptions struct {
	// Recursive controls whether subdirectories are walked.
	Recursive bool

	// Persist controls whether artifacts are written to durable storage.
	Persist bool
}

// IndexService builds, loads, and inspects the vector index.
type IndexService interface {
	// Build loads documents from dir, chunks, embeds, and stores them.
	// Returns domain.ErrNoDocuments if the directory is empty or
	// missing so callers can seed sample content or abort.
	Build(ctx context.Context, dir string, opts BuildOptions) error

	// Load reopens a previously persisted index. Returns
	// domain.ErrIndexNotFound when no artifacts exist, and
	// domain.ErrDimensionMismatch when the configured embedding model
	// does not match the persisted index.
	Load(ctx context.Context) error

	// Rebuild deletes existing artifacts and builds fresh. Deletion
	// followed by a failed build leaves no index; callers must hold
	// exclusive access to the persisted location for the duration.
	Rebuild(ctx context.Context, dir string, opts BuildOptions) error

	// Stats returns read-only introspection data. It never fails;
	// internal errors are logged and a zero value returned.
	Stats(ctx context.Context) domain.IndexStats
}
