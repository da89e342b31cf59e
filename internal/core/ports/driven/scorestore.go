package driven

import (
	"context"

	"github.com/credostack/underwrite/internal/core/domain"
)

// ScoreStore persists scoring results and the audit trail.
// Backed by SQLite.
type ScoreStore interface {
	// SaveResult stores a scoring outcome. Request IDs are unique.
	SaveResult(ctx context.Context, rec *domain.ScoreRecord) error

	// GetResult retrieves a scoring outcome by request ID.
	// Returns domain.ErrNotFound when absent.
	GetResult(ctx context.Context, requestID string) (*domain.ScoreRecord, error)

	// ListResults returns outcomes for a customer, newest first.
	ListResults(ctx context.Context, customerID string) ([]domain.ScoreRecord, error)

	// AppendAudit records one audit trail entry.
	AppendAudit(ctx context.Context, entry *domain.AuditEntry) error

	// Close releases the underlying database handle.
	Close() error
}
