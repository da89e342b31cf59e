// Package sqlite provides a SQLite-backed store for scoring results
// and the audit trail.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ScoreStore = (*Store)(nil)

// Store persists scoring outcomes in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS score_results (
	request_id TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL,
	approved INTEGER NOT NULL,
	probability_score REAL NOT NULL,
	is_thin_file INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_score_results_customer ON score_results(customer_id, created_at DESC);

CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	customer_id TEXT NOT NULL,
	action TEXT NOT NULL,
	details TEXT NOT NULL DEFAULT '',
	timestamp TIMESTAMP NOT NULL
);
`

// NewStore opens (or creates) the scoring database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// SaveResult stores a scoring outcome. An existing request ID is
// overwritten; retried requests keep the latest outcome.
func (s *Store) SaveResult(ctx context.Context, rec *domain.ScoreRecord) error {
	if rec == nil {
		return domain.ErrInvalidInput
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO score_results (request_id, customer_id, approved, probability_score, is_thin_file, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (request_id) DO UPDATE SET
			customer_id = excluded.customer_id,
			approved = excluded.approved,
			probability_score = excluded.probability_score,
			is_thin_file = excluded.is_thin_file,
			created_at = excluded.created_at`,
		rec.RequestID, rec.CustomerID, rec.Approved, rec.ProbabilityScore, rec.IsThinFile, createdAt)
	if err != nil {
		return fmt.Errorf("saving result %s: %w", rec.RequestID, err)
	}
	return nil
}

// GetResult retrieves a scoring outcome by request ID.
func (s *Store) GetResult(ctx context.Context, requestID string) (*domain.ScoreRecord, error) {
	var rec domain.ScoreRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT request_id, customer_id, approved, probability_score, is_thin_file, created_at
		FROM score_results WHERE request_id = ?`, requestID).
		Scan(&rec.RequestID, &rec.CustomerID, &rec.Approved, &rec.ProbabilityScore, &rec.IsThinFile, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: result %s", domain.ErrNotFound, requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading result %s: %w", requestID, err)
	}
	return &rec, nil
}

// ListResults returns outcomes for a customer, newest first.
func (s *Store) ListResults(ctx context.Context, customerID string) ([]domain.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, customer_id, approved, probability_score, is_thin_file, created_at
		FROM score_results WHERE customer_id = ? ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing results for %s: %w", customerID, err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var rec domain.ScoreRecord
		if err := rows.Scan(&rec.RequestID, &rec.CustomerID, &rec.Approved, &rec.ProbabilityScore, &rec.IsThinFile, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// AppendAudit records one audit trail entry.
func (s *Store) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	if entry == nil {
		return domain.ErrInvalidInput
	}

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (request_id, customer_id, action, details, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		entry.RequestID, entry.CustomerID, entry.Action, entry.Details, ts)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the audit trail for a request, oldest first.
func (s *Store) ListAudit(ctx context.Context, requestID string) ([]domain.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, customer_id, action, details, timestamp
		FROM audit_log WHERE request_id = ? ORDER BY id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("listing audit for %s: %w", requestID, err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.RequestID, &e.CustomerID, &e.Action, &e.Details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
