// Package sqlitevec provides a vector store backed by a named
// collection in a SQLite database. Embeddings are stored as
// little-endian float32 blobs and scored with a full scan, which keeps
// the backend durable and embeddable without a native vector index.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultCollection is used when no collection name is configured.
const DefaultCollection = "credit_policies"

// Config holds configuration for the SQLite vector store.
type Config struct {
	// Path is the database file location.
	Path string

	// Collection is the named collection inside the database.
	// Opening the same name twice reuses the existing collection.
	Collection string

	// Model is the embedding model the collection was built with.
	Model string
}

// Store is a SQLite-backed vector store.
type Store struct {
	db           *sql.DB
	path         string
	collection   string
	model        string
	collectionID int64
}

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	model TEXT NOT NULL DEFAULT '',
	dimensions INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entries (
	collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	chunk_id TEXT NOT NULL,
	document_id TEXT NOT NULL,
	content TEXT NOT NULL,
	position INTEGER NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	embedding BLOB NOT NULL,
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	UNIQUE (collection_id, chunk_id)
);

CREATE INDEX IF NOT EXISTS idx_entries_collection ON entries(collection_id);
`

// New creates a SQLite vector store. Call Open before use.
func New(cfg Config) *Store {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	return &Store{
		path:       cfg.Path,
		collection: cfg.Collection,
		model:      cfg.Model,
	}
}

// Open connects to the database and gets or creates the collection.
// Opening an existing collection is idempotent.
func (s *Store) Open(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("creating schema: %w", err)
	}

	s.db = db
	if err := s.ensureCollection(ctx); err != nil {
		db.Close()
		s.db = nil
		return err
	}
	return nil
}

// ensureCollection loads the collection row, creating it on first use.
func (s *Store) ensureCollection(ctx context.Context) error {
	var (
		id    int64
		model string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, model FROM collections WHERE name = ?", s.collection,
	).Scan(&id, &model)

	switch {
	case err == sql.ErrNoRows:
		res, err := s.db.ExecContext(ctx,
			"INSERT INTO collections (name, model) VALUES (?, ?)", s.collection, s.model)
		if err != nil {
			return fmt.Errorf("creating collection %q: %w", s.collection, err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("creating collection %q: %w", s.collection, err)
		}
	case err != nil:
		return fmt.Errorf("loading collection %q: %w", s.collection, err)
	default:
		if s.model == "" {
			s.model = model
		}
	}

	s.collectionID = id
	return nil
}

// Model returns the embedding model recorded for this collection.
func (s *Store) Model() string {
	return s.model
}

// Upsert inserts or replaces entries keyed by chunk ID.
func (s *Store) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	dims := s.Dimensions()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (collection_id, chunk_id, document_id, content, position, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection_id, chunk_id) DO UPDATE SET
			document_id = excluded.document_id,
			content = excluded.content,
			position = excluded.position,
			metadata = excluded.metadata,
			embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if len(e.Embedding) == 0 {
			return fmt.Errorf("%w: empty embedding for chunk %s", domain.ErrInvalidInput, e.Chunk.ID)
		}
		if dims == 0 {
			dims = len(e.Embedding)
		}
		if len(e.Embedding) != dims {
			return fmt.Errorf("%w: got %d, collection has %d", domain.ErrDimensionMismatch, len(e.Embedding), dims)
		}

		metadata, err := json.Marshal(e.Chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for chunk %s: %w", e.Chunk.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			s.collectionID, e.Chunk.ID, e.Chunk.DocumentID, e.Chunk.Content,
			e.Chunk.Position, string(metadata), float32SliceToBytes(e.Embedding),
		); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", e.Chunk.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE collections SET dimensions = ? WHERE id = ?", dims, s.collectionID); err != nil {
		return fmt.Errorf("recording dimensions: %w", err)
	}

	return tx.Commit()
}

// Search scans the collection and returns the topK entries by cosine
// similarity, ties broken by insertion order.
func (s *Store) Search(ctx context.Context, query []float32, topK int) ([]domain.RetrievalResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	dims := s.Dimensions()
	if dims == 0 {
		return nil, nil
	}
	if len(query) != dims {
		return nil, fmt.Errorf("%w: query has %d, collection has %d", domain.ErrDimensionMismatch, len(query), dims)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, content, position, metadata, embedding
		FROM entries WHERE collection_id = ? ORDER BY seq`, s.collectionID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievalResult
	for rows.Next() {
		var (
			chunk        domain.Chunk
			metadataJSON string
			blob         []byte
		)
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.Position, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if metadataJSON != "" && metadataJSON != "null" {
			if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("parsing metadata for chunk %s: %w", chunk.ID, err)
			}
		}

		results = append(results, domain.RetrievalResult{
			Chunk: chunk,
			Score: cosineSimilarity(query, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
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

// Persist is a no-op; SQLite writes are durable at commit.
func (s *Store) Persist(_ context.Context) error {
	return nil
}

// Reset drops all entries in the collection. Other collections in the
// same database are untouched.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM entries WHERE collection_id = ?", s.collectionID); err != nil {
		return fmt.Errorf("resetting collection %q: %w", s.collection, err)
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE collections SET dimensions = 0 WHERE id = ?", s.collectionID); err != nil {
		return fmt.Errorf("resetting collection %q: %w", s.collection, err)
	}
	return nil
}

// Count returns the number of entries in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE collection_id = ?", s.collectionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

// Dimensions returns the recorded embedding dimension, or 0 when the
// collection is empty.
func (s *Store) Dimensions() int {
	var dims int
	err := s.db.QueryRow(
		"SELECT dimensions FROM collections WHERE id = ?", s.collectionID).Scan(&dims)
	if err != nil {
		return 0
	}
	return dims
}

// Location returns the database file path.
func (s *Store) Location() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
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
