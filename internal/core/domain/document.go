package domain

import "time"

// Document represents a loaded source document before chunking.
// It is the canonical representation produced by the loader layer and
// is immutable once the indexing pipeline takes ownership of it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Path is the original file location on disk.
	Path string

	// Title is the human-readable title, usually the file name.
	Title string

	// Type is the document type ("text", "pdf", "docx", "xlsx", "csv").
	Type string

	// Content is the full extracted text content before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs attached at load time.
	Metadata map[string]any

	// LoadedAt is when the document was read from disk.
	LoadedAt time.Time
}

// Chunk is a bounded text segment derived from one Document.
// Chunks are the unit of embedding and retrieval. They are created by
// the chunker and never mutated afterwards.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Metadata contains chunk-specific key-value pairs. The indexing
	// pipeline records the source path and the chunk size/overlap the
	// build used.
	Metadata map[string]any
}

// IndexEntry is a chunk paired with its embedding vector as stored in
// a vector index. The embedding dimension is constant for the lifetime
// of one index.
type IndexEntry struct {
	// Chunk is the indexed text segment.
	Chunk Chunk

	// Embedding is the fixed-dimension vector for the chunk content.
	Embedding []float32
}

// RetrievalResult is a scored chunk produced for one query.
// Results are ephemeral and never persisted.
type RetrievalResult struct {
	// Chunk is the retrieved text segment.
	Chunk Chunk

	// Score is the cosine similarity to the query vector (0-1).
	Score float64

	// Rank is the position in the result ordering, starting at 1.
	Rank int
}

// IndexStats is read-only introspection data about a built index.
type IndexStats struct {
	// TotalChunks is the number of entries stored in the index.
	TotalChunks int

	// Backend is the vector store backend type.
	Backend VectorBackend

	// Location is the directory or database path holding the artifacts.
	Location string
}
