// Package chunker splits document content into overlapping text chunks
// suitable for embedding.
package chunker

import (
	"fmt"
	"strings"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/logger"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 512

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 80

// Splitter splits documents into bounded, overlapping chunks. It
// prefers sentence boundaries and falls back to hard character cuts
// only for oversized sentences. Splitting is deterministic: identical
// input and settings always produce identical chunks and chunk IDs,
// which keeps rebuilt indexes reproducible.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// The overlap must leave room for fresh content in every chunk,
	// or the overlap prefix alone would exhaust the size limit.
	if s.overlap*2 >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured maximum chunk size.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// SplitAll splits every document in order. An empty input logs a
// warning and returns an empty slice rather than failing.
func (s *Splitter) SplitAll(docs []domain.Document) []domain.Chunk {
	if len(docs) == 0 {
		logger.Warn("Chunker: no input documents")
		return []domain.Chunk{}
	}

	var chunks []domain.Chunk
	for i := range docs {
		chunks = append(chunks, s.Split(&docs[i])...)
	}
	return chunks
}

// Split splits one document into chunks. Chunk IDs derive from the
// document ID and position so rebuilds of the same corpus produce the
// same IDs.
func (s *Splitter) Split(doc *domain.Document) []domain.Chunk {
	if doc == nil || doc.Content == "" {
		return nil
	}

	sentences := splitSentences(doc.Content)
	segments := s.packSentences(sentences)

	chunks := make([]domain.Chunk, 0, len(segments))
	prev := ""
	for position, segment := range segments {
		content := segment
		if position > 0 && s.overlap > 0 {
			content = overlapTail(prev, s.overlap) + " " + segment
		}
		chunks = append(chunks, domain.Chunk{
			ID:         fmt.Sprintf("%s:%d", doc.ID, position),
			DocumentID: doc.ID,
			Content:    content,
			Position:   position,
			Metadata: map[string]any{
				"source":        doc.Path,
				"doc_title":     doc.Title,
				"chunk_size":    s.chunkSize,
				"chunk_overlap": s.overlap,
			},
		})
		prev = segment
	}

	return chunks
}

// packSentences groups sentences into segments of at most
// chunkSize-overlap characters, leaving room for the overlap prefix
// added afterwards. Sentences longer than the budget are hard-cut.
func (s *Splitter) packSentences(sentences []string) []string {
	budget := s.chunkSize - s.overlap
	if s.overlap > 0 {
		budget-- // separator between overlap prefix and segment
	}

	var segments []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
	}

	for _, sentence := range sentences {
		if len(sentence) > budget {
			flush()
			for _, piece := range hardCut(sentence, budget) {
				segments = append(segments, piece)
			}
			continue
		}

		needed := len(sentence)
		if current.Len() > 0 {
			needed += 1 // joining space
		}
		if current.Len()+needed > budget {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()

	return segments
}

// hardCut slices an oversized sentence into size-bounded pieces,
// backing up to the nearest space to avoid mid-word breaks when one
// exists in the window.
func hardCut(text string, size int) []string {
	var pieces []string
	for len(text) > size {
		cut := size
		if idx := strings.LastIndexByte(text[:size], ' '); idx > size/2 {
			cut = idx
		}
		pieces = append(pieces, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}

// overlapTail returns up to n trailing characters of text, extended
// left to the nearest word boundary.
func overlapTail(text string, n int) string {
	if len(text) <= n {
		return text
	}
	tail := text[len(text)-n:]
	if idx := strings.IndexByte(tail, ' '); idx >= 0 {
		tail = tail[idx+1:]
	}
	return tail
}

// splitSentences splits content into sentences by common terminators.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
