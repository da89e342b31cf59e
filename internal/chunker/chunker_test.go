package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credostack/underwrite/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		assert.Equal(t, DefaultChunkSize, s.ChunkSize())
		assert.Equal(t, DefaultChunkOverlap, s.Overlap())
	})

	t.Run("custom values", func(t *testing.T) {
		s := New(WithChunkSize(1024), WithOverlap(20))
		assert.Equal(t, 1024, s.ChunkSize())
		assert.Equal(t, 20, s.Overlap())
	})

	t.Run("overlap must stay below chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		assert.Less(t, s.Overlap(), s.ChunkSize())
	})

	t.Run("overlap clamped below half the chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(99))
		assert.Less(t, s.Overlap()*2, s.ChunkSize())
	})

	t.Run("zero and negative values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1))
		assert.Equal(t, DefaultChunkSize, s.ChunkSize())
		assert.Equal(t, DefaultChunkOverlap, s.Overlap())
	})
}

func testDoc(content string) *domain.Document {
	return &domain.Document{
		ID:      "doc-1",
		Path:    "/corpus/policy.txt",
		Title:   "policy.txt",
		Content: content,
	}
}

func TestSplitter_Split_Empty(t *testing.T) {
	s := New()
	assert.Nil(t, s.Split(testDoc("")))
	assert.Nil(t, s.Split(nil))
}

func TestSplitter_SplitAll_NoDocuments(t *testing.T) {
	s := New()
	chunks := s.SplitAll(nil)
	require.NotNil(t, chunks)
	assert.Empty(t, chunks)
}

func TestSplitter_Split_Bounds(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "Sentence number %d has a few words in it. ", i)
	}

	s := New(WithChunkSize(200), WithOverlap(20))
	chunks := s.Split(testDoc(b.String()))
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 200, "chunk %d exceeds max size", i)
		assert.Equal(t, i, c.Position)
		assert.Equal(t, "doc-1", c.DocumentID)
		assert.Equal(t, fmt.Sprintf("doc-1:%d", i), c.ID)
	}
}

func TestSplitter_Split_BoundsNearMaxOverlap(t *testing.T) {
	// An overlap one below the chunk size would leave no room for new
	// content; the clamp must keep every chunk within the size limit.
	var b strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "Short sentence %d here. ", i)
	}

	s := New(WithChunkSize(100), WithOverlap(99))
	chunks := s.Split(testDoc(b.String()))
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 100, "chunk %d exceeds max size", i)
	}
}

func TestSplitter_Split_NoMidWordBreaks(t *testing.T) {
	// A single long sentence forces hard cuts, which must still land on
	// word boundaries.
	words := strings.Repeat("underwriting ", 100)
	s := New(WithChunkSize(120), WithOverlap(0))
	chunks := s.Split(testDoc(strings.TrimSpace(words)))
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		for _, w := range strings.Fields(c.Content) {
			assert.Equal(t, "underwriting", w)
		}
	}
}

func TestSplitter_Split_Reconstruction(t *testing.T) {
	content := "The policy requires proof of income. Applicants over the debt threshold are declined. Thin files go to manual review. All decisions are logged."

	s := New(WithChunkSize(60), WithOverlap(0))
	chunks := s.Split(testDoc(content))
	require.Greater(t, len(chunks), 1)

	var parts []string
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}
	joined := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	want := strings.Join(strings.Fields(content), " ")
	assert.Equal(t, want, joined)
}

func TestSplitter_Split_OverlapSharedText(t *testing.T) {
	content := "First sentence about credit policy limits. Second sentence about debt ratios and thresholds. Third sentence about required documentation here. Fourth sentence about appeal handling steps."

	s := New(WithChunkSize(100), WithOverlap(30))
	chunks := s.Split(testDoc(content))
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		cur := chunks[i].Content
		shared := commonOverlap(prev, cur)
		assert.NotEmpty(t, shared, "chunks %d and %d share no overlap", i-1, i)
	}
}

// commonOverlap returns the longest string that is both a suffix of a
// and a prefix of b.
func commonOverlap(a, b string) string {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(a, b[:n]) {
			return b[:n]
		}
	}
	return ""
}

func TestSplitter_Split_Deterministic(t *testing.T) {
	content := "Determinism matters for reproducible indexes. The same input must yield the same chunks. Every time. No randomness is allowed in this path."

	s := New(WithChunkSize(80), WithOverlap(16))
	first := s.Split(testDoc(content))
	second := s.Split(testDoc(content))

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestSplitter_Split_Metadata(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(10))
	chunks := s.Split(testDoc("A short document."))
	require.Len(t, chunks, 1)

	md := chunks[0].Metadata
	assert.Equal(t, "/corpus/policy.txt", md["source"])
	assert.Equal(t, "policy.txt", md["doc_title"])
	assert.Equal(t, 100, md["chunk_size"])
	assert.Equal(t, 10, md["chunk_overlap"])
}
