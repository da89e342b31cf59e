package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
	"github.com/credostack/underwrite/internal/logger"
)

// DefaultSimilarityCutoff drops weakly related chunks after search.
const DefaultSimilarityCutoff = 0.7

// DefaultTopK is the retrieval depth when the caller passes zero.
const DefaultTopK = 4

// RetrieverService embeds a query and returns the relevant chunks
// above the similarity cutoff. An empty result is "no relevant
// context", not an error.
type RetrieverService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	cutoff   float64
	topK     int
}

// RetrieverConfig holds retriever tuning.
type RetrieverConfig struct {
	// SimilarityCutoff drops results scoring below it (default 0.7).
	// Negative disables the cutoff.
	SimilarityCutoff float64

	// TopK is the default retrieval depth (default 4).
	TopK int
}

// NewRetrieverService creates a retriever over the given store.
func NewRetrieverService(embedder driven.EmbeddingService, store driven.VectorStore, cfg RetrieverConfig) *RetrieverService {
	if cfg.SimilarityCutoff == 0 {
		cfg.SimilarityCutoff = DefaultSimilarityCutoff
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &RetrieverService{
		embedder: embedder,
		store:    store,
		cutoff:   cfg.SimilarityCutoff,
		topK:     cfg.TopK,
	}
}

// Retrieve embeds the query, searches the store, and applies the
// similarity cutoff. Ranks are reassigned after filtering.
func (s *RetrieverService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.topK
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Retrieved %d candidates for %q", len(results), query)

	filtered := results[:0]
	for _, r := range results {
		if r.Score < s.cutoff {
			continue
		}
		filtered = append(filtered, r)
	}
	for i := range filtered {
		filtered[i].Rank = i + 1
	}

	if len(filtered) < len(results) {
		logger.Debug("Similarity cutoff %.2f dropped %d results", s.cutoff, len(results)-len(filtered))
	}
	return filtered, nil
}
