package driving

import (
	"context"

	"github.com/credostack/underwrite/internal/core/domain"
)

// ScoringService produces rule-based credit decisions. It is
// independent of the retrieval pipeline; the query service may embed
// its output in prompts as decision context.
type ScoringService interface {
	// Score merges features, runs the rule model, persists the result,
	// and returns the classification.
	Score(ctx context.Context, req *domain.ScoringRequest) (*domain.ScoringResponse, error)

	// GetResult looks up a previously persisted outcome.
	GetResult(ctx context.Context, requestID string) (*domain.ScoreRecord, error)
}
