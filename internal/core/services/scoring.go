package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
	"github.com/credostack/underwrite/internal/core/ports/driving"
	"github.com/credostack/underwrite/internal/logger"
)

// Ensure ScoringSvc implements the interface.
var _ driving.ScoringService = (*ScoringSvc)(nil)

// Approval threshold and probability clamp bounds for the rule model.
const (
	approvalThreshold = 0.6
	minProbability    = 0.01
	maxProbability    = 0.99
)

// ScoringSvc produces rule-based credit decisions: merge applicant
// features with historical records, run the rule model, persist the
// outcome with an audit trail.
type ScoringSvc struct {
	store driven.ScoreStore
}

// NewScoringService creates a scoring service over the given store.
func NewScoringService(store driven.ScoreStore) *ScoringSvc {
	return &ScoringSvc{store: store}
}

// Score runs the full decision flow for one request.
func (s *ScoringSvc) Score(ctx context.Context, req *domain.ScoringRequest) (*domain.ScoringResponse, error) {
	if req == nil {
		return nil, domain.ErrInvalidInput
	}
	logger.Section("Scoring")
	logger.Info("Scoring request %s for customer %s", req.RequestID, req.CustomerID)

	features := s.mergeFeatures(req.CustomerID)
	resp := runRuleModel(features, req)

	rec := &domain.ScoreRecord{
		RequestID:        req.RequestID,
		CustomerID:       req.CustomerID,
		Approved:         resp.Approved,
		ProbabilityScore: resp.ProbabilityScore,
		IsThinFile:       features.IsThinFile,
		CreatedAt:        time.Now(),
	}
	if err := s.store.SaveResult(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	if err := s.store.AppendAudit(ctx, &domain.AuditEntry{
		RequestID:  req.RequestID,
		CustomerID: req.CustomerID,
		Action:     "scored",
		Details:    fmt.Sprintf("approved=%t probability=%.2f thin_file=%t", resp.Approved, resp.ProbabilityScore, features.IsThinFile),
	}); err != nil {
		return nil, fmt.Errorf("append audit: %w", err)
	}

	return resp, nil
}

// GetResult looks up a previously persisted outcome.
func (s *ScoringSvc) GetResult(ctx context.Context, requestID string) (*domain.ScoreRecord, error) {
	return s.store.GetResult(ctx, requestID)
}

// mergeFeatures combines the request with historical records. A
// customer with no history is a thin file and gets imputed baselines;
// unknown counters are recorded as -1.
func (s *ScoringSvc) mergeFeatures(customerID string) domain.CustomerFeatures {
	if strings.Contains(strings.ToLower(customerID), "existing") {
		return domain.CustomerFeatures{
			HistoricalDefaults:         0,
			CreditBureauScore:          750,
			IsThinFile:                 false,
			MonthsSinceLastDelinquency: 36,
		}
	}
	return domain.CustomerFeatures{
		HistoricalDefaults:         -1,
		CreditBureauScore:          600,
		IsThinFile:                 true,
		MonthsSinceLastDelinquency: -1,
	}
}

// runRuleModel is the rule-based stand-in for a trained model. The
// heuristics mirror what a model would learn: income-to-loan coverage,
// bureau score bands, and a thin-file penalty.
func runRuleModel(features domain.CustomerFeatures, req *domain.ScoringRequest) *domain.ScoringResponse {
	income := req.Financials.MonthlyIncome
	loan := req.LoanDetails.LoanAmount

	prob := 0.5

	if income > loan/24 {
		prob += 0.2
	}

	switch {
	case features.CreditBureauScore > 700:
		prob += 0.2
	case features.CreditBureauScore < 650:
		prob -= 0.2
	}

	if features.IsThinFile {
		prob -= 0.15
	}

	if prob < minProbability {
		prob = minProbability
	}
	if prob > maxProbability {
		prob = maxProbability
	}

	incomeImpact := 0.15
	if prob <= 0.5 {
		incomeImpact = -0.15
	}
	bureauImpact := 0.1
	if features.CreditBureauScore <= 650 {
		bureauImpact = -0.1
	}
	thinFilePenalty := 0.0
	if features.IsThinFile {
		thinFilePenalty = -0.15
	}

	return &domain.ScoringResponse{
		RequestID:        req.RequestID,
		Approved:         prob > approvalThreshold,
		ProbabilityScore: prob,
		Explanations: domain.ScoreExplanations{
			IsThinFile: features.IsThinFile,
			Contributions: map[string]float64{
				"income_ratio":        incomeImpact,
				"bureau_score_impact": bureauImpact,
				"thin_file_penalty":   thinFilePenalty,
			},
		},
	}
}
