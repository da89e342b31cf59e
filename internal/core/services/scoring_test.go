package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credostack/underwrite/internal/core/domain"
)

func scoringRequest(requestID, customerID string, income, loan float64) *domain.ScoringRequest {
	return &domain.ScoringRequest{
		RequestID:  requestID,
		CustomerID: customerID,
		Demographics: domain.Demographics{
			Age:              34,
			EmploymentStatus: "employed",
		},
		Financials: domain.Financials{
			MonthlyIncome:   income,
			MonthlyExpenses: 1200,
		},
		LoanDetails: domain.LoanRequest{
			LoanAmount:     loan,
			LoanTermMonths: 48,
			LoanPurpose:    "auto",
		},
	}
}

func TestScore_KnownCustomerHighIncomeApproved(t *testing.T) {
	store := newMockScoreStore()
	svc := NewScoringService(store)

	// Known customer: bureau 750 (+0.2), income covers loan/24 (+0.2).
	resp, err := svc.Score(context.Background(), scoringRequest("req-1", "existing-42", 5000, 24000))
	require.NoError(t, err)

	assert.True(t, resp.Approved)
	assert.InDelta(t, 0.9, resp.ProbabilityScore, 1e-9)
	assert.False(t, resp.Explanations.IsThinFile)
	assert.Equal(t, 0.0, resp.Explanations.Contributions["thin_file_penalty"])
}

func TestScore_ThinFileNewCustomer(t *testing.T) {
	store := newMockScoreStore()
	svc := NewScoringService(store)

	// New customer: bureau 600 (-0.2), thin file (-0.15), good income (+0.2).
	resp, err := svc.Score(context.Background(), scoringRequest("req-2", "cust-99", 5000, 24000))
	require.NoError(t, err)

	assert.False(t, resp.Approved)
	assert.InDelta(t, 0.35, resp.ProbabilityScore, 1e-9)
	assert.True(t, resp.Explanations.IsThinFile)
	assert.Equal(t, -0.15, resp.Explanations.Contributions["thin_file_penalty"])
}

func TestScore_BorderlineNotApproved(t *testing.T) {
	store := newMockScoreStore()
	svc := NewScoringService(store)

	// Known customer, weak income: 0.5 + 0.2 (bureau) = 0.7 > 0.6 approved.
	resp, err := svc.Score(context.Background(), scoringRequest("req-3", "existing-1", 100, 24000))
	require.NoError(t, err)
	assert.True(t, resp.Approved)
	assert.InDelta(t, 0.7, resp.ProbabilityScore, 1e-9)

	// New customer, weak income: 0.5 - 0.2 - 0.15 = 0.15.
	resp, err = svc.Score(context.Background(), scoringRequest("req-4", "cust-2", 100, 24000))
	require.NoError(t, err)
	assert.False(t, resp.Approved)
	assert.InDelta(t, 0.15, resp.ProbabilityScore, 1e-9)
}

func TestScore_ProbabilityClamped(t *testing.T) {
	resp := runRuleModel(domain.CustomerFeatures{CreditBureauScore: 400, IsThinFile: true}, scoringRequest("req", "c", 0, 100000))
	assert.GreaterOrEqual(t, resp.ProbabilityScore, 0.01)
	assert.LessOrEqual(t, resp.ProbabilityScore, 0.99)
}

func TestScore_PersistsResultAndAudit(t *testing.T) {
	store := newMockScoreStore()
	svc := NewScoringService(store)

	resp, err := svc.Score(context.Background(), scoringRequest("req-5", "existing-7", 5000, 24000))
	require.NoError(t, err)

	rec, err := svc.GetResult(context.Background(), "req-5")
	require.NoError(t, err)
	assert.Equal(t, resp.Approved, rec.Approved)
	assert.InDelta(t, resp.ProbabilityScore, rec.ProbabilityScore, 1e-9)
	assert.False(t, rec.CreatedAt.IsZero())

	require.Len(t, store.audits, 1)
	assert.Equal(t, "scored", store.audits[0].Action)
	assert.Contains(t, store.audits[0].Details, "approved=true")
}

func TestScore_NilRequest(t *testing.T) {
	svc := NewScoringService(newMockScoreStore())
	_, err := svc.Score(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetResult_NotFound(t *testing.T) {
	svc := NewScoringService(newMockScoreStore())
	_, err := svc.GetResult(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
