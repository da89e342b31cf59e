package domain

import "time"

// Demographics describes the applicant.
type Demographics struct {
	Age              int    `json:"age" binding:"required,gte=18,lte=120"`
	EmploymentStatus string `json:"employment_status" binding:"required"`
	EducationLevel   string `json:"education_level"`
	MaritalStatus    string `json:"marital_status"`
}

// Financials describes the applicant's income picture.
type Financials struct {
	MonthlyIncome   float64 `json:"monthly_income" binding:"gte=0"`
	MonthlyExpenses float64 `json:"monthly_expenses" binding:"gte=0"`
	ExistingDebt    float64 `json:"existing_debt" binding:"gte=0"`
}

// LoanRequest describes the requested loan.
type LoanRequest struct {
	LoanAmount     float64 `json:"loan_amount" binding:"required,gt=0"`
	LoanTermMonths int     `json:"loan_term_months" binding:"required,gt=0,lte=360"`
	LoanPurpose    string  `json:"loan_purpose" binding:"required"`
}

// ScoringRequest is the strict inbound payload for a scoring decision.
type ScoringRequest struct {
	RequestID    string       `json:"request_id" binding:"required"`
	CustomerID   string       `json:"customer_id" binding:"required"`
	Demographics Demographics `json:"demographics" binding:"required"`
	Financials   Financials   `json:"financials" binding:"required"`
	LoanDetails  LoanRequest  `json:"loan_details" binding:"required"`
}

// CustomerFeatures is the merged feature set for one applicant,
// combining request data with historical records. A thin file is a
// customer with no prior history, handled via imputed defaults.
type CustomerFeatures struct {
	HistoricalDefaults         int
	CreditBureauScore          int
	IsThinFile                 bool
	MonthsSinceLastDelinquency int
}

// ScoreExplanations carries per-feature attribution for a decision.
type ScoreExplanations struct {
	IsThinFile    bool               `json:"is_thin_file"`
	Contributions map[string]float64 `json:"contributions"`
}

// ScoringResponse is the outbound classification result.
type ScoringResponse struct {
	RequestID        string            `json:"request_id"`
	Approved         bool              `json:"approved"`
	ProbabilityScore float64           `json:"probability_score"`
	Explanations     ScoreExplanations `json:"explanations"`
}

// ScoreRecord is a persisted scoring outcome.
type ScoreRecord struct {
	RequestID        string
	CustomerID       string
	Approved         bool
	ProbabilityScore float64
	IsThinFile       bool
	CreatedAt        time.Time
}

// AuditEntry is one row in the scoring audit trail.
type AuditEntry struct {
	RequestID  string
	CustomerID string
	Action     string
	Details    string
	Timestamp  time.Time
}
