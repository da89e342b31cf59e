package domain

import "fmt"

// Decision is the underwriting outcome of a structured answer.
type Decision string

// The four permitted decisions.
const (
	DecisionApprove      Decision = "approve"
	DecisionDecline      Decision = "decline"
	DecisionNeedMoreInfo Decision = "need_more_info"
	DecisionReview       Decision = "review"
)

// IsValid returns true if the decision is one of the enumerated values.
func (d Decision) IsValid() bool {
	switch d {
	case DecisionApprove, DecisionDecline, DecisionNeedMoreInfo, DecisionReview:
		return true
	default:
		return false
	}
}

// ReasonType classifies where a reason comes from.
type ReasonType string

// Permitted reason types.
const (
	ReasonRule   ReasonType = "rule"
	ReasonModel  ReasonType = "model"
	ReasonPolicy ReasonType = "policy"
)

// IsValid returns true if the reason type is recognised.
func (t ReasonType) IsValid() bool {
	switch t {
	case ReasonRule, ReasonModel, ReasonPolicy:
		return true
	default:
		return false
	}
}

// Evidence cites a retrieved document backing a reason.
type Evidence struct {
	DocTitle string  `json:"doc_title"`
	Version  *string `json:"version,omitempty"`
	Section  *string `json:"section,omitempty"`
	Page     *int    `json:"page,omitempty"`
}

// Reason explains one factor behind the decision.
type Reason struct {
	Type     ReasonType `json:"type"`
	Text     string     `json:"text"`
	Evidence []Evidence `json:"evidence"`
}

// StructuredAnswer is the schema-validated decision object produced at
// the end of the pipeline. Partial or best-effort answers are not
// permitted: either the object conforms to the schema or the request
// fails.
type StructuredAnswer struct {
	Summary              string   `json:"summary"`
	Decision             Decision `json:"decision"`
	Reasons              []Reason `json:"reasons"`
	MissingInfo          []string `json:"missing_info"`
	NextActions          []string `json:"next_actions"`
	CustomerMessageDraft *string  `json:"customer_message_draft,omitempty"`
	RiskNote             *string  `json:"risk_note,omitempty"`

	// Sources carries retrieval attribution for the answer. Populated
	// by the query service, not by the model.
	Sources []RetrievalResult `json:"-"`
}

// Validate checks the answer's semantic invariants and returns a
// SchemaError naming every violation, or nil when the answer conforms.
func (a *StructuredAnswer) Validate() error {
	var violations []string

	if a.Summary == "" {
		violations = append(violations, "summary: must not be empty")
	}
	if !a.Decision.IsValid() {
		violations = append(violations, fmt.Sprintf("decision: %q is not one of approve, decline, need_more_info, review", a.Decision))
	}
	for i, r := range a.Reasons {
		if !r.Type.IsValid() {
			violations = append(violations, fmt.Sprintf("reasons[%d].type: %q is not one of rule, model, policy", i, r.Type))
		}
		if r.Text == "" {
			violations = append(violations, fmt.Sprintf("reasons[%d].text: must not be empty", i))
		}
		for j, ev := range r.Evidence {
			if ev.DocTitle == "" {
				violations = append(violations, fmt.Sprintf("reasons[%d].evidence[%d].doc_title: must not be empty", i, j))
			}
		}
	}

	if len(violations) > 0 {
		return &SchemaError{Violations: violations}
	}
	return nil
}
