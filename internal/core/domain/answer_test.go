package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecision_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		want     bool
	}{
		{"approve", DecisionApprove, true},
		{"decline", DecisionDecline, true},
		{"need_more_info", DecisionNeedMoreInfo, true},
		{"review", DecisionReview, true},
		{"empty", Decision(""), false},
		{"unknown", Decision("maybe"), false},
		{"case sensitive", Decision("Approve"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decision.IsValid())
		})
	}
}

func TestReasonType_IsValid(t *testing.T) {
	assert.True(t, ReasonRule.IsValid())
	assert.True(t, ReasonModel.IsValid())
	assert.True(t, ReasonPolicy.IsValid())
	assert.False(t, ReasonType("heuristic").IsValid())
	assert.False(t, ReasonType("").IsValid())
}

func TestStructuredAnswer_Validate(t *testing.T) {
	valid := StructuredAnswer{
		Summary:  "Applicant meets income requirements.",
		Decision: DecisionApprove,
		Reasons: []Reason{
			{
				Type: ReasonRule,
				Text: "Debt-to-income ratio within policy bounds.",
				Evidence: []Evidence{
					{DocTitle: "Credit Policy Handbook"},
				},
			},
		},
	}

	t.Run("valid answer passes", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("empty summary fails", func(t *testing.T) {
		a := valid
		a.Summary = ""
		err := a.Validate()
		require.Error(t, err)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, schemaErr.Violations[0], "summary")
	})

	t.Run("invalid decision fails", func(t *testing.T) {
		a := valid
		a.Decision = Decision("escalate")
		err := a.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decision")
	})

	t.Run("all violations reported, not just the first", func(t *testing.T) {
		a := StructuredAnswer{
			Summary:  "",
			Decision: Decision("escalate"),
			Reasons: []Reason{
				{Type: ReasonType("vibes"), Text: ""},
			},
		}
		err := a.Validate()
		require.Error(t, err)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Len(t, schemaErr.Violations, 4)
	})

	t.Run("evidence without title fails", func(t *testing.T) {
		a := valid
		a.Reasons = []Reason{
			{
				Type:     ReasonPolicy,
				Text:     "Policy threshold exceeded.",
				Evidence: []Evidence{{DocTitle: ""}},
			},
		}
		err := a.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "doc_title")
	})

	t.Run("empty reasons list is allowed", func(t *testing.T) {
		a := StructuredAnswer{
			Summary:  "Insufficient information to decide.",
			Decision: DecisionNeedMoreInfo,
		}
		require.NoError(t, a.Validate())
	})
}
