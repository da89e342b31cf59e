package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceFailure_Error(t *testing.T) {
	tests := []struct {
		name    string
		failure ServiceFailure
		want    string
	}{
		{
			name:    "unreachable names the endpoint",
			failure: ServiceFailure{Kind: FailureUnreachable, Endpoint: "http://localhost:11434"},
			want:    "verify the server is running",
		},
		{
			name:    "timeout suggests retry",
			failure: ServiceFailure{Kind: FailureTimeout, Endpoint: "http://localhost:11434"},
			want:    "timed out",
		},
		{
			name:    "model not found names the model",
			failure: ServiceFailure{Kind: FailureModelNotFound, Endpoint: "http://localhost:11434", Model: "qwen3:8b"},
			want:    `model "qwen3:8b"`,
		},
		{
			name:    "http error reports status",
			failure: ServiceFailure{Kind: FailureHTTP, Endpoint: "http://localhost:11434", Status: 500},
			want:    "status 500",
		},
		{
			name:    "unknown is a generic fallback",
			failure: ServiceFailure{Kind: FailureUnknown, Endpoint: "http://localhost:11434"},
			want:    "unexpected failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.failure.Error(), tt.want)
		})
	}
}

func TestServiceFailure_NeverLeaksCause(t *testing.T) {
	raw := errors.New("dial tcp 127.0.0.1:11434: connect: connection refused (Authorization: Bearer sk-secret)")
	f := &ServiceFailure{Kind: FailureUnreachable, Endpoint: "http://localhost:11434", Err: raw}

	assert.NotContains(t, f.Error(), "sk-secret")
	assert.NotContains(t, f.Error(), "dial tcp")
	// Cause stays reachable for errors.Is chains.
	assert.ErrorIs(t, f, raw)
}

func TestIsFailureKind(t *testing.T) {
	f := &ServiceFailure{Kind: FailureTimeout, Endpoint: "http://localhost:11434"}
	wrapped := fmt.Errorf("synthesize: %w", f)

	assert.True(t, IsFailureKind(wrapped, FailureTimeout))
	assert.False(t, IsFailureKind(wrapped, FailureUnreachable))
	assert.False(t, IsFailureKind(errors.New("plain"), FailureTimeout))
}

func TestSchemaError_ListsEveryViolation(t *testing.T) {
	err := &SchemaError{Violations: []string{"summary: missing", "decision: bad"}}
	require.Contains(t, err.Error(), "summary: missing")
	require.Contains(t, err.Error(), "decision: bad")
}
