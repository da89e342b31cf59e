package driving

import (
	"context"

	"github.com/credostack/underwrite/internal/core/domain"
)

// QueryOptions configures a single question against the index.
type QueryOptions struct {
	// TopK is the number of chunks to retrieve (0 uses the configured default).
	TopK int

	// Mode is the response synthesis strategy ("" uses the configured default).
	Mode domain.ResponseMode

	// IncludeSources attaches retrieval attribution to the answer.
	IncludeSources bool
}

// QueryService answers underwriting questions from the indexed corpus
// and returns schema-validated structured answers.
type QueryService interface {
	// Query retrieves context for the question, synthesizes a response,
	// and extracts the structured answer. Service failures surface as
	// domain.ServiceFailure; schema violations are hard failures.
	Query(ctx context.Context, question string, opts QueryOptions) (*domain.StructuredAnswer, error)
}

// ChatService holds a stateful conversation over the index.
type ChatService interface {
	// Send processes one user turn and returns the assistant reply.
	Send(ctx context.Context, message string) (string, error)

	// Mode returns the active chat mode.
	Mode() domain.ChatMode

	// Reset clears the conversation history.
	Reset()
}
