package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNoDocuments indicates the documents directory is empty or
	// missing. Callers may seed sample content or abort; the core never
	// treats this as fatal.
	ErrNoDocuments = errors.New("no documents found")

	// ErrIndexNotFound indicates no persisted index exists at the
	// configured location. Recoverable: it signals "build needed".
	ErrIndexNotFound = errors.New("index not found")

	// ErrDimensionMismatch indicates a persisted index was built with an
	// embedding model of a different dimension than the configured one.
	// Querying across dimensions silently degrades retrieval, so the
	// mismatch is surfaced at load time instead.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNoJSONFound indicates the model output contains no
	// brace-delimited JSON object.
	ErrNoJSONFound = errors.New("no JSON object found in model output")

	// ErrMalformedJSON indicates the extracted JSON substring failed to
	// parse. Malformed output is never repaired or coerced.
	ErrMalformedJSON = errors.New("malformed JSON in model output")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// FailureKind classifies an external service failure into one of a
// fixed set of user-actionable categories. The mapping is total: every
// error reaching the service boundary is classified.
type FailureKind string

// Failure kinds for embedding and language-model service errors.
const (
	// FailureUnreachable means the model server refused the connection
	// or is unreachable at the configured address.
	FailureUnreachable FailureKind = "service_unreachable"

	// FailureTimeout means the request exceeded the configured timeout.
	FailureTimeout FailureKind = "service_timeout"

	// FailureModelNotFound means the endpoint returned 404 for the
	// named model.
	FailureModelNotFound FailureKind = "model_not_found"

	// FailureHTTP means the endpoint returned a non-404 error status.
	FailureHTTP FailureKind = "service_error"

	// FailureUnknown is the generic fallback for anything else.
	FailureUnknown FailureKind = "unknown_service_failure"
)

// ServiceFailure is a translated external service error. The message
// names the probable cause and the next diagnostic step, never a raw
// transport error or a secret.
type ServiceFailure struct {
	// Kind is the failure classification.
	Kind FailureKind

	// Endpoint is the configured service address (with credentials
	// stripped), for diagnosis.
	Endpoint string

	// Model is the model name involved, if relevant.
	Model string

	// Status is the HTTP status code for FailureHTTP/FailureModelNotFound.
	Status int

	// Err is the underlying cause, kept for errors.Is/As chains.
	Err error
}

// Error returns the user-actionable message for the failure.
func (f *ServiceFailure) Error() string {
	switch f.Kind {
	case FailureUnreachable:
		return fmt.Sprintf("cannot reach model server at %s: verify the server is running and the address is correct", f.Endpoint)
	case FailureTimeout:
		return fmt.Sprintf("model server at %s timed out: check responsiveness and retry", f.Endpoint)
	case FailureModelNotFound:
		return fmt.Sprintf("model %q is not available at %s: pull the model or fix the configured name", f.Model, f.Endpoint)
	case FailureHTTP:
		return fmt.Sprintf("model server at %s returned status %d: check the server logs", f.Endpoint, f.Status)
	default:
		return fmt.Sprintf("unexpected failure talking to %s: check configuration and server logs", f.Endpoint)
	}
}

// Unwrap returns the underlying cause.
func (f *ServiceFailure) Unwrap() error {
	return f.Err
}

// IsFailureKind reports whether err is a ServiceFailure of the given kind.
func IsFailureKind(err error, kind FailureKind) bool {
	var sf *ServiceFailure
	return errors.As(err, &sf) && sf.Kind == kind
}

// SchemaError reports a structured answer that does not conform to the
// answer schema. Every failing field is listed, not just the first.
// Schema violations are hard failures: a credit decision must never be
// inferred from malformed data.
type SchemaError struct {
	// Violations describes each failing field.
	Violations []string
}

// Error lists all violations.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("structured answer violates schema: %s", strings.Join(e.Violations, "; "))
}
