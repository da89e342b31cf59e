// Package ai creates the embedding and language-model service
// adapters and translates their transport failures into the stable
// failure taxonomy. Translation happens here, at the single service
// boundary, instead of per call site.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"github.com/credostack/underwrite/internal/core/domain"
)

// StatusError carries a non-2xx HTTP status from a model endpoint so
// the translator can classify it. Adapters return it instead of
// formatting ad-hoc error strings.
type StatusError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// Translate classifies err into a domain.ServiceFailure. The mapping
// is total: any error reaching this boundary comes back as one of the
// fixed failure kinds, with the endpoint scrubbed of credentials.
// A nil err translates to nil.
func Translate(err error, endpoint, model string) error {
	if err == nil {
		return nil
	}

	// Already translated failures pass through unchanged.
	var existing *domain.ServiceFailure
	if errors.As(err, &existing) {
		return err
	}

	scrubbed := scrubEndpoint(endpoint)
	failure := &domain.ServiceFailure{
		Kind:     domain.FailureUnknown,
		Endpoint: scrubbed,
		Model:    model,
		Err:      err,
	}

	var statusErr *StatusError
	var netErr net.Error

	switch {
	case errors.As(err, &statusErr):
		failure.Status = statusErr.Status
		if statusErr.Status == http.StatusNotFound {
			failure.Kind = domain.FailureModelNotFound
		} else {
			failure.Kind = domain.FailureHTTP
		}

	case errors.Is(err, context.DeadlineExceeded):
		failure.Kind = domain.FailureTimeout

	case errors.As(err, &netErr) && netErr.Timeout():
		failure.Kind = domain.FailureTimeout

	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH),
		isDNSFailure(err):
		failure.Kind = domain.FailureUnreachable
	}

	return failure
}

// isDNSFailure reports whether err stems from name resolution.
func isDNSFailure(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// scrubEndpoint removes credentials and query parameters from a
// configured address so failure messages never leak secrets.
func scrubEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		// Unparseable input: keep only the part before any query.
		if idx := strings.IndexByte(endpoint, '?'); idx >= 0 {
			return endpoint[:idx]
		}
		return endpoint
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
