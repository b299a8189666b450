// Package registry implements the one-Fetcher-per-external-registry layer
// described in spec.md §4.5: FDA, EWG, CIR, SCCS, ICCR, PubChem, and
// INCI Beauty, each mapping a registry-native response into a uniform
// safety.RegistryFragment. Every Fetcher is invoked through the
// Resilience Layer (internal/resilience) and is a pure function of
// (canonical_name, config) modulo the network call itself.
package registry

import (
	"errors"
	"net/http"
	"time"

	"github.com/ingredient-intel/iie/internal/resilience"
	apperrors "github.com/ingredient-intel/iie/pkg/errors"
)

// notFound, transientErr, and permanentErr build the three outcomes a
// Fetcher's contract allows besides a successful fragment (spec.md §4.5:
// "RegistryFragment | NotFound | TransientError | PermanentError").
func notFound(registryID, name string) error {
	return apperrors.New(apperrors.CodeRegistryNotFound, registryID+": no record for "+name)
}

func transientErr(registryID string, cause error) error {
	return apperrors.Wrap(cause, apperrors.CodeRegistryTransient, registryID+": transient failure")
}

func permanentErr(registryID string, cause error) error {
	return apperrors.Wrap(cause, apperrors.CodeRegistryPermanent, registryID+": permanent failure")
}

// classifyHTTPError turns a transport error or HTTP status into the
// Classification the Resilience Layer's retry loop needs: transport
// errors, 5xx, and 408/429 are retryable; other 4xx are not
// (spec.md §4.4).
func classifyHTTPError(err error) resilience.Classification {
	if err == nil {
		return resilience.Classification{}
	}
	// The fetchers hand statusError over wrapped in transientErr/permanentErr,
	// so it is looked up through the error chain.
	var se *statusError
	if errors.As(err, &se) {
		if se.statusCode == http.StatusTooManyRequests {
			return resilience.Classification{Retryable: true, RetryAfter: se.retryAfter}
		}
		if se.statusCode == http.StatusRequestTimeout || se.statusCode >= 500 {
			return resilience.Classification{Retryable: true}
		}
		return resilience.Classification{Retryable: false}
	}
	// A 404 arrives as notFound and other non-retryable 4xx as permanentErr.
	if apperrors.IsCode(err, apperrors.CodeRegistryNotFound) || apperrors.IsCode(err, apperrors.CodeRegistryPermanent) {
		return resilience.Classification{Retryable: false}
	}
	// Anything else (DNS failure, connection refused, context deadline) is
	// a transport-level error and is retried.
	return resilience.Classification{Retryable: true}
}

// statusError carries an HTTP response's status code and, for 429s, any
// Retry-After duration, so classifyHTTPError can apply spec.md §4.4's
// retry rules without re-parsing headers.
type statusError struct {
	statusCode int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return http.StatusText(e.statusCode)
}
