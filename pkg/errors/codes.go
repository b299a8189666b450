// Package errors provides centralized error code definitions for the
// Ingredient Intelligence Engine. All error codes are grouped by business
// domain and mapped to HTTP status codes.
package errors

import "net/http"

// ErrorCode represents a typed error code used throughout the Ingredient
// Intelligence Engine. Codes are partitioned by domain to avoid conflicts
// and simplify maintenance.
type ErrorCode int

// ─────────────────────────────────────────────────────────────────────────────
// General / cross-cutting error codes  (1xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeOK indicates no error.
	CodeOK ErrorCode = 0

	// CodeUnknown is a catch-all for errors that have not been categorised.
	CodeUnknown ErrorCode = 10000

	// CodeInvalidParam is returned when one or more request parameters fail
	// validation (missing required fields, type mismatch, out-of-range values, etc.).
	CodeInvalidParam ErrorCode = 10001

	// CodeUnauthorized is returned when a request lacks valid authentication credentials.
	CodeUnauthorized ErrorCode = 10002

	// CodeForbidden is returned when authenticated credentials do not grant access
	// to the requested resource or action.
	CodeForbidden ErrorCode = 10003

	// CodeNotFound is returned when the requested resource does not exist.
	CodeNotFound ErrorCode = 10004

	// CodeConflict is returned when a create/update operation violates a uniqueness
	// or state constraint (e.g., duplicate resource, optimistic lock failure).
	CodeConflict ErrorCode = 10005

	// CodeRateLimit is returned when the caller has exceeded the allowed request rate.
	CodeRateLimit ErrorCode = 10006

	// CodeInternal is returned for unexpected server-side errors that are not
	// attributable to the caller.
	CodeInternal ErrorCode = 10007

	// CodeNotImplemented is returned when a requested feature or endpoint is
	// not yet implemented.
	CodeNotImplemented ErrorCode = 10008

	// CodeOverloaded is returned by the scheduler when the global outbound
	// concurrency cap is saturated and the request's queue slot could not
	// be obtained before the backpressure queue bound was reached.
	CodeOverloaded ErrorCode = 10009

	// CodeDeadlineExceeded is returned by the orchestrator when an analysis
	// deadline elapses before every ingredient finished fetching. The
	// caller still receives a partial Analysis; this code is only used for
	// logging/metrics, never as the sole response.
	CodeDeadlineExceeded ErrorCode = 10010
)

// ─────────────────────────────────────────────────────────────────────────────
// Ingredient / normalization domain error codes  (2xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeNameUnnormalizable is returned when a raw ingredient string
	// reduces to a measurement token or the empty string. This is never
	// surfaced to API callers as a failure; it is recorded internally as
	// a skip.
	CodeNameUnnormalizable ErrorCode = 20001

	// CodeIngredientNotFound is returned when a canonical ingredient name
	// has no SafetyProfile in the Local Catalog and no registry produced
	// a fragment for it.
	CodeIngredientNotFound ErrorCode = 20002

	// CodeLexiconLoadError is returned when the embedded synonym table or
	// measurement-token set fails to parse at startup.
	CodeLexiconLoadError ErrorCode = 20003
)

// ─────────────────────────────────────────────────────────────────────────────
// Registry / resilience domain error codes  (3xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeRegistryNotFound is returned by a Fetcher when the registry
	// responds that it has no record of the ingredient.
	CodeRegistryNotFound ErrorCode = 30001

	// CodeRegistryTransient is returned by a Fetcher for timeouts, 5xx
	// responses, and network errors — all retryable per the Resilience
	// Layer's Retry Policy.
	CodeRegistryTransient ErrorCode = 30002

	// CodeRegistryPermanent is returned by a Fetcher for non-retryable
	// 4xx responses (other than 408/429).
	CodeRegistryPermanent ErrorCode = 30003

	// CodeCircuitOpen is returned when a registry's Circuit Breaker is in
	// the Open state and fails the call immediately without any network
	// attempt.
	CodeCircuitOpen ErrorCode = 30004

	// CodeAggregationError is returned when the Profile Aggregator cannot
	// produce a total, deterministic result from the supplied fragments
	// (should not occur in normal operation; indicates a programming error).
	CodeAggregationError ErrorCode = 30005
)

// ─────────────────────────────────────────────────────────────────────────────
// Embedding / substitution domain error codes  (4xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeEmbeddingNotBuilt is returned when a similarity or substitution
	// query is made before the Embedding Space has completed its first
	// build.
	CodeEmbeddingNotBuilt ErrorCode = 40001

	// CodeEmbeddingRebuildError is returned when a rebuild of the
	// Embedding Space (vectorizer fit, PCA, k-means) fails.
	CodeEmbeddingRebuildError ErrorCode = 40002

	// CodeSubstitutionError is returned when the Substitution Engine
	// cannot produce candidates for a target ingredient due to an
	// unexpected internal failure.
	CodeSubstitutionError ErrorCode = 40003
)

// ─────────────────────────────────────────────────────────────────────────────
// Infrastructure error codes  (7xxxx)
// ─────────────────────────────────────────────────────────────────────────────
const (
	// CodeDBConnectionError is returned when the application cannot establish or
	// re-use a connection to the Durable Store (PostgreSQL).
	CodeDBConnectionError ErrorCode = 70001

	// CodeCacheError is returned when a KV Store operation (GET, SET, DEL, etc.)
	// fails due to connection loss, timeout, or an unexpected response.
	CodeCacheError ErrorCode = 70002

	// CodeSerialization is returned when marshalling or unmarshalling a
	// cache value or durable row fails.
	CodeSerialization ErrorCode = 70003

	// CodeDBQueryError is returned when a Durable Store query fails due to
	// syntax errors, constraint violations (not covered by CodeConflict),
	// or other execution-time failures.
	CodeDBQueryError ErrorCode = 70007

	// CodeDatabaseError is a general error for database-related failures
	// that are not specifically connection issues.
	CodeDatabaseError ErrorCode = 70006

	// CodeExternalService is returned when a call to an external
	// infrastructure dependency (object storage, search cluster, vector
	// store, message broker) fails for a reason not covered by a more
	// specific code.
	CodeExternalService ErrorCode = 70008

	// CodeTimeout is returned when an infrastructure call exceeds its
	// configured deadline.
	CodeTimeout ErrorCode = 70009

	// CodeServiceUnavailable is returned when an infrastructure dependency
	// reports itself as unavailable (e.g. a cluster health check failing).
	CodeServiceUnavailable ErrorCode = 70010

	// CodeSearchError is returned when a catalog lookup (fuzzy match or
	// embedding nearest-neighbor search) fails.
	CodeSearchError ErrorCode = 70011

	// CodeMessageQueueError is returned when an asynchronous job handoff
	// to the worker fails.
	CodeMessageQueueError ErrorCode = 70012

	// CodeStorageError is returned when the durable store (Postgres) or
	// shared cache (Redis) fails a read or write.
	CodeStorageError ErrorCode = 70013
)

// ─────────────────────────────────────────────────────────────────────────────
// String — human-readable name of the error code
// ─────────────────────────────────────────────────────────────────────────────

// String returns the human-readable name associated with an ErrorCode.
// It is safe to call on any value, including unknown codes.
func (c ErrorCode) String() string {
	switch c {
	// General
	case CodeOK:
		return "OK"
	case CodeUnknown:
		return "UNKNOWN"
	case CodeInvalidParam:
		return "INVALID_PARAM"
	case CodeUnauthorized:
		return "UNAUTHORIZED"
	case CodeForbidden:
		return "FORBIDDEN"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeConflict:
		return "CONFLICT"
	case CodeRateLimit:
		return "RATE_LIMIT"
	case CodeInternal:
		return "INTERNAL_ERROR"
	case CodeNotImplemented:
		return "NOT_IMPLEMENTED"
	case CodeOverloaded:
		return "OVERLOADED"
	case CodeDeadlineExceeded:
		return "DEADLINE_EXCEEDED"

	// Ingredient / normalization
	case CodeNameUnnormalizable:
		return "NAME_UNNORMALIZABLE"
	case CodeIngredientNotFound:
		return "INGREDIENT_NOT_FOUND"
	case CodeLexiconLoadError:
		return "LEXICON_LOAD_ERROR"

	// Registry / resilience
	case CodeRegistryNotFound:
		return "REGISTRY_NOT_FOUND"
	case CodeRegistryTransient:
		return "REGISTRY_TRANSIENT"
	case CodeRegistryPermanent:
		return "REGISTRY_PERMANENT"
	case CodeCircuitOpen:
		return "CIRCUIT_OPEN"
	case CodeAggregationError:
		return "AGGREGATION_ERROR"

	// Embedding / substitution
	case CodeEmbeddingNotBuilt:
		return "EMBEDDING_NOT_BUILT"
	case CodeEmbeddingRebuildError:
		return "EMBEDDING_REBUILD_ERROR"
	case CodeSubstitutionError:
		return "SUBSTITUTION_ERROR"

	// Infrastructure
	case CodeDBConnectionError:
		return "DB_CONNECTION_ERROR"
	case CodeCacheError:
		return "CACHE_ERROR"
	case CodeSerialization:
		return "SERIALIZATION_ERROR"
	case CodeDBQueryError:
		return "DB_QUERY_ERROR"
	case CodeDatabaseError:
		return "DATABASE_ERROR"
	case CodeExternalService:
		return "EXTERNAL_SERVICE_ERROR"
	case CodeTimeout:
		return "TIMEOUT"
	case CodeServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	case CodeSearchError:
		return "SEARCH_ERROR"
	case CodeMessageQueueError:
		return "MESSAGE_QUEUE_ERROR"
	case CodeStorageError:
		return "STORAGE_ERROR"

	default:
		return "UNKNOWN_CODE"
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTPStatus — mapping from domain error codes to HTTP status codes
// ─────────────────────────────────────────────────────────────────────────────

// HTTPStatus returns the most appropriate HTTP status code for the given
// ErrorCode. The mapping follows RFC 9110 semantics and is used by the HTTP
// handlers in internal/interfaces/http/router.go (writeError) to translate
// domain errors into HTTP responses.
//
// Decision matrix:
//   - 200 OK              → CodeOK
//   - 400 Bad Request     → CodeInvalidParam
//   - 401 Unauthorized    → CodeUnauthorized
//   - 403 Forbidden       → CodeForbidden
//   - 404 Not Found       → CodeNotFound, CodeIngredientNotFound, CodeRegistryNotFound
//   - 409 Conflict        → CodeConflict
//   - 429 Too Many Req.   → CodeRateLimit
//   - 501 Not Implemented → CodeNotImplemented
//   - 503 Service Unavail → CodeOverloaded, CodeCircuitOpen, CodeDBConnectionError, CodeServiceUnavailable
//   - 504 Gateway Timeout → CodeDeadlineExceeded, CodeTimeout
//   - 500 Internal Server → everything else
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK

	case CodeInvalidParam:
		return http.StatusBadRequest

	case CodeUnauthorized:
		return http.StatusUnauthorized

	case CodeForbidden:
		return http.StatusForbidden

	case CodeNotFound,
		CodeIngredientNotFound,
		CodeRegistryNotFound:
		return http.StatusNotFound

	case CodeConflict:
		return http.StatusConflict

	case CodeRateLimit:
		return http.StatusTooManyRequests

	case CodeOverloaded,
		CodeCircuitOpen,
		CodeDBConnectionError:
		return http.StatusServiceUnavailable

	case CodeDBQueryError:
		return http.StatusInternalServerError

	case CodeNotImplemented:
		return http.StatusNotImplemented

	case CodeDeadlineExceeded, CodeTimeout:
		return http.StatusGatewayTimeout

	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable

	default:
		// CodeUnknown, CodeInternal, CodeNameUnnormalizable, CodeLexiconLoadError,
		// CodeRegistryTransient, CodeRegistryPermanent, CodeAggregationError,
		// CodeEmbeddingNotBuilt, CodeEmbeddingRebuildError, CodeSubstitutionError,
		// CodeSerialization, CodeDatabaseError, and all unrecognised codes.
		return http.StatusInternalServerError
	}
}
