// Package errors_test provides comprehensive table-driven unit tests for the
// error code definitions in pkg/errors/codes.go.
package errors_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ingredient-intel/iie/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test data — exhaustive table of every declared ErrorCode
// ─────────────────────────────────────────────────────────────────────────────

type codeEntry struct {
	code           errors.ErrorCode
	expectedString string
	expectedHTTP   int
}

// allCodes enumerates every ErrorCode constant defined in codes.go together
// with its expected String() output and expected HTTPStatus() mapping.
// The table is the single source of truth for both test functions below.
var allCodes = []codeEntry{
	// ── General ──────────────────────────────────────────────────────────────
	{errors.CodeOK, "OK", http.StatusOK},
	{errors.CodeUnknown, "UNKNOWN", http.StatusInternalServerError},
	{errors.CodeInvalidParam, "INVALID_PARAM", http.StatusBadRequest},
	{errors.CodeUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
	{errors.CodeForbidden, "FORBIDDEN", http.StatusForbidden},
	{errors.CodeNotFound, "NOT_FOUND", http.StatusNotFound},
	{errors.CodeConflict, "CONFLICT", http.StatusConflict},
	{errors.CodeRateLimit, "RATE_LIMIT", http.StatusTooManyRequests},
	{errors.CodeInternal, "INTERNAL_ERROR", http.StatusInternalServerError},
	{errors.CodeNotImplemented, "NOT_IMPLEMENTED", http.StatusNotImplemented},
	{errors.CodeOverloaded, "OVERLOADED", http.StatusServiceUnavailable},
	{errors.CodeDeadlineExceeded, "DEADLINE_EXCEEDED", http.StatusGatewayTimeout},

	// ── Ingredient / normalization ───────────────────────────────────────────
	{errors.CodeNameUnnormalizable, "NAME_UNNORMALIZABLE", http.StatusInternalServerError},
	{errors.CodeIngredientNotFound, "INGREDIENT_NOT_FOUND", http.StatusNotFound},
	{errors.CodeLexiconLoadError, "LEXICON_LOAD_ERROR", http.StatusInternalServerError},

	// ── Registry / resilience ────────────────────────────────────────────────
	{errors.CodeRegistryNotFound, "REGISTRY_NOT_FOUND", http.StatusNotFound},
	{errors.CodeRegistryTransient, "REGISTRY_TRANSIENT", http.StatusInternalServerError},
	{errors.CodeRegistryPermanent, "REGISTRY_PERMANENT", http.StatusInternalServerError},
	{errors.CodeCircuitOpen, "CIRCUIT_OPEN", http.StatusServiceUnavailable},
	{errors.CodeAggregationError, "AGGREGATION_ERROR", http.StatusInternalServerError},

	// ── Embedding / substitution ─────────────────────────────────────────────
	{errors.CodeEmbeddingNotBuilt, "EMBEDDING_NOT_BUILT", http.StatusInternalServerError},
	{errors.CodeEmbeddingRebuildError, "EMBEDDING_REBUILD_ERROR", http.StatusInternalServerError},
	{errors.CodeSubstitutionError, "SUBSTITUTION_ERROR", http.StatusInternalServerError},

	// ── Infrastructure ────────────────────────────────────────────────────────
	{errors.CodeDBConnectionError, "DB_CONNECTION_ERROR", http.StatusServiceUnavailable},
	{errors.CodeCacheError, "CACHE_ERROR", http.StatusInternalServerError},
	{errors.CodeSerialization, "SERIALIZATION_ERROR", http.StatusInternalServerError},
	{errors.CodeDBQueryError, "DB_QUERY_ERROR", http.StatusInternalServerError},
	{errors.CodeDatabaseError, "DATABASE_ERROR", http.StatusInternalServerError},
	{errors.CodeExternalService, "EXTERNAL_SERVICE_ERROR", http.StatusInternalServerError},
	{errors.CodeTimeout, "TIMEOUT", http.StatusGatewayTimeout},
	{errors.CodeServiceUnavailable, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
	{errors.CodeSearchError, "SEARCH_ERROR", http.StatusInternalServerError},
	{errors.CodeMessageQueueError, "MESSAGE_QUEUE_ERROR", http.StatusInternalServerError},
	{errors.CodeStorageError, "STORAGE_ERROR", http.StatusInternalServerError},
}

// ─────────────────────────────────────────────────────────────────────────────
// TestErrorCode_String
// ─────────────────────────────────────────────────────────────────────────────

// TestErrorCode_String verifies that every declared ErrorCode returns the
// expected non-empty string representation from its String() method.
func TestErrorCode_String(t *testing.T) {
	t.Parallel()

	for _, tc := range allCodes {
		tc := tc // capture range variable
		t.Run(tc.expectedString, func(t *testing.T) {
			t.Parallel()

			got := tc.code.String()

			// Must never be empty.
			assert.NotEmpty(t, got,
				"String() for code %d must not be empty", int(tc.code))

			// Must match the exact expected name.
			assert.Equal(t, tc.expectedString, got,
				"String() for code %d returned unexpected value", int(tc.code))
		})
	}
}

// TestErrorCode_String_Unknown verifies that an ErrorCode value that does not
// correspond to any declared constant returns the sentinel string "UNKNOWN_CODE".
func TestErrorCode_String_Unknown(t *testing.T) {
	t.Parallel()

	unknownCodes := []errors.ErrorCode{
		errors.ErrorCode(99999),
		errors.ErrorCode(-1),
		errors.ErrorCode(1),
		errors.ErrorCode(12345),
	}

	for _, code := range unknownCodes {
		code := code
		t.Run("", func(t *testing.T) {
			t.Parallel()
			got := code.String()
			assert.NotEmpty(t, got,
				"String() must never return an empty string even for unknown codes")
			assert.Equal(t, "UNKNOWN_CODE", got,
				"String() for undeclared code %d should return UNKNOWN_CODE", int(code))
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// TestErrorCode_HTTPStatus
// ─────────────────────────────────────────────────────────────────────────────

// TestErrorCode_HTTPStatus verifies that every declared ErrorCode returns the
// correct HTTP status code from its HTTPStatus() method.
func TestErrorCode_HTTPStatus(t *testing.T) {
	t.Parallel()

	for _, tc := range allCodes {
		tc := tc
		t.Run(tc.expectedString, func(t *testing.T) {
			t.Parallel()

			got := tc.code.HTTPStatus()

			assert.Equal(t, tc.expectedHTTP, got,
				"HTTPStatus() for %s (code %d) returned %d, want %d",
				tc.expectedString, int(tc.code), got, tc.expectedHTTP)
		})
	}
}

// TestErrorCode_HTTPStatus_SpecificMappings provides explicit, named test cases
// for the most commonly referenced mappings so that failures produce maximally
// descriptive output.
func TestErrorCode_HTTPStatus_SpecificMappings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		code errors.ErrorCode
		want int
	}{
		{"NotFound→404", errors.CodeNotFound, http.StatusNotFound},
		{"Unauthorized→401", errors.CodeUnauthorized, http.StatusUnauthorized},
		{"InvalidParam→400", errors.CodeInvalidParam, http.StatusBadRequest},
		{"Internal→500", errors.CodeInternal, http.StatusInternalServerError},
		{"RateLimit→429", errors.CodeRateLimit, http.StatusTooManyRequests},
		{"IngredientNotFound→404", errors.CodeIngredientNotFound, http.StatusNotFound},
		{"RegistryNotFound→404", errors.CodeRegistryNotFound, http.StatusNotFound},
		{"CircuitOpen→503", errors.CodeCircuitOpen, http.StatusServiceUnavailable},
		{"DeadlineExceeded→504", errors.CodeDeadlineExceeded, http.StatusGatewayTimeout},
		{"Timeout→504", errors.CodeTimeout, http.StatusGatewayTimeout},
		{"DBConnectionError→503", errors.CodeDBConnectionError, http.StatusServiceUnavailable},
		{"ServiceUnavailable→503", errors.CodeServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.code.HTTPStatus(),
				"HTTPStatus() mismatch for %s", tc.name)
		})
	}
}

// TestErrorCode_HTTPStatus_Unknown verifies that any undeclared ErrorCode
// falls through to the default branch and returns 500 Internal Server Error.
func TestErrorCode_HTTPStatus_Unknown(t *testing.T) {
	t.Parallel()

	unknownCodes := []errors.ErrorCode{
		errors.ErrorCode(99999),
		errors.ErrorCode(-1),
		errors.ErrorCode(1),
	}

	for _, code := range unknownCodes {
		code := code
		t.Run("", func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, http.StatusInternalServerError, code.HTTPStatus(),
				"HTTPStatus() for undeclared code %d should default to 500", int(code))
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// TestErrorCode_AllCodesHaveValidHTTPStatus ensures that every code in the
// master table maps to a valid, well-known HTTP status code (i.e. one of the
// values defined in net/http). This guards against typos such as returning
// 40 instead of 400.
// ─────────────────────────────────────────────────────────────────────────────
func TestErrorCode_AllCodesHaveValidHTTPStatus(t *testing.T) {
	t.Parallel()

	// Accepted status codes used by the platform.
	validStatuses := map[int]bool{
		http.StatusOK:                  true,
		http.StatusBadRequest:          true,
		http.StatusUnauthorized:        true,
		http.StatusForbidden:           true,
		http.StatusNotFound:            true,
		http.StatusConflict:            true,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
		http.StatusNotImplemented:      true,
	}

	for _, tc := range allCodes {
		tc := tc
		t.Run(tc.expectedString, func(t *testing.T) {
			t.Parallel()
			status := tc.code.HTTPStatus()
			assert.True(t, validStatuses[status],
				"HTTPStatus() for %s returned unexpected status code %d",
				tc.expectedString, status)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// TestErrorCode_DomainRanges validates that each error code integer value falls
// within the expected numeric range for its business domain. This prevents
// accidental cross-domain code collisions as the codebase grows.
// ─────────────────────────────────────────────────────────────────────────────
func TestErrorCode_DomainRanges(t *testing.T) {
	t.Parallel()

	type rangeEntry struct {
		code errors.ErrorCode
		low  int
		high int
		name string
	}

	ranges := []rangeEntry{
		// General
		{errors.CodeOK, 0, 0, "CodeOK"},
		{errors.CodeUnknown, 10000, 10999, "CodeUnknown"},
		{errors.CodeInvalidParam, 10000, 10999, "CodeInvalidParam"},
		{errors.CodeUnauthorized, 10000, 10999, "CodeUnauthorized"},
		{errors.CodeForbidden, 10000, 10999, "CodeForbidden"},
		{errors.CodeNotFound, 10000, 10999, "CodeNotFound"},
		{errors.CodeConflict, 10000, 10999, "CodeConflict"},
		{errors.CodeRateLimit, 10000, 10999, "CodeRateLimit"},
		{errors.CodeInternal, 10000, 10999, "CodeInternal"},
		{errors.CodeNotImplemented, 10000, 10999, "CodeNotImplemented"},
		{errors.CodeOverloaded, 10000, 10999, "CodeOverloaded"},
		{errors.CodeDeadlineExceeded, 10000, 10999, "CodeDeadlineExceeded"},
		// Ingredient / normalization
		{errors.CodeNameUnnormalizable, 20000, 29999, "CodeNameUnnormalizable"},
		{errors.CodeIngredientNotFound, 20000, 29999, "CodeIngredientNotFound"},
		{errors.CodeLexiconLoadError, 20000, 29999, "CodeLexiconLoadError"},
		// Registry / resilience
		{errors.CodeRegistryNotFound, 30000, 39999, "CodeRegistryNotFound"},
		{errors.CodeRegistryTransient, 30000, 39999, "CodeRegistryTransient"},
		{errors.CodeRegistryPermanent, 30000, 39999, "CodeRegistryPermanent"},
		{errors.CodeCircuitOpen, 30000, 39999, "CodeCircuitOpen"},
		{errors.CodeAggregationError, 30000, 39999, "CodeAggregationError"},
		// Embedding / substitution
		{errors.CodeEmbeddingNotBuilt, 40000, 49999, "CodeEmbeddingNotBuilt"},
		{errors.CodeEmbeddingRebuildError, 40000, 49999, "CodeEmbeddingRebuildError"},
		{errors.CodeSubstitutionError, 40000, 49999, "CodeSubstitutionError"},
		// Infrastructure
		{errors.CodeDBConnectionError, 70000, 79999, "CodeDBConnectionError"},
		{errors.CodeCacheError, 70000, 79999, "CodeCacheError"},
		{errors.CodeSerialization, 70000, 79999, "CodeSerialization"},
		{errors.CodeDBQueryError, 70000, 79999, "CodeDBQueryError"},
		{errors.CodeDatabaseError, 70000, 79999, "CodeDatabaseError"},
		{errors.CodeExternalService, 70000, 79999, "CodeExternalService"},
		{errors.CodeTimeout, 70000, 79999, "CodeTimeout"},
		{errors.CodeServiceUnavailable, 70000, 79999, "CodeServiceUnavailable"},
		{errors.CodeSearchError, 70000, 79999, "CodeSearchError"},
		{errors.CodeMessageQueueError, 70000, 79999, "CodeMessageQueueError"},
		{errors.CodeStorageError, 70000, 79999, "CodeStorageError"},
	}

	for _, r := range ranges {
		r := r
		t.Run(r.name, func(t *testing.T) {
			t.Parallel()
			v := int(r.code)
			assert.GreaterOrEqual(t, v, r.low,
				"%s value %d is below domain lower bound %d", r.name, v, r.low)
			assert.LessOrEqual(t, v, r.high,
				"%s value %d is above domain upper bound %d", r.name, v, r.high)
		})
	}
}
