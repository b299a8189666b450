package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingredient-intel/iie/pkg/types"
)

func TestClient_NewClient_Valid(t *testing.T) {
	c, err := NewClient("https://api.example.com")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestClient_NewClient_EmptyBaseURL(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func TestClient_NewClient_InvalidScheme(t *testing.T) {
	_, err := NewClient("ftp://api.example.com")
	assert.Error(t, err)
}

func TestClient_NewClient_TrimsTrailingSlash(t *testing.T) {
	c, err := NewClient("https://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", c.baseURL)
}

func TestAPIError_Error(t *testing.T) {
	apiErr := &APIError{StatusCode: 404, Code: "INGREDIENT_NOT_FOUND", Message: "no such ingredient", RequestID: "req-123"}
	assert.NotEmpty(t, apiErr.Error())
}

func TestAPIError_IsNotFound(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 404}).IsNotFound())
}

func TestAPIError_IsOverloaded(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 503}).IsOverloaded())
}

func TestAPIError_IsServerError(t *testing.T) {
	for _, code := range []int{500, 502, 503, 504} {
		assert.True(t, (&APIError{StatusCode: code}).IsServerError())
	}
	assert.False(t, (&APIError{StatusCode: 400}).IsServerError())
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(types.HealthResponse{Status: "ok", CatalogSize: 42})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 42, health.CatalogSize)
}

func TestClient_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)

		var req types.AnalyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"parabens"}, req.Ingredients)

		json.NewEncoder(w).Encode(types.AnalyzeResponse{AggregateSafetyScore: 20})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.Analyze(context.Background(), types.AnalyzeRequest{Ingredients: []string{"parabens"}})
	require.NoError(t, err)
	assert.Equal(t, 20.0, resp.AggregateSafetyScore)
}

func TestClient_Substitutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.SubstitutesResponse{
			Candidates: []types.Candidate{{CandidateName: "vitamin e"}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.Substitutes(context.Background(), types.SubstitutesRequest{Ingredient: "parabens"})
	require.NoError(t, err)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "vitamin e", resp.Candidates[0].CandidateName)
}

func TestClient_Profile_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(types.ErrorResponse{Error: "not found", Code: "INGREDIENT_NOT_FOUND"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Profile(context.Background(), "unobtainium")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "INGREDIENT_NOT_FOUND", apiErr.Code)
}

func TestClient_RetriesOnServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(types.HealthResponse{Status: "ok"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryMax(3), WithRetryWait(time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, attempts)
}

func TestClient_DoesNotRetryOnBadRequest(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(types.ErrorResponse{Error: "bad request", Code: "INVALID_PARAM"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}
