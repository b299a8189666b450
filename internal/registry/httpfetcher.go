package registry

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/resilience"
)

// httpFetcher is the shared transport for every registry in this package:
// a plain net/http client wrapped by one resilience.Client (Circuit
// Breaker + Retry Policy) per registry, in the teacher SDK's do()/
// calculateBackoff() idiom (pkg/client/client.go) generalized from a
// single-tenant API client into a per-registry resilient transport.
type httpFetcher struct {
	registryID safety.RegistryID
	baseURL    string
	userAgent  string
	http       *http.Client
	resilient  *resilience.Client
	cache      *resilience.RequestCache
	parse      func(body []byte, name ingredient.CanonicalName) (*safety.RegistryFragment, error)
	buildReq   func(ctx context.Context, baseURL string, name ingredient.CanonicalName) (*http.Request, error)
}

func newHTTPFetcher(id safety.RegistryID, baseURL string, cache *resilience.RequestCache, cfg resilience.RegistryConfig) *httpFetcher {
	return &httpFetcher{
		registryID: id,
		baseURL:    baseURL,
		userAgent:  "ingredient-intel-iie/1.0",
		http:       &http.Client{Timeout: cfg.Timeout},
		resilient:  resilience.NewClient(cfg),
		cache:      cache,
	}
}

func (f *httpFetcher) RegistryID() safety.RegistryID { return f.registryID }

// Fetch implements capability.RegistryFetcher. It checks the Request
// Cache first (GET-only, spec.md §4.4), then executes the HTTP round
// trip under the registry's Circuit Breaker and Retry Policy, and
// finally parses the registry-specific body into a uniform
// safety.RegistryFragment.
func (f *httpFetcher) Fetch(ctx context.Context, name ingredient.CanonicalName) (*safety.RegistryFragment, error) {
	key := string(f.registryID) + ":lookup:" + name.String()

	if body, ok := f.cache.Get(ctx, key); ok {
		fragment, err := f.parse(body, name)
		if err != nil {
			return nil, err
		}
		fragment.FetchedAt = time.Now()
		return fragment, nil
	}

	var body []byte
	err := f.resilient.Call(ctx, classifyHTTPError, func(ctx context.Context) error {
		req, buildErr := f.buildReq(ctx, f.baseURL, name)
		if buildErr != nil {
			return permanentErr(string(f.registryID), buildErr)
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "application/json, text/html;q=0.8")

		resp, doErr := f.http.Do(req)
		if doErr != nil {
			return transientErr(string(f.registryID), doErr)
		}
		defer resp.Body.Close()

		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return transientErr(string(f.registryID), readErr)
		}

		if resp.StatusCode == http.StatusNotFound {
			return notFound(string(f.registryID), name.String())
		}
		if resp.StatusCode >= 400 {
			se := &statusError{statusCode: resp.StatusCode}
			if resp.StatusCode == http.StatusTooManyRequests {
				se.retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			}
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests {
				return transientErr(string(f.registryID), se)
			}
			return permanentErr(string(f.registryID), se)
		}

		body = respBody
		return nil
	})
	if err != nil {
		if err == resilience.ErrCircuitOpen {
			return nil, err
		}
		return nil, err
	}

	fragment, parseErr := f.parse(body, name)
	if parseErr != nil {
		return nil, permanentErr(string(f.registryID), parseErr)
	}
	fragment.FetchedAt = time.Now()

	f.cache.Set(ctx, key, body)
	return fragment, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

