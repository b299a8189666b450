package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/resilience"
)

// fdaResponse mirrors the shape the original Python aggregator read off of
// an FDA lookup (enhanced_substitution_mapping.py's _extract_fda_status):
// a sources list and a free-text status field.
type fdaResponse struct {
	Sources []string `json:"sources"`
	Status  string   `json:"status"`
}

// NewFDAFetcher builds the FDA registry Fetcher. FDA's substance registry
// returns JSON; status is mapped to approved/unapproved per the original
// safe_levels vocabulary ("approved", "safe",
// "generally recognized as safe").
func NewFDAFetcher(baseURL string, cache *resilience.RequestCache) *httpFetcher {
	f := newHTTPFetcher(safety.RegistryFDA, baseURL, cache, resilience.DefaultRegistryConfig("fda"))
	f.buildReq = func(ctx context.Context, base string, name ingredient.CanonicalName) (*http.Request, error) {
		u := base + "/substances/search?q=" + url.QueryEscape(name.String())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}
	f.parse = func(body []byte, name ingredient.CanonicalName) (*safety.RegistryFragment, error) {
		var resp fdaResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		risk := safety.RiskLow
		status := resp.Status
		switch status {
		case "approved", "safe", "generally recognized as safe":
			risk = safety.RiskSafe
		case "", "unknown":
			risk = safety.RiskUnknown
		case "restricted":
			risk = safety.RiskModerate
		case "banned", "prohibited":
			risk = safety.RiskCritical
		}
		return &safety.RegistryFragment{
			RegistryID: safety.RegistryFDA,
			RiskLevel:  risk,
			Status:     status,
			SourceURLs: []string{f.baseURL},
		}, nil
	}
	return f
}
