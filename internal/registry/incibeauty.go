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

// inciBeautyIngredient mirrors INCIBeautyIngredient from the original
// inci_beauty_database_scraper.py — this registry is the one source in
// the set that carries an eco_score directly on its own response.
type inciBeautyIngredient struct {
	INCIName  string   `json:"inci_name"`
	EcoScore  *float64 `json:"eco_score"`
	RiskLevel string   `json:"risk_level"`
	Concerns  string   `json:"concerns"`
}

// NewINCIBeautyFetcher builds the INCI Beauty registry Fetcher. It is a
// JSON API (authenticated in the original Python source via an optional
// bearer token); here it is treated as a public JSON endpoint consistent
// with the other JSON-backed fetchers, since IIE holds no credentials.
func NewINCIBeautyFetcher(baseURL string, cache *resilience.RequestCache) *httpFetcher {
	f := newHTTPFetcher(safety.RegistryINCIBeauty, baseURL, cache, resilience.DefaultRegistryConfig("incibeauty"))
	f.buildReq = func(ctx context.Context, base string, name ingredient.CanonicalName) (*http.Request, error) {
		u := base + "/ingredients/" + url.PathEscape(name.String())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}
	f.parse = func(body []byte, name ingredient.CanonicalName) (*safety.RegistryFragment, error) {
		var ing inciBeautyIngredient
		if err := json.Unmarshal(body, &ing); err != nil {
			return nil, err
		}
		if ing.INCIName == "" {
			return nil, notFound(string(safety.RegistryINCIBeauty), name.String())
		}

		risk := safety.RiskLevel(ing.RiskLevel)
		if !risk.Valid() {
			risk = safety.RiskUnknown
		}

		var concerns []string
		if ing.Concerns != "" {
			concerns = append(concerns, ing.Concerns)
		}

		return &safety.RegistryFragment{
			RegistryID: safety.RegistryINCIBeauty,
			RiskLevel:  risk,
			EcoScore:   ing.EcoScore,
			Status:     "indexed",
			Concerns:   concerns,
			SourceURLs: []string{baseURL},
		}, nil
	}
	return f
}
