package registry

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/resilience"
)

// NewEWGFetcher builds the EWG Skin Deep registry Fetcher. EWG's page
// shows a hazard score and a concerns list in prose; this extracts both
// via a coarse keyword sweep over the rendered text rather than a typed
// API, since EWG has none (enhanced_substitution_mapping.py's
// _extract_ewg_concerns took the same "scan known-sources text" shortcut).
func NewEWGFetcher(baseURL string, cache *resilience.RequestCache) *httpFetcher {
	f := newHTTPFetcher(safety.RegistryEWG, baseURL, cache, resilience.DefaultRegistryConfig("ewg"))
	f.buildReq = func(ctx context.Context, base string, name ingredient.CanonicalName) (*http.Request, error) {
		u := base + "/search/?search=" + url.QueryEscape(name.String())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}
	f.parse = func(body []byte, name ingredient.CanonicalName) (*safety.RegistryFragment, error) {
		doc, err := html.Parse(strings.NewReader(string(body)))
		if err != nil {
			return nil, err
		}
		blocks := extractText(doc, "div", "product-ingredient")
		if len(blocks) == 0 {
			blocks = extractText(doc, "div", "hazard-score")
		}
		if len(blocks) == 0 {
			return nil, notFound(string(safety.RegistryEWG), name.String())
		}
		var concerns []string
		for _, b := range blocks {
			concerns = append(concerns, classifyConcernText(b)...)
		}
		concerns = dedupeStrings(concerns)

		risk := safety.RiskLow
		switch {
		case len(concerns) >= 4:
			risk = safety.RiskHigh
		case len(concerns) >= 2:
			risk = safety.RiskModerate
		case len(concerns) == 0:
			risk = safety.RiskSafe
		}

		return &safety.RegistryFragment{
			RegistryID: safety.RegistryEWG,
			RiskLevel:  risk,
			Status:     "scraped",
			Concerns:   concerns,
			SourceURLs: []string{baseURL},
		}, nil
	}
	return f
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
