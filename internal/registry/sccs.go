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

// NewSCCSFetcher builds the EU Scientific Committee on Consumer Safety
// registry Fetcher, grounded on the original sccs_scraper.py's
// search-results-then-opinion-page flow: a site search for
// "<ingredient> SCCS" is expected to return a search-result block linking
// to the relevant opinion, whose text is scanned for the committee's
// conclusion language.
func NewSCCSFetcher(baseURL string, cache *resilience.RequestCache) *httpFetcher {
	f := newHTTPFetcher(safety.RegistrySCCS, baseURL, cache, resilience.DefaultRegistryConfig("sccs"))
	f.buildReq = func(ctx context.Context, base string, name ingredient.CanonicalName) (*http.Request, error) {
		u := base + "/search/site?query=" + url.QueryEscape(name.String()+" SCCS")
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}
	f.parse = func(body []byte, name ingredient.CanonicalName) (*safety.RegistryFragment, error) {
		doc, err := html.Parse(strings.NewReader(string(body)))
		if err != nil {
			return nil, err
		}
		results := extractText(doc, "div", "search-result")
		if len(results) == 0 {
			results = extractText(doc, "article", "result")
		}
		if len(results) == 0 {
			return nil, notFound(string(safety.RegistrySCCS), name.String())
		}

		opinion := strings.ToLower(results[0])
		concerns := classifyConcernText(opinion)

		risk := safety.RiskUnknown
		switch {
		case strings.Contains(opinion, "not safe") || strings.Contains(opinion, "concern"):
			risk = safety.RiskHigh
		case strings.Contains(opinion, "safe"):
			risk = safety.RiskSafe
		case len(concerns) > 0:
			risk = safety.RiskModerate
		}

		return &safety.RegistryFragment{
			RegistryID: safety.RegistrySCCS,
			RiskLevel:  risk,
			Status:     "scraped",
			Concerns:   dedupeStrings(concerns),
			SourceURLs: []string{baseURL},
		}, nil
	}
	return f
}
