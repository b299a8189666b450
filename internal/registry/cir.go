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

// NewCIRFetcher builds the Cosmetic Ingredient Review registry Fetcher.
// CIR publishes a finding ("safe", "safe with qualifications",
// "insufficient data", "unsafe") per ingredient monograph; this scrapes
// the finding text off the monograph summary page.
func NewCIRFetcher(baseURL string, cache *resilience.RequestCache) *httpFetcher {
	f := newHTTPFetcher(safety.RegistryCIR, baseURL, cache, resilience.DefaultRegistryConfig("cir"))
	f.buildReq = func(ctx context.Context, base string, name ingredient.CanonicalName) (*http.Request, error) {
		u := base + "/ingredients?search=" + url.QueryEscape(name.String())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}
	f.parse = func(body []byte, name ingredient.CanonicalName) (*safety.RegistryFragment, error) {
		doc, err := html.Parse(strings.NewReader(string(body)))
		if err != nil {
			return nil, err
		}
		findings := extractText(doc, "span", "cir-finding")
		if len(findings) == 0 {
			return nil, notFound(string(safety.RegistryCIR), name.String())
		}
		finding := strings.ToLower(findings[0])

		risk := safety.RiskUnknown
		switch {
		case strings.Contains(finding, "unsafe"):
			risk = safety.RiskHigh
		case strings.Contains(finding, "qualification"):
			risk = safety.RiskLow
		case strings.Contains(finding, "safe"):
			risk = safety.RiskSafe
		case strings.Contains(finding, "insufficient"):
			risk = safety.RiskUnknown
		}

		return &safety.RegistryFragment{
			RegistryID: safety.RegistryCIR,
			RiskLevel:  risk,
			Status:     finding,
			SourceURLs: []string{baseURL},
		}, nil
	}
	return f
}
