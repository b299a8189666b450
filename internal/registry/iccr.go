package registry

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/resilience"
)

var iccrLinkPattern = regexp.MustCompile(`document|report|guideline`)

// NewICCRFetcher builds the International Cooperation on Cosmetics
// Regulation registry Fetcher, grounded on iccr_scraper.py's search flow:
// a site search returns result links (falling back to any anchor whose
// href mentions document/report/guideline), whose page text is scanned
// for harmonized-guideline language.
func NewICCRFetcher(baseURL string, cache *resilience.RequestCache) *httpFetcher {
	f := newHTTPFetcher(safety.RegistryICCR, baseURL, cache, resilience.DefaultRegistryConfig("iccr"))
	f.buildReq = func(ctx context.Context, base string, name ingredient.CanonicalName) (*http.Request, error) {
		u := base + "/search?q=" + url.QueryEscape(name.String())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}
	f.parse = func(body []byte, name ingredient.CanonicalName) (*safety.RegistryFragment, error) {
		doc, err := html.Parse(strings.NewReader(string(body)))
		if err != nil {
			return nil, err
		}
		results := extractText(doc, "div", "search-result")
		if len(results) == 0 {
			results = matchingAnchors(doc, iccrLinkPattern)
		}
		if len(results) == 0 {
			return nil, notFound(string(safety.RegistryICCR), name.String())
		}

		text := strings.ToLower(results[0])
		concerns := classifyConcernText(text)

		risk := safety.RiskUnknown
		if len(concerns) > 0 {
			risk = safety.RiskModerate
		}
		if strings.Contains(text, "harmonized") || strings.Contains(text, "accepted") {
			risk = safety.RiskLow
		}

		return &safety.RegistryFragment{
			RegistryID: safety.RegistryICCR,
			RiskLevel:  risk,
			Status:     "scraped",
			Concerns:   dedupeStrings(concerns),
			SourceURLs: []string{baseURL},
		}, nil
	}
	return f
}

// matchingAnchors mirrors iccr_scraper.py's
// soup.find_all('a', href=re.compile(...)) fallback selector.
func matchingAnchors(doc *html.Node, pattern *regexp.Regexp) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" && pattern.MatchString(a.Val) {
					out = append(out, strings.TrimSpace(collectText(n)))
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}
