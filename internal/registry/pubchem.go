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

// pubchemCompoundResponse is a trimmed shape of PubChem's PUG REST
// compound/property JSON response — the one registry in this set backed
// by a real public API rather than a scraped or fixture source.
type pubchemCompoundResponse struct {
	PropertyTable struct {
		Properties []struct {
			CID       int     `json:"CID"`
			IUPACName string  `json:"IUPACName"`
			XLogP     float64 `json:"XLogP"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

// NewPubChemFetcher builds the PubChem registry Fetcher. PubChem has no
// intrinsic risk_level vocabulary; GHS classification isn't available on
// this endpoint, so a compound found at all is treated as having
// structural data but an unclassified risk, matching the original
// aggregator's permissive default for registries with only presence/
// absence signal.
func NewPubChemFetcher(baseURL string, cache *resilience.RequestCache) *httpFetcher {
	f := newHTTPFetcher(safety.RegistryPubChem, baseURL, cache, resilience.DefaultRegistryConfig("pubchem"))
	f.buildReq = func(ctx context.Context, base string, name ingredient.CanonicalName) (*http.Request, error) {
		u := base + "/compound/name/" + url.PathEscape(name.String()) + "/property/IUPACName,XLogP/JSON"
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}
	f.parse = func(body []byte, name ingredient.CanonicalName) (*safety.RegistryFragment, error) {
		var resp pubchemCompoundResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		if len(resp.PropertyTable.Properties) == 0 {
			return nil, notFound(string(safety.RegistryPubChem), name.String())
		}
		return &safety.RegistryFragment{
			RegistryID: safety.RegistryPubChem,
			RiskLevel:  safety.RiskUnknown,
			Status:     "indexed",
			SourceURLs: []string{"https://pubchem.ncbi.nlm.nih.gov/compound/" + name.String()},
		}, nil
	}
	return f
}
