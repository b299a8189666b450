package registry

import (
	"github.com/ingredient-intel/iie/internal/cache"
	"github.com/ingredient-intel/iie/internal/capability"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/resilience"
)

// Endpoints configures the base URL IIE talks to for each registry.
// Defaults point at the registries' real public hosts where one exists
// (PubChem); the rest are placeholders meant to be overridden by
// internal/config for whichever mirror or fixture endpoint a deployment
// actually has access to.
type Endpoints struct {
	FDA        string
	EWG        string
	CIR        string
	SCCS       string
	ICCR       string
	PubChem    string
	INCIBeauty string
}

// DefaultEndpoints returns the illustrative hosts named in spec.md's
// source material (api.fda.gov, PubChem's real PUG REST host, and the
// scraped sites' own domains from iccr_scraper.py / sccs_scraper.py).
func DefaultEndpoints() Endpoints {
	return Endpoints{
		FDA:        "https://api.fda.gov",
		EWG:        "https://www.ewg.org/skindeep",
		CIR:        "https://www.cir-safety.org",
		SCCS:       "https://health.ec.europa.eu",
		ICCR:       "https://www.iccr-cosmetics.org",
		PubChem:    "https://pubchem.ncbi.nlm.nih.gov/rest/pug",
		INCIBeauty: "https://api.incibeauty.com",
	}
}

// BuildTable constructs one Fetcher per registry wired to its own
// Request Cache (backed by the shared Cache Hierarchy) and returns them
// as the capability.RegistryFetcher table the Aggregator's Scheduler
// fans out over.
func BuildTable(endpoints Endpoints, hierarchy *cache.Hierarchy) []capability.RegistryFetcher {
	fda := NewFDAFetcher(endpoints.FDA, resilience.NewRequestCache(hierarchy, resilience.DefaultRegistryConfig("fda").CacheTTL))
	ewg := NewEWGFetcher(endpoints.EWG, resilience.NewRequestCache(hierarchy, resilience.DefaultRegistryConfig("ewg").CacheTTL))
	cir := NewCIRFetcher(endpoints.CIR, resilience.NewRequestCache(hierarchy, resilience.DefaultRegistryConfig("cir").CacheTTL))
	sccs := NewSCCSFetcher(endpoints.SCCS, resilience.NewRequestCache(hierarchy, resilience.DefaultRegistryConfig("sccs").CacheTTL))
	iccr := NewICCRFetcher(endpoints.ICCR, resilience.NewRequestCache(hierarchy, resilience.DefaultRegistryConfig("iccr").CacheTTL))
	pubchem := NewPubChemFetcher(endpoints.PubChem, resilience.NewRequestCache(hierarchy, resilience.DefaultRegistryConfig("pubchem").CacheTTL))
	inci := NewINCIBeautyFetcher(endpoints.INCIBeauty, resilience.NewRequestCache(hierarchy, resilience.DefaultRegistryConfig("incibeauty").CacheTTL))

	return []capability.RegistryFetcher{fda, ewg, cir, sccs, iccr, pubchem, inci}
}

// DefaultPerRegistryConcurrency returns the Scheduler's per-registry
// concurrency caps drawn from each registry's default RegistryConfig.
func DefaultPerRegistryConcurrency() map[safety.RegistryID]int {
	caps := make(map[safety.RegistryID]int, len(safety.AllRegistries))
	ids := map[safety.RegistryID]string{
		safety.RegistryFDA:        "fda",
		safety.RegistryEWG:        "ewg",
		safety.RegistryCIR:        "cir",
		safety.RegistrySCCS:       "sccs",
		safety.RegistryICCR:       "iccr",
		safety.RegistryPubChem:    "pubchem",
		safety.RegistryINCIBeauty: "incibeauty",
	}
	for id, key := range ids {
		caps[id] = resilience.DefaultRegistryConfig(key).Concurrency
	}
	return caps
}
