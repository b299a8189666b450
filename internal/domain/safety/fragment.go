package safety

import "time"

// RegistryID names one of the external safety/eco registries the engine
// consults. Modeled as a tagged enumeration (spec.md §9 design note:
// "dynamic dispatch over registries") rather than a free-form string so the
// capability table in internal/registry can switch over it exhaustively.
type RegistryID string

const (
	RegistryFDA        RegistryID = "fda"
	RegistryEWG         RegistryID = "ewg"
	RegistryCIR         RegistryID = "cir"
	RegistrySCCS        RegistryID = "sccs"
	RegistryICCR        RegistryID = "iccr"
	RegistryPubChem     RegistryID = "pubchem"
	RegistryINCIBeauty  RegistryID = "incibeauty"
)

// AllRegistries lists every registry the engine is wired to consult, in a
// stable order used for deterministic fan-out and for weight redistribution.
var AllRegistries = []RegistryID{
	RegistryFDA, RegistryEWG, RegistryCIR, RegistrySCCS, RegistryICCR,
	RegistryPubChem, RegistryINCIBeauty,
}

// RegistryFragment is what one registry says about one ingredient. It is
// produced by a Fetcher, immutable once returned, and cached as an L2 value
// keyed by (registry_id, canonical_name).
type RegistryFragment struct {
	RegistryID  RegistryID `json:"registry_id"`
	FetchedAt   time.Time  `json:"fetched_at"`
	RiskLevel   RiskLevel  `json:"risk_level,omitempty"`
	EcoScore    *float64   `json:"eco_score,omitempty"`
	Status      string     `json:"status,omitempty"`
	Concerns    []string   `json:"concerns,omitempty"`
	RawText     string     `json:"raw_text,omitempty"`
	SourceURLs  []string   `json:"source_urls,omitempty"`
}
