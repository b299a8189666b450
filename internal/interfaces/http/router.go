package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ingredient-intel/iie/internal/catalog"
	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/infrastructure/monitoring/logging"
	"github.com/ingredient-intel/iie/internal/interfaces/http/middleware"
	"github.com/ingredient-intel/iie/internal/normalize"
	"github.com/ingredient-intel/iie/internal/orchestrator"
	"github.com/ingredient-intel/iie/internal/substitution"
	apperrors "github.com/ingredient-intel/iie/pkg/errors"
)

// RouterConfig aggregates everything needed to build the IIE HTTP API:
// the core collaborators the handlers delegate to, plus the logger and
// middleware policy.
type RouterConfig struct {
	Normalizer   *normalize.Normalizer
	Orchestrator *orchestrator.Orchestrator
	Substitution *substitution.Engine
	Catalog      *catalog.Catalog
	Logger       logging.Logger
	CORS         middleware.CORSConfig
	Logging      middleware.LoggingConfig
}

// NewRouter builds the engine's HTTP surface: /normalize, /analyze,
// /substitutes, /profile/{name}, and /health, wrapped with CORS, request
// logging, and panic recovery. There is no auth, tenant, or rate-limit
// layer; the orchestrator's and registry scheduler's bounded concurrency
// protect it under load. A registry fetch the scheduler rejects as
// Overloaded is dropped like any other failed fetch (the ingredient gets
// whatever the remaining registries returned, or a placeholder profile),
// so no route answers 503 for scheduler overload.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	h := &handlers{
		normalizer: cfg.Normalizer,
		orch:       cfg.Orchestrator,
		subs:       cfg.Substitution,
		catalog:    cfg.Catalog,
		logger:     cfg.Logger,
	}

	mux.HandleFunc("GET /normalize", h.normalize)
	mux.HandleFunc("POST /analyze", h.analyze)
	mux.HandleFunc("POST /substitutes", h.substitutes)
	mux.HandleFunc("GET /profile/{name}", h.profile)
	mux.HandleFunc("GET /health", h.health)

	var handler http.Handler = mux
	handler = middleware.RequestLogging(cfg.Logger, cfg.Logging)(handler)
	handler = middleware.CORS(cfg.CORS)(handler)
	handler = recoverPanics(cfg.Logger)(handler)

	return handler
}

// recoverPanics converts a handler panic into a 500 instead of killing the
// connection, logging the recovered value before responding.
func recoverPanics(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered in http handler",
						logging.String("path", r.URL.Path),
						logging.Any("panic", rec),
					)
					writeError(w, apperrors.New(apperrors.CodeInternal, "internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// handlers holds the collaborators invoked by each route.
type handlers struct {
	normalizer *normalize.Normalizer
	orch       *orchestrator.Orchestrator
	subs       *substitution.Engine
	catalog    *catalog.Catalog
	logger     logging.Logger
}

func (h *handlers) normalize(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("raw")
	if strings.TrimSpace(raw) == "" {
		writeError(w, apperrors.New(apperrors.CodeInvalidParam, "raw query parameter is required"))
		return
	}

	canonical, ok := h.normalizer.Normalize(ingredient.RawName(raw))
	if !ok {
		writeError(w, apperrors.New(apperrors.CodeIngredientNotFound, "could not normalize \""+raw+"\""))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Raw       string `json:"raw"`
		Canonical string `json:"canonical"`
	}{Raw: raw, Canonical: string(canonical)})
}

// analyzeRequest is the /analyze request body.
type analyzeRequest struct {
	Ingredients    []string `json:"ingredients"`
	UserConditions []string `json:"user_conditions"`
}

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.New(apperrors.CodeInvalidParam, "request body must be valid JSON"))
		return
	}
	if len(req.Ingredients) == 0 {
		writeError(w, apperrors.New(apperrors.CodeInvalidParam, "ingredients must contain at least one entry"))
		return
	}

	raws := make([]ingredient.RawName, len(req.Ingredients))
	for i, s := range req.Ingredients {
		raws[i] = ingredient.RawName(s)
	}

	analysis, err := h.orch.Analyze(r.Context(), raws, req.UserConditions)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// substitutesRequest is the /substitutes request body.
type substitutesRequest struct {
	Ingredient     string   `json:"ingredient"`
	UserConditions []string `json:"user_conditions"`
	K              int      `json:"k"`
}

func (h *handlers) substitutes(w http.ResponseWriter, r *http.Request) {
	var req substitutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.New(apperrors.CodeInvalidParam, "request body must be valid JSON"))
		return
	}
	if strings.TrimSpace(req.Ingredient) == "" {
		writeError(w, apperrors.New(apperrors.CodeInvalidParam, "ingredient is required"))
		return
	}

	candidates, err := h.subs.FindSubstitutes(r.Context(), ingredient.CanonicalName(req.Ingredient), req.UserConditions, req.K)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Candidates interface{} `json:"candidates"`
	}{Candidates: candidates})
}

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, apperrors.New(apperrors.CodeInvalidParam, "name path segment is required"))
		return
	}

	profile, ok := h.catalog.Get(ingredient.CanonicalName(name))
	if !ok {
		writeError(w, apperrors.New(apperrors.CodeIngredientNotFound, "no safety profile for \""+name+"\""))
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status      string `json:"status"`
		CatalogSize int    `json:"catalog_size"`
	}{Status: "ok", CatalogSize: h.catalog.Size()})
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to an HTTP status via its ErrorCode and writes a
// structured JSON error body.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	writeJSON(w, code.HTTPStatus(), struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}{Error: err.Error(), Code: code.String()})
}
