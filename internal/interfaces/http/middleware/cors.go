// Package middleware holds the HTTP middleware chain wrapped around every
// route: CORS and structured request logging.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins is a list of origins that are allowed to make cross-origin requests.
	// Use ["*"] to allow all origins (not recommended for production with credentials).
	AllowedOrigins []string

	// AllowedMethods is a list of HTTP methods allowed for cross-origin requests.
	AllowedMethods []string

	// AllowedHeaders is a list of request headers allowed for cross-origin requests.
	AllowedHeaders []string

	// ExposedHeaders is a list of response headers exposed to the client.
	ExposedHeaders []string

	// AllowCredentials indicates whether credentials (cookies, auth headers) are allowed.
	AllowCredentials bool

	// MaxAge indicates how long (in seconds) preflight results can be cached.
	MaxAge int

	// AllowWildcard enables subdomain wildcard matching (e.g., *.example.com).
	AllowWildcard bool
}

// DefaultCORSConfig returns a secure default CORS configuration.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
		AllowWildcard:    false,
	}
}

// originMatcher decides whether a request's Origin header is allowed to
// receive CORS headers, supporting an allow-all wildcard, exact matches, and
// (when enabled) "*.example.com" subdomain wildcards.
type originMatcher struct {
	allowAll bool
	exact    map[string]bool
	suffixes []string
}

func newOriginMatcher(origins []string, allowSubdomainWildcard bool) *originMatcher {
	m := &originMatcher{exact: make(map[string]bool, len(origins))}
	for _, origin := range origins {
		switch {
		case origin == "*":
			m.allowAll = true
		case allowSubdomainWildcard && strings.HasPrefix(origin, "*."):
			m.suffixes = append(m.suffixes, origin[1:]) // ".example.com"
		default:
			m.exact[strings.ToLower(origin)] = true
		}
	}
	return m
}

func (m *originMatcher) allows(origin string) bool {
	if m.allowAll {
		return true
	}
	lower := strings.ToLower(origin)
	if m.exact[lower] {
		return true
	}
	for _, suffix := range m.suffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// corsWriter renders CORS response headers from a fixed config, with the
// method/header/max-age lists pre-joined once at construction time rather
// than on every request.
type corsWriter struct {
	config        CORSConfig
	matcher       *originMatcher
	methodsHeader string
	headersHeader string
	exposedHeader string
	maxAgeHeader  string
}

func newCORSWriter(config CORSConfig) *corsWriter {
	return &corsWriter{
		config:        config,
		matcher:       newOriginMatcher(config.AllowedOrigins, config.AllowWildcard),
		methodsHeader: strings.Join(config.AllowedMethods, ", "),
		headersHeader: strings.Join(config.AllowedHeaders, ", "),
		exposedHeader: strings.Join(config.ExposedHeaders, ", "),
		maxAgeHeader:  strconv.Itoa(config.MaxAge),
	}
}

func (cw *corsWriter) writeCommon(w http.ResponseWriter, origin string) {
	w.Header().Add("Vary", "Origin")
	w.Header().Add("Vary", "Access-Control-Request-Method")
	w.Header().Add("Vary", "Access-Control-Request-Headers")

	if cw.matcher.allowAll && !cw.config.AllowCredentials {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
	}
	if cw.config.AllowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}

func (cw *corsWriter) writePreflight(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Methods", cw.methodsHeader)
	w.Header().Set("Access-Control-Allow-Headers", cw.headersHeader)
	if cw.config.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", cw.maxAgeHeader)
	}
}

// CORS returns middleware that handles Cross-Origin Resource Sharing.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	cw := newCORSWriter(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// No Origin header: same-origin or non-browser request.
			if origin == "" || !cw.matcher.allows(origin) {
				// An unrecognized origin still reaches the handler; the
				// browser enforces CORS client-side on the missing headers.
				next.ServeHTTP(w, r)
				return
			}

			cw.writeCommon(w, origin)

			if r.Method == http.MethodOptions {
				cw.writePreflight(w)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if cw.exposedHeader != "" {
				w.Header().Set("Access-Control-Expose-Headers", cw.exposedHeader)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware wraps CORS middleware for use with router configuration.
type CORSMiddleware struct {
	handler func(http.Handler) http.Handler
}

// NewCORSMiddleware creates a new CORS middleware with the given config.
func NewCORSMiddleware(config CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{
		handler: CORS(config),
	}
}

// Handler returns the middleware handler function.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return m.handler(next)
}

