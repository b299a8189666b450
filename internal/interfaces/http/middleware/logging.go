// Package middleware: request logging records method, path, status,
// duration, and byte count for every request that passes through the
// router, skipping configured high-frequency paths like /health.
package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ingredient-intel/iie/internal/infrastructure/monitoring/logging"
)

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are paths that should not be logged (e.g., /health, /metrics).
	SkipPaths []string

	// LogRequestBody is carried in the config, but RequestLogging does not
	// read it: request bodies are never logged.
	LogRequestBody bool

	// LogResponseBody is carried in the config, but RequestLogging does not
	// read it: response bodies are never logged.
	LogResponseBody bool

	// SlowThreshold is the duration above which a request is considered slow.
	SlowThreshold time.Duration

	// MaxBodyLogSize is a body-logging size limit; RequestLogging does not
	// read it, since it logs no bodies.
	MaxBodyLogSize int
}

// DefaultLoggingConfig returns a sensible default logging configuration.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:      []string{"/health", "/healthz", "/readyz"},
		LogRequestBody: false,
		LogResponseBody: false,
		SlowThreshold:  3 * time.Second,
		MaxBodyLogSize: 1024,
	}
}

// wrappedResponseWriter captures the status code and bytes written.
type wrappedResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

// newWrappedResponseWriter creates a new wrappedResponseWriter.
func newWrappedResponseWriter(w http.ResponseWriter) *wrappedResponseWriter {
	return &wrappedResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default if WriteHeader is never called
	}
}

// WriteHeader captures the status code.
func (w *wrappedResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write captures the number of bytes written.
func (w *wrappedResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// Hijack implements http.Hijacker for WebSocket support.
func (w *wrappedResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

// Flush implements http.Flusher for streaming support.
func (w *wrappedResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// requestFields assembles the structured fields describing one completed
// request: method, path (with query string), response status/size, timing,
// and the caller's identity.
func requestFields(r *http.Request, path string, wrapped *wrappedResponseWriter, duration time.Duration) []logging.Field {
	fields := []logging.Field{
		logging.String("method", r.Method),
		logging.String("path", path),
		logging.Int("status", wrapped.statusCode),
		logging.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
		logging.Int64("bytes", wrapped.bytesWritten),
		logging.String("remote_addr", r.RemoteAddr),
		logging.String("request_id", r.Header.Get("X-Request-ID")),
	}
	if ua := r.UserAgent(); ua != "" {
		fields = append(fields, logging.String("user_agent", ua))
	}
	return fields
}

// logCompletedRequest emits one log line for a finished request, choosing
// the level from its outcome: 5xx is an error, 4xx a warning, anything
// slower than config.SlowThreshold a warning even on success.
func logCompletedRequest(logger logging.Logger, config LoggingConfig, status int, duration time.Duration, fields []logging.Field) {
	switch {
	case status >= 500:
		logger.Error("HTTP request completed with server error", fields...)
	case status >= 400:
		logger.Warn("HTTP request completed with client error", fields...)
	case config.SlowThreshold > 0 && duration >= config.SlowThreshold:
		logger.Warn("HTTP request completed (slow)", fields...)
	default:
		logger.Info("HTTP request completed", fields...)
	}
}

// RequestLogging returns middleware that logs HTTP requests and responses.
func RequestLogging(logger logging.Logger, config LoggingConfig) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			path := r.URL.Path
			if r.URL.RawQuery != "" {
				path += "?" + r.URL.RawQuery
			}

			start := time.Now()
			wrapped := newWrappedResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			duration := time.Since(start)

			fields := requestFields(r, path, wrapped, duration)
			logCompletedRequest(logger, config, wrapped.statusCode, duration, fields)
		})
	}
}

