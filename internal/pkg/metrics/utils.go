package metrics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// GetRoutePath extracts the route pattern from the request context
// This helps group metrics by route pattern rather than specific values
func GetRoutePath(r *http.Request) string {
	// Try to get the route pattern from chi router context
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	// Fallback to request path, but normalize common patterns
	path := r.URL.Path
	return NormalizePath(path)
}

// NormalizePath normalizes URL paths to reduce cardinality in metrics
// This prevents metrics explosion from dynamic path segments
func NormalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}

	switch {
	case strings.HasPrefix(path, "/swagger"):
		return "/swagger/*"
	case strings.HasPrefix(path, "/delete/"):
		return "/delete/{id}"
	case strings.HasPrefix(path, "/api/history/"):
		return "/api/history/{id}"
	}

	switch path {
	case "/health", "/ready", "/metrics", "/redoc",
		"/api/shorten", "/api/history", "/api/search", "/api/stats", "/api/session/reset":
		return path
	}

	return "/unknown"
}

// FormatStatusCode converts an integer status code to string
func FormatStatusCode(statusCode int) string {
	return strconv.Itoa(statusCode)
}

// SanitizeLabel sanitizes a string to be used as a Prometheus label value
// Removes or replaces characters that might cause issues
func SanitizeLabel(value string) string {
	// Replace common problematic characters
	value = strings.ReplaceAll(value, "\"", "")
	value = strings.ReplaceAll(value, "\\", "")
	value = strings.ReplaceAll(value, "\n", "")
	value = strings.ReplaceAll(value, "\r", "")

	// Limit length to prevent extremely long labels
	if len(value) > 100 {
		value = value[:100]
	}

	return value
}
