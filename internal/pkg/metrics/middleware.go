package metrics

import (
	"net/http"
	"time"
)

// MetricsPath is the scrape path skipped when none is given.
const MetricsPath = "/metrics"

// responseWriter keeps the first status code written so handlers that
// call WriteHeader twice are still counted once.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(data)
}

// PrometheusMiddleware records request count, latency and in-flight gauge
// per chi route pattern. Requests to the scrape path are not recorded.
func PrometheusMiddleware(registry Registry, scrapePath string) func(http.Handler) http.Handler {
	if scrapePath == "" {
		scrapePath = MetricsPath
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == scrapePath {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			registry.IncHTTPRequestsInFlight()
			defer registry.DecHTTPRequestsInFlight()

			ww := newResponseWriter(w)
			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			method := r.Method
			path := GetRoutePath(r)
			statusCode := FormatStatusCode(ww.statusCode)

			registry.RecordHTTPRequest(method, path, statusCode, duration)
		})
	}
}

