package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sp3dr4/relink/config"
)

// PrometheusRegistry implements the Registry interface using Prometheus metrics
type PrometheusRegistry struct {
	registry *prometheus.Registry
	config   config.MetricsConfig

	// HTTP Metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business Metrics
	providerAttemptsTotal   *prometheus.CounterVec
	providerAttemptDuration *prometheus.HistogramVec
	urlsShortenedTotal      *prometheus.CounterVec
	shortenFailuresTotal    prometheus.Counter
	historyDeletedTotal     prometheus.Counter
	historyExpiredTotal     prometheus.Counter
}

// NewPrometheusRegistry creates a new Prometheus metrics registry
func NewPrometheusRegistry(cfg config.MetricsConfig) (Registry, error) {
	registry := prometheus.NewRegistry()

	// Create HTTP metrics
	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatusCode},
	)

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath, LabelStatusCode},
	)

	httpRequestsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Create business metrics
	providerAttemptsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "provider_attempts_total",
			Help:      "Total number of calls to external shortening providers",
		},
		[]string{LabelProvider, LabelOutcome},
	)

	providerAttemptDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "provider_attempt_duration_seconds",
			Help:      "Duration of calls to external shortening providers",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelProvider},
	)

	urlsShortenedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "urls_shortened_total",
			Help:      "Total number of URLs shortened, by result source",
		},
		[]string{LabelSource},
	)

	shortenFailuresTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "shorten_failures_total",
			Help:      "Total number of URLs rejected as invalid",
		},
	)

	historyDeletedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "history_entries_deleted_total",
			Help:      "Total number of history entries deleted explicitly",
		},
	)

	historyExpiredTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "history_entries_expired_total",
			Help:      "Total number of history entries purged after their TTL",
		},
	)

	// Register all metrics
	metricsCollectors := []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDuration,
		httpRequestsInFlight,
		providerAttemptsTotal,
		providerAttemptDuration,
		urlsShortenedTotal,
		shortenFailuresTotal,
		historyDeletedTotal,
		historyExpiredTotal,
	}

	for _, collector := range metricsCollectors {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}

	// Register Go runtime metrics if enabled
	if cfg.CollectRuntime {
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return &PrometheusRegistry{
		registry:                registry,
		config:                  cfg,
		httpRequestsTotal:       httpRequestsTotal,
		httpRequestDuration:     httpRequestDuration,
		httpRequestsInFlight:    httpRequestsInFlight,
		providerAttemptsTotal:   providerAttemptsTotal,
		providerAttemptDuration: providerAttemptDuration,
		urlsShortenedTotal:      urlsShortenedTotal,
		shortenFailuresTotal:    shortenFailuresTotal,
		historyDeletedTotal:     historyDeletedTotal,
		historyExpiredTotal:     historyExpiredTotal,
	}, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration
func (p *PrometheusRegistry) RecordHTTPRequest(method, path, statusCode string, duration float64) {
	labels := prometheus.Labels{
		LabelMethod:     method,
		LabelPath:       path,
		LabelStatusCode: statusCode,
	}
	p.httpRequestsTotal.With(labels).Inc()
	p.httpRequestDuration.With(labels).Observe(duration)
}

// IncHTTPRequestsInFlight increments the in-flight HTTP requests counter
func (p *PrometheusRegistry) IncHTTPRequestsInFlight() {
	p.httpRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight decrements the in-flight HTTP requests counter
func (p *PrometheusRegistry) DecHTTPRequestsInFlight() {
	p.httpRequestsInFlight.Dec()
}

// RecordProviderAttempt records one call to an external provider
func (p *PrometheusRegistry) RecordProviderAttempt(provider, outcome string, duration float64) {
	provider = SanitizeLabel(provider)
	p.providerAttemptsTotal.With(prometheus.Labels{
		LabelProvider: provider,
		LabelOutcome:  outcome,
	}).Inc()
	p.providerAttemptDuration.With(prometheus.Labels{LabelProvider: provider}).Observe(duration)
}

// IncURLsShortened increments the shortened URLs counter for a result source
func (p *PrometheusRegistry) IncURLsShortened(source string) {
	p.urlsShortenedTotal.With(prometheus.Labels{LabelSource: source}).Inc()
}

// IncShortenFailures increments the rejected URLs counter
func (p *PrometheusRegistry) IncShortenFailures() {
	p.shortenFailuresTotal.Inc()
}

// IncHistoryEntriesDeleted increments the deleted entries counter
func (p *PrometheusRegistry) IncHistoryEntriesDeleted() {
	p.historyDeletedTotal.Inc()
}

// AddHistoryEntriesExpired adds count purged entries to the expired counter
func (p *PrometheusRegistry) AddHistoryEntriesExpired(count int) {
	if count > 0 {
		p.historyExpiredTotal.Add(float64(count))
	}
}

// GetRegistry returns the underlying Prometheus registry
func (p *PrometheusRegistry) GetRegistry() *prometheus.Registry {
	return p.registry
}

// GetHandler returns an HTTP handler for the metrics endpoint
func (p *PrometheusRegistry) GetHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
