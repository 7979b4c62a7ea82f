package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry defines the interface for metrics collection
type Registry interface {
	// HTTP Metrics
	RecordHTTPRequest(method, path, statusCode string, duration float64)
	IncHTTPRequestsInFlight()
	DecHTTPRequestsInFlight()

	// Business Metrics
	RecordProviderAttempt(provider, outcome string, duration float64)
	IncURLsShortened(source string)
	IncShortenFailures()
	IncHistoryEntriesDeleted()
	AddHistoryEntriesExpired(count int)

	// Prometheus-specific methods
	GetRegistry() *prometheus.Registry
	GetHandler() http.Handler
}

// NoOpRegistry provides a no-op implementation for when metrics are disabled
type NoOpRegistry struct{}

func NewNoOpRegistry() Registry {
	return &NoOpRegistry{}
}

func (n *NoOpRegistry) RecordHTTPRequest(method, path, statusCode string, duration float64) {}
func (n *NoOpRegistry) IncHTTPRequestsInFlight()                                            {}
func (n *NoOpRegistry) DecHTTPRequestsInFlight()                                            {}
func (n *NoOpRegistry) RecordProviderAttempt(provider, outcome string, duration float64)    {}
func (n *NoOpRegistry) IncURLsShortened(source string)                                      {}
func (n *NoOpRegistry) IncShortenFailures()                                                 {}
func (n *NoOpRegistry) IncHistoryEntriesDeleted()                                           {}
func (n *NoOpRegistry) AddHistoryEntriesExpired(count int)                                  {}
func (n *NoOpRegistry) GetRegistry() *prometheus.Registry                                   { return nil }
func (n *NoOpRegistry) GetHandler() http.Handler                                            { return nil }

// Common label names as constants
const (
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelStatusCode = "status_code"
	LabelProvider   = "provider"
	LabelOutcome    = "outcome"
	LabelSource     = "source"
)

// Provider attempt outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeSoftFail  = "soft_failure"
	OutcomeRetryable = "retryable_error"
	OutcomeError     = "error"
)
