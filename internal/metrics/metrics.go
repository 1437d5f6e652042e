package metrics

import (
	"net/http"
	"time"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordLookup(kind, outcome string)
	RecordDatasetLoad(source, status string, duration time.Duration)
	SetRegionsLoaded(count int)
	SetSessionsActive(count int)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordLookup(kind, outcome string)                                {}
func (m *NoOpMetrics) RecordDatasetLoad(source, status string, duration time.Duration)  {}
func (m *NoOpMetrics) SetRegionsLoaded(count int)                                       {}
func (m *NoOpMetrics) SetSessionsActive(count int)                                      {}
func (m *NoOpMetrics) Handler() http.Handler                                            { return http.NotFoundHandler() }

// Global metrics instance
var globalMetrics Metrics = &NoOpMetrics{}

// Init initializes metrics (no-op for now, can be extended with Prometheus)
func Init() {
	// Keep the no-op implementation until a real backend is wired in.
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return globalMetrics.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	globalMetrics.RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordLookup records one lookup by kind (coordinate, name, map_click) and
// outcome (found, not_found, parse_error, range_error, unavailable).
func RecordLookup(kind, outcome string) {
	globalMetrics.RecordLookup(kind, outcome)
}

// RecordDatasetLoad records a dataset load attempt
func RecordDatasetLoad(source, status string, duration time.Duration) {
	globalMetrics.RecordDatasetLoad(source, status, duration)
}

// SetRegionsLoaded sets the current region count
func SetRegionsLoaded(count int) {
	globalMetrics.SetRegionsLoaded(count)
}

// SetSessionsActive sets the current session count
func SetSessionsActive(count int) {
	globalMetrics.SetSessionsActive(count)
}
