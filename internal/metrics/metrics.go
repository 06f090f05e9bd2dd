package metrics

import (
	"net/http"
	"time"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordWebhookEvent(eventType, status string)
	RecordFulfillmentOrder(status string)
	RecordUpscaleJob(status string, duration time.Duration)
	RecordProviderRequest(provider, operation, status string)
	SetDBConnectionsActive(count float64)
	RecordDBQuery(operation, status string)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordWebhookEvent(eventType, status string)                 {}
func (m *NoOpMetrics) RecordFulfillmentOrder(status string)                        {}
func (m *NoOpMetrics) RecordUpscaleJob(status string, duration time.Duration)      {}
func (m *NoOpMetrics) RecordProviderRequest(provider, operation, status string)    {}
func (m *NoOpMetrics) SetDBConnectionsActive(count float64)                        {}
func (m *NoOpMetrics) RecordDBQuery(operation, status string)                      {}
func (m *NoOpMetrics) Handler() http.Handler                                       { return http.NotFoundHandler() }

// Global metrics instance
var globalMetrics Metrics = &NoOpMetrics{}

// Init initializes metrics (no-op for now, can be extended with Prometheus)
func Init() {
	// For now, keep using no-op metrics
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return globalMetrics.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	globalMetrics.RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordWebhookEvent records an inbound payment webhook outcome
func RecordWebhookEvent(eventType, status string) {
	globalMetrics.RecordWebhookEvent(eventType, status)
}

// RecordFulfillmentOrder records a fulfillment submission outcome
func RecordFulfillmentOrder(status string) {
	globalMetrics.RecordFulfillmentOrder(status)
}

// RecordUpscaleJob records a completed upscale job and its wall time
func RecordUpscaleJob(status string, duration time.Duration) {
	globalMetrics.RecordUpscaleJob(status, duration)
}

// RecordProviderRequest records a call to an external provider
func RecordProviderRequest(provider, operation, status string) {
	globalMetrics.RecordProviderRequest(provider, operation, status)
}

// SetDBConnectionsActive sets the number of active database connections
func SetDBConnectionsActive(count float64) {
	globalMetrics.SetDBConnectionsActive(count)
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, status string) {
	globalMetrics.RecordDBQuery(operation, status)
}
