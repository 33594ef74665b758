package metrics

import (
	"net/http"
	"time"

	"github.com/SecondBureau/adminsgrid/pkg/logger"
)

// Provider collects runtime metrics for the grid endpoints.
type Provider interface {
	// RecordHTTPRequest records the outcome of a single HTTP request.
	RecordHTTPRequest(method, path, status string, duration time.Duration)

	// IncRequestsInFlight increments the in-flight requests gauge.
	IncRequestsInFlight()

	// DecRequestsInFlight decrements the in-flight requests gauge.
	DecRequestsInFlight()

	// RecordListQuery records a compiled list query against an entity.
	RecordListQuery(entity string, rows int, duration time.Duration, err error)

	// RecordBulkDelete records the outcome of a bulk delete against an entity.
	RecordBulkDelete(entity string, destroyed, notDestroyed int)

	// RecordCacheHit records a hit on the named cache provider.
	RecordCacheHit(provider string)

	// RecordCacheMiss records a miss on the named cache provider.
	RecordCacheMiss(provider string)

	// Handler returns the HTTP handler serving the metrics endpoint.
	Handler() http.Handler
}

var globalProvider Provider

// SetProvider installs the global metrics provider.
func SetProvider(p Provider) {
	globalProvider = p
}

// GetProvider returns the global provider, or a no-op when none is installed.
func GetProvider() Provider {
	if globalProvider == nil {
		return &NoOpProvider{}
	}
	return globalProvider
}

// NoOpProvider discards all metrics.
type NoOpProvider struct{}

func (n *NoOpProvider) RecordHTTPRequest(method, path, status string, duration time.Duration) {}
func (n *NoOpProvider) IncRequestsInFlight()                                                  {}
func (n *NoOpProvider) DecRequestsInFlight()                                                  {}
func (n *NoOpProvider) RecordListQuery(entity string, rows int, duration time.Duration, err error) {
}
func (n *NoOpProvider) RecordBulkDelete(entity string, destroyed, notDestroyed int) {}
func (n *NoOpProvider) RecordCacheHit(provider string)                              {}
func (n *NoOpProvider) RecordCacheMiss(provider string)                             {}
func (n *NoOpProvider) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		if _, err := w.Write([]byte("Metrics provider not configured")); err != nil {
			logger.Warn("Failed to write. %v", err)
		}
	})
}
