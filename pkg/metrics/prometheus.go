package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusProvider implements Provider on a private registry so
// multiple instances can coexist in one process.
type PrometheusProvider struct {
	registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	requestsInFlight prometheus.Gauge
	listDuration     *prometheus.HistogramVec
	listTotal        *prometheus.CounterVec
	listRows         *prometheus.HistogramVec
	bulkDestroyed    *prometheus.CounterVec
	bulkRejected     *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
}

// NewPrometheusProvider creates a Prometheus provider. All metric names
// are prefixed with the given namespace when it is non-empty.
func NewPrometheusProvider(namespace string) *PrometheusProvider {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusProvider{
		registry: registry,
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		listDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "list_query_duration_seconds",
				Help:      "List query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity"},
		),
		listTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "list_queries_total",
				Help:      "Total number of list queries",
			},
			[]string{"entity", "status"},
		),
		listRows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "list_query_rows",
				Help:      "Rows returned per list query",
				Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 250, 500, 1000},
			},
			[]string{"entity"},
		),
		bulkDestroyed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bulk_delete_destroyed_total",
				Help:      "Total number of records destroyed by bulk deletes",
			},
			[]string{"entity"},
		),
		bulkRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bulk_delete_rejected_total",
				Help:      "Total number of requested ids not destroyed by bulk deletes",
			},
			[]string{"entity"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"provider"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"provider"},
		),
	}
}

// ResponseWriter wraps http.ResponseWriter to capture the status code.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *ResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (p *PrometheusProvider) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	p.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	p.requestTotal.WithLabelValues(method, path, status).Inc()
}

func (p *PrometheusProvider) IncRequestsInFlight() {
	p.requestsInFlight.Inc()
}

func (p *PrometheusProvider) DecRequestsInFlight() {
	p.requestsInFlight.Dec()
}

func (p *PrometheusProvider) RecordListQuery(entity string, rows int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.listDuration.WithLabelValues(entity).Observe(duration.Seconds())
	p.listTotal.WithLabelValues(entity, status).Inc()
	if err == nil {
		p.listRows.WithLabelValues(entity).Observe(float64(rows))
	}
}

func (p *PrometheusProvider) RecordBulkDelete(entity string, destroyed, notDestroyed int) {
	p.bulkDestroyed.WithLabelValues(entity).Add(float64(destroyed))
	p.bulkRejected.WithLabelValues(entity).Add(float64(notDestroyed))
}

func (p *PrometheusProvider) RecordCacheHit(provider string) {
	p.cacheHits.WithLabelValues(provider).Inc()
}

func (p *PrometheusProvider) RecordCacheMiss(provider string) {
	p.cacheMisses.WithLabelValues(provider).Inc()
}

func (p *PrometheusProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Middleware returns an HTTP middleware that records request metrics.
func (p *PrometheusProvider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		p.IncRequestsInFlight()
		defer p.DecRequestsInFlight()

		rw := NewResponseWriter(w)
		next.ServeHTTP(rw, r)

		p.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode), time.Since(start))
	})
}
