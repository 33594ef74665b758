package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusProviderCounters(t *testing.T) {
	p := NewPrometheusProvider("adminsgrid")

	p.RecordHTTPRequest("GET", "/players", "200", 12*time.Millisecond)
	p.RecordHTTPRequest("GET", "/players", "200", 8*time.Millisecond)
	p.RecordListQuery("players", 20, 5*time.Millisecond, nil)
	p.RecordBulkDelete("players", 3, 1)
	p.RecordCacheHit("query_total")
	p.RecordCacheMiss("query_total")
	p.RecordCacheMiss("query_total")

	if got := testutil.ToFloat64(p.requestTotal.WithLabelValues("GET", "/players", "200")); got != 2 {
		t.Errorf("requestTotal = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.listTotal.WithLabelValues("players", "success")); got != 1 {
		t.Errorf("listTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.bulkDestroyed.WithLabelValues("players")); got != 3 {
		t.Errorf("bulkDestroyed = %v, want 3", got)
	}
	if got := testutil.ToFloat64(p.bulkRejected.WithLabelValues("players")); got != 1 {
		t.Errorf("bulkRejected = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.cacheHits.WithLabelValues("query_total")); got != 1 {
		t.Errorf("cacheHits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.cacheMisses.WithLabelValues("query_total")); got != 2 {
		t.Errorf("cacheMisses = %v, want 2", got)
	}
}

func TestPrometheusProviderListQueryError(t *testing.T) {
	p := NewPrometheusProvider("")

	p.RecordListQuery("teams", 0, time.Millisecond, http.ErrHandlerTimeout)

	if got := testutil.ToFloat64(p.listTotal.WithLabelValues("teams", "error")); got != 1 {
		t.Errorf("listTotal error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.listTotal.WithLabelValues("teams", "success")); got != 0 {
		t.Errorf("listTotal success = %v, want 0", got)
	}
}

func TestPrometheusProviderHandler(t *testing.T) {
	p := NewPrometheusProvider("adminsgrid")
	p.RecordListQuery("players", 5, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "adminsgrid_list_queries_total") {
		t.Errorf("metrics output missing namespaced list counter:\n%s", body)
	}
}

func TestPrometheusMiddleware(t *testing.T) {
	p := NewPrometheusProvider("")

	handler := p.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/players", nil))

	if got := testutil.ToFloat64(p.requestTotal.WithLabelValues("GET", "/players", "418")); got != 1 {
		t.Errorf("requestTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.requestsInFlight); got != 0 {
		t.Errorf("requestsInFlight = %v, want 0", got)
	}
}

func TestNoOpProviderDefault(t *testing.T) {
	SetProvider(nil)
	if _, ok := GetProvider().(*NoOpProvider); !ok {
		t.Fatalf("expected NoOpProvider when none installed, got %T", GetProvider())
	}
}
