package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if r.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
	if r.AuthFailures == nil {
		t.Error("AuthFailures is nil")
	}
	if r.VerifyCacheHits == nil || r.VerifyCacheMisses == nil {
		t.Error("verify cache counters are nil")
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	r1 := NewRegistry()
	r2 := NewRegistry()

	r1.AuthFailures.Inc()

	if got := testutil.ToFloat64(r1.AuthFailures); got != 1 {
		t.Errorf("r1 auth failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r2.AuthFailures); got != 0 {
		t.Errorf("r2 auth failures = %v, want 0", got)
	}
}

func TestRequestCounters(t *testing.T) {
	r := NewRegistry()

	r.RequestsTotal.WithLabelValues("get_node", OutcomeSuccess).Inc()
	r.RequestsTotal.WithLabelValues("get_node", OutcomeSuccess).Inc()
	r.RequestsTotal.WithLabelValues("get_node", OutcomeError).Inc()
	r.RequestsTotal.WithLabelValues("ping", OutcomeNotification).Inc()

	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("get_node", OutcomeSuccess)); got != 2 {
		t.Errorf("get_node success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("ping", OutcomeNotification)); got != 1 {
		t.Errorf("ping notification = %v, want 1", got)
	}
}

func TestGathererExposesCounters(t *testing.T) {
	r := NewRegistry()
	r.AuthFailures.Inc()

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "metalmesh_rpc_auth_failures_total" {
			found = true
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
				t.Errorf("auth failures = %v, want 1", got)
			}
		}
	}
	if !found {
		t.Error("Gather() output missing metalmesh_rpc_auth_failures_total")
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RequestsTotal.WithLabelValues("ping", OutcomeSuccess).Inc()
	r.RequestDuration.WithLabelValues("ping").Observe(0.01)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	for _, metric := range []string{
		"metalmesh_rpc_requests_total",
		"metalmesh_rpc_request_duration_seconds",
		"metalmesh_rpc_auth_failures_total",
		"metalmesh_auth_verify_cache_hits_total",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}
