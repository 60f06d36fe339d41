// Package metric provides Prometheus metrics for metalmesh.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for RequestsTotal.
const (
	OutcomeSuccess      = "success"
	OutcomeError        = "error"
	OutcomeNotification = "notification"
)

// Registry holds the transport's metrics, backed by its own
// prometheus registry so tests never collide on the global one.
type Registry struct {
	reg *prometheus.Registry

	// RequestsTotal counts dispatched RPC requests by method and outcome.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes end-to-end request handling time.
	RequestDuration *prometheus.HistogramVec

	// AuthFailures counts rejected authentication attempts.
	AuthFailures prometheus.Counter

	// VerifyCacheHits and VerifyCacheMisses track the credential
	// verify cache that amortizes bcrypt cost.
	VerifyCacheHits   prometheus.Counter
	VerifyCacheMisses prometheus.Counter
}

// NewRegistry creates and registers the transport metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metalmesh",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "RPC requests dispatched, by method and outcome.",
		}, []string{"method", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "metalmesh",
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "End-to-end RPC request handling duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metalmesh",
			Subsystem: "rpc",
			Name:      "auth_failures_total",
			Help:      "Rejected authentication attempts.",
		}),
		VerifyCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metalmesh",
			Subsystem: "auth",
			Name:      "verify_cache_hits_total",
			Help:      "Credential verifications served from the cache.",
		}),
		VerifyCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metalmesh",
			Subsystem: "auth",
			Name:      "verify_cache_misses_total",
			Help:      "Credential verifications that ran bcrypt.",
		}),
	}

	reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.AuthFailures,
		r.VerifyCacheHits,
		r.VerifyCacheMisses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
