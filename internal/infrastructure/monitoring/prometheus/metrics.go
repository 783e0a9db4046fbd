// Package prometheus registers and exposes the service's operational
// metrics.  All metric objects live on a private registry so that tests can
// construct isolated instances without double-registration panics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default histogram buckets for HTTP request durations, in seconds.
var DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds every metric the service emits.
type Metrics struct {
	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Scheduling core
	DueDateFallbackTotal       prometheus.Counter
	IntervalParseFailuresTotal prometheus.Counter

	// Signoff lifecycle
	SignoffsSeededTotal   prometheus.Counter
	SignoffsAdvancedTotal prometheus.Counter
	SignoffRaceTotal      prometheus.Counter

	// Cache
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance backed by a fresh registry that also
// carries the standard Go runtime and process collectors.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method and route.",
			Buckets:   DefaultHTTPDurationBuckets,
		}, []string{"method", "route"}),
		DueDateFallbackTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duedate_fallback_total",
			Help:      "Times the due-date calculator fell back to today+30d on bad input.",
		}),
		IntervalParseFailuresTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interval_parse_failures_total",
			Help:      "Maintenance interval strings that could not be parsed (defaulted to non-recurring).",
		}),
		SignoffsSeededTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signoffs_seeded_total",
			Help:      "Pending signoffs created during plan seeding.",
		}),
		SignoffsAdvancedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signoffs_advanced_total",
			Help:      "Signoffs advanced to their next occurrence after completion.",
		}),
		SignoffRaceTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signoff_pending_races_total",
			Help:      "Concurrent writers that hit the one-pending-per-task constraint.",
		}),
		CacheHitsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Pending-signoff view cache hits.",
		}),
		CacheMissesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Pending-signoff view cache misses.",
		}),
		registry: reg,
	}
}

// Handler returns the HTTP handler serving the /metrics endpoint for this
// instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
