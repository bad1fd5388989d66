package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the comparison service.
// All helpers are no-ops on a nil receiver.
type Metrics struct {
	Registry           *prometheus.Registry
	ComparisonsTotal   *prometheus.CounterVec
	FailuresTotal      *prometheus.CounterVec
	ComparisonDuration prometheus.Histogram
	HistoryOpsTotal    *prometheus.CounterVec
	RateLimitedTotal   prometheus.Counter
}

// New constructs and registers all metrics on a dedicated registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	comparisons := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelens_comparisons_total",
			Help: "Completed comparisons by outcome.",
		},
		[]string{"mode", "winner"},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelens_comparison_failures_total",
			Help: "Rejected comparisons by error kind.",
		},
		[]string{"mode", "kind"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricelens_comparison_duration_seconds",
			Help:    "Time spent inside the comparison engine.",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
	)
	historyOps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelens_history_operations_total",
			Help: "Purchase history operations by type and result.",
		},
		[]string{"op", "result"},
	)
	rateLimited := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricelens_rate_limited_requests_total",
			Help: "Requests rejected by the per-client rate limiter.",
		},
	)

	registry.MustRegister(comparisons, failures, duration, historyOps, rateLimited)

	return &Metrics{
		Registry:           registry,
		ComparisonsTotal:   comparisons,
		FailuresTotal:      failures,
		ComparisonDuration: duration,
		HistoryOpsTotal:    historyOps,
		RateLimitedTotal:   rateLimited,
	}
}

// ObserveComparison records a successful comparison
func (m *Metrics) ObserveComparison(mode, winner string, d time.Duration) {
	if m == nil {
		return
	}
	m.ComparisonsTotal.WithLabelValues(mode, winner).Inc()
	m.ComparisonDuration.Observe(d.Seconds())
}

// IncFailure records a rejected comparison
func (m *Metrics) IncFailure(mode, kind string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(mode, kind).Inc()
}

// IncHistoryOp records a history repository operation
func (m *Metrics) IncHistoryOp(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.HistoryOpsTotal.WithLabelValues(op, result).Inc()
}

// IncRateLimited records a request rejected by the rate limiter
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}
