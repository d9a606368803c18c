package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes Prometheus observability primitives for the statement engine.
type Metrics struct {
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	statementsGenerated *prometheus.CounterVec
	statementsCreated   prometheus.Counter
	statementsSent      *prometheus.CounterVec
	dispatches          *prometheus.CounterVec
	degradedLookups     *prometheus.CounterVec
}

// NewMetrics registers and returns Prometheus metrics.
func NewMetrics() *Metrics {
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billfold_http_requests_total",
		Help: "Counts HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "billfold_http_duration_seconds",
		Help:    "HTTP request latency per method/route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	statementsGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billfold_statements_generated_total",
		Help: "Counts statement summary computations by outcome.",
	}, []string{"outcome"})

	statementsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "billfold_statements_created_total",
		Help: "Counts persisted statement snapshots.",
	})

	statementsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billfold_statements_sent_total",
		Help: "Counts statement send transitions by channel.",
	}, []string{"channel"})

	dispatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billfold_dispatch_total",
		Help: "Delivery dispatch outcomes by channel.",
	}, []string{"channel", "status"})

	degradedLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billfold_degraded_lookups_total",
		Help: "Counts auxiliary lookups that fell back to zeroed values.",
	}, []string{"source"})

	prometheus.MustRegister(
		httpRequests,
		httpDuration,
		statementsGenerated,
		statementsCreated,
		statementsSent,
		dispatches,
		degradedLookups,
	)

	return &Metrics{
		httpRequests:        httpRequests,
		httpDuration:        httpDuration,
		statementsGenerated: statementsGenerated,
		statementsCreated:   statementsCreated,
		statementsSent:      statementsSent,
		dispatches:          dispatches,
		degradedLookups:     degradedLookups,
	}
}

// ObserveHTTPRequest records one finished HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, sanitizeLabel(route), status).Inc()
	m.httpDuration.WithLabelValues(method, sanitizeLabel(route)).Observe(duration.Seconds())
}

// ObserveStatementGenerated counts a summary computation by outcome
// (ok, degraded, error).
func (m *Metrics) ObserveStatementGenerated(outcome string) {
	if m == nil {
		return
	}
	m.statementsGenerated.WithLabelValues(sanitizeLabel(outcome)).Inc()
}

// ObserveStatementCreated counts a persisted draft snapshot.
func (m *Metrics) ObserveStatementCreated() {
	if m == nil {
		return
	}
	m.statementsCreated.Inc()
}

// ObserveStatementSent counts a draft-to-sent transition per channel.
func (m *Metrics) ObserveStatementSent(channel string) {
	if m == nil {
		return
	}
	m.statementsSent.WithLabelValues(sanitizeLabel(channel)).Inc()
}

// ObserveDispatch records a delivery attempt outcome.
func (m *Metrics) ObserveDispatch(channel, status string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(sanitizeLabel(channel), sanitizeLabel(status)).Inc()
}

// ObserveDegradedLookup counts an auxiliary lookup that degraded to zero.
func (m *Metrics) ObserveDegradedLookup(source string) {
	if m == nil {
		return
	}
	m.degradedLookups.WithLabelValues(sanitizeLabel(source)).Inc()
}

func sanitizeLabel(val string) string {
	if val == "" {
		return "unknown"
	}
	return val
}

// Module wires the Prometheus metrics registry.
var Module = fx.Module("telemetry",
	fx.Provide(NewMetrics),
)
