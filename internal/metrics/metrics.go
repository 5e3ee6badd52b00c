package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded for every forward attempt's final result.
const (
	OutcomeSuccess         = "success"
	OutcomeNoRoute         = "no_route"
	OutcomeNoInstances     = "no_instances"
	OutcomeTimeout         = "timeout"
	OutcomeConnectionError = "connection_error"
	OutcomeInternalError   = "internal_error"
)

// Metrics bundles the gateway's prometheus collectors. Collectors are
// registered on the given registerer so tests can use isolated registries.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	ForwardOutcomes   *prometheus.CounterVec
	ActiveConnections *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_total",
				Help: "Total number of requests handled by the gateway",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "Request handling latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ForwardOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_forward_outcomes_total",
				Help: "Forward results by outcome classification",
			},
			[]string{"route", "outcome"},
		),
		ActiveConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_upstream_active_connections",
				Help: "In-flight requests per upstream instance",
			},
			[]string{"instance"},
		),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ForwardOutcomes,
		m.ActiveConnections,
	)

	return m
}

// ObserveRequest records one completed request for the middleware chain.
func (m *Metrics) ObserveRequest(method, path string, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOutcome counts a forward result for the given route.
func (m *Metrics) RecordOutcome(routeName, outcome string) {
	m.ForwardOutcomes.WithLabelValues(routeName, outcome).Inc()
}
