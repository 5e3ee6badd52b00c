package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/angeloszaimis/api-gateway/internal/metrics"
)

// RequestMetrics records request counts and handling latency.
type RequestMetrics struct {
	metrics *metrics.Metrics
}

func NewRequestMetrics(m *metrics.Metrics) *RequestMetrics {
	return &RequestMetrics{metrics: m}
}

func (m *RequestMetrics) Name() string { return "request_metrics" }

func (m *RequestMetrics) Before(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	return r, true
}

func (m *RequestMetrics) After(r *http.Request, status int, duration time.Duration) {
	m.metrics.ObserveRequest(r.Method, r.URL.Path, strconv.Itoa(status), duration)
}
