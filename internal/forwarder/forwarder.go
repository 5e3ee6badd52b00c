package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angeloszaimis/api-gateway/internal/balancer"
	"github.com/angeloszaimis/api-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/api-gateway/internal/metrics"
	"github.com/angeloszaimis/api-gateway/internal/route"
)

// Forwarder is the request-handling engine: it matches an inbound request to
// a route, resolves the backend instance, rewrites and forwards the request,
// and maps upstream outcomes to gateway responses. It never lets a failure
// escape the request-handling path.
type Forwarder struct {
	logger   *slog.Logger
	table    *route.Table
	pools    map[string]*balancer.Balancer
	breakers *circuitbreaker.Registry
	metrics  *metrics.Metrics
	client   *http.Client
}

func New(
	logger *slog.Logger,
	table *route.Table,
	pools map[string]*balancer.Balancer,
	breakers *circuitbreaker.Registry,
	m *metrics.Metrics,
) *Forwarder {
	return &Forwarder{
		logger:   logger,
		table:    table,
		pools:    pools,
		breakers: breakers,
		metrics:  m,
		client: &http.Client{
			// Redirects from the backend are passed through verbatim.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type failureKind int

const (
	failureNone failureKind = iota
	failureNoInstances
	failureTimeout
	failureConnection
	failureInternal
)

type upstreamResponse struct {
	status int
	header http.Header
	body   []byte
}

func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt, ok := f.table.Match(r.Method, r.URL.Path)
	if !ok {
		f.recordOutcome("", metrics.OutcomeNoRoute)
		f.logger.Warn("no matching route",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No matching route"})
		return
	}

	// The body is buffered once so retry attempts can replay it.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		f.recordOutcome(rt.Name, metrics.OutcomeInternalError)
		f.logger.Error("failed to read request body",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal gateway error"})
		return
	}

	for attempt := 0; ; attempt++ {
		res, kind, target, err := f.forwardOnce(r, rt, body)
		if kind == failureNone {
			f.recordOutcome(rt.Name, metrics.OutcomeSuccess)
			f.logger.Info("forward completed",
				slog.String("method", r.Method),
				slog.String("target", target),
				slog.Int("status", res.status))
			writeResponse(w, res)
			return
		}

		if retryable(kind) && attempt < rt.Retries {
			f.logger.Warn("retrying upstream call",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("target", target),
				slog.Int("attempt", attempt+1),
				slog.Any("err", err))

			select {
			case <-time.After(backoff(attempt)):
				continue
			case <-r.Context().Done():
				// Client gone, stop retrying.
			}
		}

		f.writeFailure(w, r, rt, kind, target, err)
		return
	}
}

func (f *Forwarder) forwardOnce(r *http.Request, rt *route.Route, body []byte) (*upstreamResponse, failureKind, string, error) {
	base := rt.Target
	var bal *balancer.Balancer

	if rt.Pool != "" {
		bal = f.pools[rt.Pool]
		if bal == nil {
			return nil, failureInternal, rt.Pool, fmt.Errorf("route %q references unknown pool %q", rt.Name, rt.Pool)
		}

		instance, err := bal.Select()
		if err != nil {
			return nil, failureNoInstances, rt.Pool, err
		}
		base = instance.URL()

		bal.RecordConnectionStart(instance)
		defer bal.RecordConnectionEnd(instance)
	}

	target := base.String()

	breaker := f.breakers.Get(target)
	if !breaker.Allow() {
		return nil, failureConnection, target, fmt.Errorf("circuit breaker open for %s", target)
	}

	u := *base
	u.Path = joinPath(base.Path, rt.ForwardPath(r.URL.Path))
	u.RawQuery = r.URL.RawQuery

	ctx, cancel := context.WithTimeout(r.Context(), rt.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, failureInternal, target, err
	}

	copyInboundHeaders(req.Header, r.Header)
	for name, value := range rt.Headers {
		req.Header.Set(name, value)
	}

	if f.metrics != nil {
		gauge := f.metrics.ActiveConnections.WithLabelValues(target)
		gauge.Inc()
		defer gauge.Dec()
	}

	f.logger.Info("forwarding request",
		slog.String("method", r.Method),
		slog.String("target_url", u.String()),
		slog.String("route", rt.Name))

	res, err := f.client.Do(req)
	if err != nil {
		breaker.RecordFailure()
		return nil, classify(err), target, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		breaker.RecordFailure()
		return nil, classify(err), target, err
	}

	breaker.RecordSuccess()
	return &upstreamResponse{
		status: res.StatusCode,
		header: res.Header.Clone(),
		body:   resBody,
	}, failureNone, target, nil
}

func (f *Forwarder) writeFailure(w http.ResponseWriter, r *http.Request, rt *route.Route, kind failureKind, target string, err error) {
	switch kind {
	case failureNoInstances:
		f.recordOutcome(rt.Name, metrics.OutcomeNoInstances)
		f.logger.Error("no instances available",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("pool", rt.Pool))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Bad gateway", "target": target})

	case failureTimeout:
		f.recordOutcome(rt.Name, metrics.OutcomeTimeout)
		f.logger.Error("upstream timeout",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("target", target))
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "Gateway timeout", "target": target})

	case failureConnection:
		f.recordOutcome(rt.Name, metrics.OutcomeConnectionError)
		f.logger.Error("upstream connection error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("target", target),
			slog.Any("err", err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Bad gateway", "target": target})

	default:
		f.recordOutcome(rt.Name, metrics.OutcomeInternalError)
		f.logger.Error("gateway error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("target", target),
			slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal gateway error"})
	}
}

func (f *Forwarder) recordOutcome(routeName, outcome string) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordOutcome(routeName, outcome)
}

// classify maps a transport error to a failure kind. Timeouts become 504s,
// anything else that happened at the connection level becomes a 502, the
// rest is an internal gateway error.
func classify(err error) failureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failureTimeout
	}

	if errors.Is(err, context.Canceled) {
		return failureConnection
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return failureConnection
	}

	return failureInternal
}

func retryable(kind failureKind) bool {
	return kind == failureTimeout || kind == failureConnection
}

func backoff(attempt int) time.Duration {
	d := 50 * time.Millisecond << uint(attempt)
	if d > 500*time.Millisecond {
		return 500 * time.Millisecond
	}
	return d
}

// copyInboundHeaders copies the client's headers onto the outbound request.
// The Host header must not leak through; the outbound content length is
// owned by the transport.
func copyInboundHeaders(dst, src http.Header) {
	for name, values := range src {
		if http.CanonicalHeaderKey(name) == "Host" || http.CanonicalHeaderKey(name) == "Content-Length" {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

func joinPath(basePath, forwardPath string) string {
	if basePath == "" || basePath == "/" {
		return forwardPath
	}
	return strings.TrimSuffix(basePath, "/") + forwardPath
}

func writeResponse(w http.ResponseWriter, res *upstreamResponse) {
	for name, values := range res.header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(res.status)
	w.Write(res.body)
}

func writeJSON(w http.ResponseWriter, status int, payload map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
