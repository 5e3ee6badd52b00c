package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// RequestLog emits one structured event when handling starts and one when it
// completes, carrying the correlation ID when present.
type RequestLog struct {
	logger *slog.Logger
}

func NewRequestLog(logger *slog.Logger) *RequestLog {
	return &RequestLog{logger: logger}
}

func (l *RequestLog) Name() string { return "request_log" }

func (l *RequestLog) Before(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	l.logger.Info("request started",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("client", ClientIP(r)),
		slog.String("correlation_id", correlationID(r)))
	return r, true
}

func (l *RequestLog) After(r *http.Request, status int, duration time.Duration) {
	l.logger.Info("request completed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Duration("duration", duration),
		slog.String("correlation_id", correlationID(r)))
}

func correlationID(r *http.Request) string {
	id, _ := CorrelationIDFrom(r.Context())
	return id
}

// ClientIP extracts the originating client address, preferring the first
// X-Forwarded-For entry over the direct peer address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
