package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const correlationHeader = "X-Correlation-ID"

type correlationKey struct{}

// WithCorrelationID returns a context carrying the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFrom extracts the correlation ID from ctx, if any.
func CorrelationIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationKey{}).(string)
	return id, ok
}

// CorrelationID propagates the client's X-Correlation-ID or generates a new
// one, echoes it on the response, and stores it in the request context.
type CorrelationID struct{}

func NewCorrelationID() *CorrelationID {
	return &CorrelationID{}
}

func (c *CorrelationID) Name() string { return "correlation_id" }

func (c *CorrelationID) Before(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	id := r.Header.Get(correlationHeader)
	if id == "" {
		id = uuid.NewString()
	}

	w.Header().Set(correlationHeader, id)
	return r.WithContext(WithCorrelationID(r.Context(), id)), true
}

func (c *CorrelationID) After(r *http.Request, status int, duration time.Duration) {}
