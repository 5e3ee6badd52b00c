package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Interceptor is one cross-cutting concern wrapped around the forwarder.
// Before runs on the way in, in list order; After runs on the way out, in
// reverse order, once per interceptor whose Before ran — including when a
// later interceptor short-circuited or the handler panicked.
type Interceptor interface {
	Name() string

	// Before may replace the request (to attach context) and may write a
	// response and return false to short-circuit the chain.
	Before(w http.ResponseWriter, r *http.Request) (*http.Request, bool)

	// After observes the final status and total handling duration.
	After(r *http.Request, status int, duration time.Duration)
}

// Chain composes interceptors around a handler with symmetric unwind.
type Chain struct {
	logger       *slog.Logger
	interceptors []Interceptor
	next         http.Handler
}

func NewChain(logger *slog.Logger, next http.Handler, interceptors ...Interceptor) *Chain {
	return &Chain{
		logger:       logger,
		interceptors: interceptors,
		next:         next,
	}
}

func (c *Chain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
	start := time.Now()

	entered := 0

	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("panic while handling request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Any("panic", p))
			if !rec.wroteHeader {
				rec.Header().Set("Content-Type", "application/json")
				rec.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(rec).Encode(map[string]string{"error": "Internal gateway error"})
			}
		}

		for i := entered - 1; i >= 0; i-- {
			c.interceptors[i].After(r, rec.statusCode, time.Since(start))
		}
	}()

	for _, interceptor := range c.interceptors {
		req, proceed := interceptor.Before(rec, r)
		if req != nil {
			r = req
		}
		entered++
		if !proceed {
			return
		}
	}

	c.next.ServeHTTP(rec, r)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.statusCode = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}
