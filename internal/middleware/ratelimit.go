package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit applies a token bucket per client IP and answers 429 when the
// bucket is empty, without invoking the forwarder.
type RateLimit struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

func NewRateLimit(rps float64, burst int) *RateLimit {
	return &RateLimit{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (l *RateLimit) Name() string { return "rate_limit" }

func (l *RateLimit) Before(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	if l.limiter(ClientIP(r)).Allow() {
		return r, true
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests"})
	return r, false
}

func (l *RateLimit) After(r *http.Request, status int, duration time.Duration) {}

func (l *RateLimit) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.limiters[key] = lim
	}
	return lim
}
