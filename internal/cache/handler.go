package cache

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/api-gateway/internal/route"
)

const keyPrefix = "gateway:response:"

// entry is the serialized form of a cached upstream response.
type entry struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// Handler serves successful GET responses from the cache for routes with a
// positive cache TTL, and fills the cache on misses. Cache failures degrade
// to a plain forward; they never fail the request.
func Handler(logger *slog.Logger, store Store, table *route.Table, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		rt, ok := table.Match(r.Method, r.URL.Path)
		if !ok || rt.CacheTTL <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := keyPrefix + r.Method + ":" + r.URL.RequestURI()

		if raw, err := store.Get(r.Context(), key); err == nil {
			var cached entry
			if err := json.Unmarshal(raw, &cached); err == nil {
				for name, values := range cached.Header {
					// Headers already set by the surrounding chain win.
					if w.Header().Get(name) != "" {
						continue
					}
					for _, v := range values {
						w.Header().Add(name, v)
					}
				}
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(cached.Status)
				w.Write(cached.Body)
				return
			}
			logger.Warn("discarding malformed cache entry", slog.String("key", key))
		} else if err != ErrCacheMiss {
			logger.Warn("cache lookup failed", slog.String("key", key), slog.Any("err", err))
		}

		capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(capture, r)

		if capture.status != http.StatusOK {
			return
		}

		raw, err := json.Marshal(entry{
			Status: capture.status,
			Header: w.Header().Clone(),
			Body:   capture.buf.Bytes(),
		})
		if err != nil {
			return
		}

		if err := store.Set(r.Context(), key, raw, rt.CacheTTL); err != nil {
			logger.Warn("cache store failed", slog.String("key", key), slog.Any("err", err))
		}
	})
}

type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}
