package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Store.Get when no entry exists for the key.
var ErrCacheMiss = errors.New("cache miss")

// Store is the minimal cache contract the gateway needs. The production
// implementation is redis-backed; tests use an in-memory map.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
