// Package cache provides the redis-backed response cache for idempotent GET
// routes that opt in with a cache TTL.
package cache
