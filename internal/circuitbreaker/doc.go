// Package circuitbreaker implements a per-instance circuit breaker used by
// the forwarder to stop hammering a backend instance that keeps failing.
package circuitbreaker
