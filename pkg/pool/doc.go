// Package pool provides a bounded pool of reusable resources. Acquire blocks
// when the pool is exhausted until a resource is released or the context is
// cancelled.
package pool
