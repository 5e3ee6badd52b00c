// Package middleware composes cross-cutting concerns around the forwarder as
// an explicit ordered list of interceptors: correlation ID, request logging,
// rate limiting, metrics, and response tagging. Before hooks run in list
// order, After hooks unwind in reverse, including on short-circuit or panic.
package middleware
