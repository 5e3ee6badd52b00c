// Package forwarder implements the gateway's request-forwarding engine.
//
// Each request moves through match, resolve, rewrite, invoke, and classify.
// The upstream call is bracketed by connection-accounting hooks that always
// release, even on timeout or error, so the least-connections counters never
// leak. Upstream status codes, including 4xx and 5xx, are passed through
// verbatim; only transport-level failures are mapped to gateway responses.
package forwarder
