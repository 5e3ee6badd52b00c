// Package route holds the gateway routing rules: path patterns with optional
// wildcard suffix, allowed methods, target resolution, prefix stripping, and
// per-route timeout, retry, header, and cache settings.
package route
