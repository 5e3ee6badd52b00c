// Package metrics defines the gateway's prometheus collectors.
package metrics
