// Package healthcheck keeps pool membership in sync with instance health by
// probing each instance's /health endpoint on an interval.
package healthcheck
