// Package backend defines the backend instance type shared by the load
// balancing strategies and the gateway forwarder. An instance is a base URL
// plus an active-connection counter; the counter is mutated only through the
// forwarder's connection start/end hooks.
package backend
