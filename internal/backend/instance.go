package backend

import (
	"net/url"
	"sync"
)

// Instance represents a single backend service instance with
// active-connection tracking for load balancing.
type Instance struct {
	url               *url.URL
	mutex             sync.Mutex
	activeConnections int
}

// New creates a new Instance for the given base URL.
func New(url *url.URL) *Instance {
	return &Instance{
		url: url,
	}
}

// URL returns the instance base URL.
func (i *Instance) URL() *url.URL {
	return i.url
}

// IncrementConn increments the active connection count.
func (i *Instance) IncrementConn() {
	i.mutex.Lock()
	i.activeConnections++
	i.mutex.Unlock()
}

// DecrementConn decrements the active connection count.
// The count never goes below zero, even on a double release.
func (i *Instance) DecrementConn() {
	i.mutex.Lock()
	if i.activeConnections > 0 {
		i.activeConnections--
	}
	i.mutex.Unlock()
}

// ActiveConnections returns the current number of active connections.
func (i *Instance) ActiveConnections() int {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return i.activeConnections
}
