package balancer

import (
	"errors"
	"net/url"
	"sync"

	"github.com/angeloszaimis/api-gateway/internal/backend"
	"github.com/angeloszaimis/api-gateway/internal/strategy"
)

// ErrNoInstances is returned by Select when the pool is empty.
var ErrNoInstances = errors.New("no instances available")

// Balancer owns a mutable pool of backend instances and picks one per
// request using its strategy. The pool and the per-instance connection
// counters may be mutated by many in-flight requests; all pool access is
// serialized by one mutex.
type Balancer struct {
	strategy  strategy.Strategy
	mutex     sync.Mutex
	instances []*backend.Instance
}

// New creates a Balancer with the given strategy and initial instances.
func New(strat strategy.Strategy, urls []*url.URL) *Balancer {
	instances := make([]*backend.Instance, 0, len(urls))
	for _, u := range urls {
		instances = append(instances, backend.New(u))
	}

	return &Balancer{
		strategy:  strat,
		instances: instances,
	}
}

// Select returns one instance from the pool according to the strategy.
// Returns ErrNoInstances when the pool is empty.
func (b *Balancer) Select() (*backend.Instance, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if len(b.instances) == 0 {
		return nil, ErrNoInstances
	}

	chosen := b.strategy.SelectInstance(b.instances)
	if chosen == nil {
		return nil, ErrNoInstances
	}

	return chosen, nil
}

// RecordConnectionStart marks the start of a forwarded request to instance.
func (b *Balancer) RecordConnectionStart(instance *backend.Instance) {
	instance.IncrementConn()
}

// RecordConnectionEnd marks the completion of a forwarded request to
// instance, whether it succeeded or failed. The counter floors at zero.
func (b *Balancer) RecordConnectionEnd(instance *backend.Instance) {
	instance.DecrementConn()
}

// AddInstance adds a new instance to the pool. Adding a URL that is already
// present is a no-op.
func (b *Balancer) AddInstance(u *url.URL) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, instance := range b.instances {
		if instance.URL().String() == u.String() {
			return
		}
	}

	b.instances = append(b.instances, backend.New(u))
}

// RemoveInstance removes the instance with the given URL from the pool.
// Requests already in flight to that instance are unaffected.
func (b *Balancer) RemoveInstance(rawURL string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for i, instance := range b.instances {
		if instance.URL().String() == rawURL {
			b.instances = append(b.instances[:i], b.instances[i+1:]...)
			return
		}
	}
}

// Healthy returns a snapshot copy of the pool's instance URLs.
func (b *Balancer) Healthy() []string {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	urls := make([]string, 0, len(b.instances))
	for _, instance := range b.instances {
		urls = append(urls, instance.URL().String())
	}
	return urls
}
