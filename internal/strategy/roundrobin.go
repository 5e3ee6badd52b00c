package strategy

import (
	"sync/atomic"

	"github.com/angeloszaimis/api-gateway/internal/backend"
)

type roundRobinStrategy struct {
	current uint64
}

func (rb *roundRobinStrategy) SelectInstance(instances []*backend.Instance) *backend.Instance {
	if len(instances) == 0 {
		return nil
	}

	n := atomic.AddUint64(&rb.current, 1)

	// Taking the cursor modulo the current pool size keeps selection valid
	// across instance additions and removals.
	index := (n - 1) % uint64(len(instances))

	return instances[index]
}

func NewRoundRobinStrategy() Strategy {
	return &roundRobinStrategy{
		current: 0,
	}
}
