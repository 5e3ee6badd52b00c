package strategy

import (
	"github.com/angeloszaimis/api-gateway/internal/backend"
)

type leastConnStrategy struct {
}

// SelectInstance returns the instance with the fewest active connections.
// Ties go to the earliest instance in pool order, which keeps selection
// deterministic.
func (l *leastConnStrategy) SelectInstance(instances []*backend.Instance) *backend.Instance {
	if len(instances) == 0 {
		return nil
	}

	var best *backend.Instance
	bestConns := -1

	for _, instance := range instances {
		activeConns := instance.ActiveConnections()
		if bestConns == -1 || activeConns < bestConns {
			bestConns = activeConns
			best = instance
		}
	}

	return best
}

func NewLeastConnStrategy() Strategy {
	return &leastConnStrategy{}
}
