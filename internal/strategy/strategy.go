package strategy

import (
	"fmt"

	"github.com/angeloszaimis/api-gateway/internal/backend"
)

// Strategy names accepted in gateway configuration.
const (
	RoundRobin       = "round_robin"
	Random           = "random"
	LeastConnections = "least_connections"
)

type Strategy interface {
	SelectInstance(instances []*backend.Instance) *backend.Instance
}

// New returns the strategy registered under the given name.
func New(name string) (Strategy, error) {
	switch name {
	case RoundRobin:
		return NewRoundRobinStrategy(), nil
	case Random:
		return NewRandomStrategy(), nil
	case LeastConnections:
		return NewLeastConnStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown load balancing strategy %q", name)
	}
}
