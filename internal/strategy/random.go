package strategy

import (
	"math/rand"

	"github.com/angeloszaimis/api-gateway/internal/backend"
)

type randomStrategy struct{}

func (r *randomStrategy) SelectInstance(instances []*backend.Instance) *backend.Instance {
	if len(instances) == 0 {
		return nil
	}

	index := rand.Intn(len(instances))
	return instances[index]
}

func NewRandomStrategy() Strategy {
	return &randomStrategy{}
}
