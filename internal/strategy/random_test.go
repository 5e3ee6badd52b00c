package strategy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/internal/backend"
	"github.com/angeloszaimis/api-gateway/internal/strategy"
)

var _ = Describe("Random", func() {
	var (
		strat     strategy.Strategy
		instances []*backend.Instance
	)

	BeforeEach(func() {
		strat = strategy.NewRandomStrategy()
		instances = []*backend.Instance{
			backend.New(mustParseURL("http://localhost:8081")),
			backend.New(mustParseURL("http://localhost:8082")),
			backend.New(mustParseURL("http://localhost:8083")),
		}
	})

	It("should select an instance from the pool", func() {
		selected := strat.SelectInstance(instances)
		Expect(selected).NotTo(BeNil())
		Expect(instances).To(ContainElement(selected))
	})

	It("should distribute across instances over multiple calls", func() {
		seen := make(map[*backend.Instance]bool)

		for i := 0; i < 100; i++ {
			seen[strat.SelectInstance(instances)] = true
		}

		Expect(len(seen)).To(BeNumerically(">=", 2))
	})

	It("should return nil for empty instance list", func() {
		Expect(strat.SelectInstance([]*backend.Instance{})).To(BeNil())
	})
})
