package strategy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/internal/backend"
	"github.com/angeloszaimis/api-gateway/internal/strategy"
)

var _ = Describe("Roundrobin", func() {
	var (
		strat     strategy.Strategy
		instances []*backend.Instance
	)

	BeforeEach(func() {
		strat = strategy.NewRoundRobinStrategy()

		instances = []*backend.Instance{
			backend.New(mustParseURL("http://localhost:8081")),
			backend.New(mustParseURL("http://localhost:8082")),
			backend.New(mustParseURL("http://localhost:8083")),
		}
	})

	Describe("SelectInstance", func() {
		It("should cycle through instances in order", func() {
			Expect(strat.SelectInstance(instances)).To(Equal(instances[0]))
			Expect(strat.SelectInstance(instances)).To(Equal(instances[1]))
			Expect(strat.SelectInstance(instances)).To(Equal(instances[2]))
			Expect(strat.SelectInstance(instances)).To(Equal(instances[0]))
		})

		It("should distribute load evenly", func() {
			counts := make(map[string]int)
			for i := 0; i < 300; i++ {
				selected := strat.SelectInstance(instances)
				counts[selected.URL().String()]++
			}
			Expect(counts["http://localhost:8081"]).To(Equal(100))
			Expect(counts["http://localhost:8082"]).To(Equal(100))
			Expect(counts["http://localhost:8083"]).To(Equal(100))
		})

		It("should keep selecting after the pool shrinks", func() {
			strat.SelectInstance(instances)
			strat.SelectInstance(instances)

			shrunk := instances[:1]
			Expect(strat.SelectInstance(shrunk)).To(Equal(instances[0]))
		})

		Context("with empty instance list", func() {
			It("should return nil", func() {
				Expect(strat.SelectInstance([]*backend.Instance{})).To(BeNil())
			})
		})
	})
})
