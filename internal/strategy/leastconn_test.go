package strategy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/internal/backend"
	"github.com/angeloszaimis/api-gateway/internal/strategy"
)

var _ = Describe("Leastconn", func() {
	var (
		strat     strategy.Strategy
		instances []*backend.Instance
	)

	BeforeEach(func() {
		strat = strategy.NewLeastConnStrategy()
		instances = []*backend.Instance{
			backend.New(mustParseURL("http://localhost:8081")),
			backend.New(mustParseURL("http://localhost:8082")),
			backend.New(mustParseURL("http://localhost:8083")),
		}
	})

	Describe("SelectInstance", func() {
		It("should select the instance with fewest connections", func() {
			instances[0].IncrementConn()
			instances[0].IncrementConn()
			instances[2].IncrementConn()

			selected := strat.SelectInstance(instances)
			Expect(selected).To(Equal(instances[1]))
		})

		It("should break ties by pool order", func() {
			instances[0].IncrementConn()

			selected := strat.SelectInstance(instances)
			Expect(selected).To(Equal(instances[1]))
		})

		It("should return nil for empty instance list", func() {
			Expect(strat.SelectInstance([]*backend.Instance{})).To(BeNil())
		})
	})
})
