package balancer_test

import (
	"net/url"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/internal/balancer"
	"github.com/angeloszaimis/api-gateway/internal/strategy"
)

func TestBalancer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Balancer Suite")
}

func mustParseURL(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return u
}

var _ = Describe("Balancer", func() {
	var (
		bal  *balancer.Balancer
		urls []*url.URL
	)

	BeforeEach(func() {
		urls = []*url.URL{
			mustParseURL("http://localhost:8081"),
			mustParseURL("http://localhost:8082"),
			mustParseURL("http://localhost:8083"),
		}
		bal = balancer.New(strategy.NewRoundRobinStrategy(), urls)
	})

	Describe("Select", func() {
		It("should return an instance from the pool", func() {
			instance, err := bal.Select()
			Expect(err).NotTo(HaveOccurred())
			Expect(instance).NotTo(BeNil())
		})

		It("should cycle through the pool in round robin order", func() {
			first, _ := bal.Select()
			second, _ := bal.Select()
			third, _ := bal.Select()
			fourth, _ := bal.Select()

			Expect(first.URL().String()).To(Equal("http://localhost:8081"))
			Expect(second.URL().String()).To(Equal("http://localhost:8082"))
			Expect(third.URL().String()).To(Equal("http://localhost:8083"))
			Expect(fourth.URL().String()).To(Equal("http://localhost:8081"))
		})

		Context("with an empty pool", func() {
			It("should return ErrNoInstances", func() {
				empty := balancer.New(strategy.NewRoundRobinStrategy(), nil)
				_, err := empty.Select()
				Expect(err).To(MatchError(balancer.ErrNoInstances))
			})
		})
	})

	Describe("connection accounting", func() {
		It("should pair every start with exactly one end", func() {
			instance, err := bal.Select()
			Expect(err).NotTo(HaveOccurred())

			bal.RecordConnectionStart(instance)
			Expect(instance.ActiveConnections()).To(Equal(1))

			bal.RecordConnectionEnd(instance)
			Expect(instance.ActiveConnections()).To(Equal(0))
		})

		It("should floor the counter on double release", func() {
			instance, _ := bal.Select()
			bal.RecordConnectionStart(instance)
			bal.RecordConnectionEnd(instance)
			bal.RecordConnectionEnd(instance)
			Expect(instance.ActiveConnections()).To(Equal(0))
		})

		It("should drive least-connections selection", func() {
			lc := balancer.New(strategy.NewLeastConnStrategy(), urls)

			first, _ := lc.Select()
			lc.RecordConnectionStart(first)
			lc.RecordConnectionStart(first)

			second, _ := lc.Select()
			Expect(second).NotTo(Equal(first))
			lc.RecordConnectionStart(second)

			third, _ := lc.Select()
			Expect(third.ActiveConnections()).To(Equal(0))
		})
	})

	Describe("pool mutation", func() {
		It("should add new instances", func() {
			bal.AddInstance(mustParseURL("http://localhost:8084"))
			Expect(bal.Healthy()).To(HaveLen(4))
			Expect(bal.Healthy()).To(ContainElement("http://localhost:8084"))
		})

		It("should ignore duplicate additions", func() {
			bal.AddInstance(mustParseURL("http://localhost:8081"))
			Expect(bal.Healthy()).To(HaveLen(3))
		})

		It("should remove instances", func() {
			bal.RemoveInstance("http://localhost:8082")
			Expect(bal.Healthy()).To(HaveLen(2))
			Expect(bal.Healthy()).NotTo(ContainElement("http://localhost:8082"))
		})

		It("should keep selecting after removal", func() {
			bal.RemoveInstance("http://localhost:8081")
			bal.RemoveInstance("http://localhost:8082")

			instance, err := bal.Select()
			Expect(err).NotTo(HaveOccurred())
			Expect(instance.URL().String()).To(Equal("http://localhost:8083"))
		})

		It("should not affect in-flight counters of a removed instance", func() {
			instance, _ := bal.Select()
			bal.RecordConnectionStart(instance)
			bal.RemoveInstance(instance.URL().String())

			bal.RecordConnectionEnd(instance)
			Expect(instance.ActiveConnections()).To(Equal(0))
		})
	})

	Describe("Healthy", func() {
		It("should return a snapshot that does not alias internal state", func() {
			snapshot := bal.Healthy()
			snapshot[0] = "http://tampered:1"

			Expect(bal.Healthy()[0]).To(Equal("http://localhost:8081"))
		})
	})

	It("should be safe under concurrent select and mutation", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				if instance, err := bal.Select(); err == nil {
					bal.RecordConnectionStart(instance)
					bal.RecordConnectionEnd(instance)
				}
			}()
			go func() {
				defer wg.Done()
				bal.AddInstance(mustParseURL("http://localhost:9090"))
				bal.RemoveInstance("http://localhost:9090")
			}()
		}
		wg.Wait()

		for _, raw := range bal.Healthy() {
			Expect(raw).To(HavePrefix("http://localhost:80"))
		}
	})
})
