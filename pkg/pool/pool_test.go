package pool_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/pkg/pool"
)

func TestPool(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pool Suite")
}

var _ = Describe("Pool", func() {
	var created atomic.Int64

	factory := func(ctx context.Context) (int, error) {
		return int(created.Add(1)), nil
	}

	BeforeEach(func() {
		created.Store(0)
	})

	Describe("New", func() {
		It("should reject a non-positive size", func() {
			_, err := pool.New(0, factory)
			Expect(err).To(MatchError(pool.ErrInvalidSize))
		})
	})

	Describe("Acquire", func() {
		It("should create resources lazily up to the bound", func() {
			p, err := pool.New(2, factory)
			Expect(err).NotTo(HaveOccurred())

			ctx := context.Background()
			first, err := p.Acquire(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := p.Acquire(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(first).NotTo(Equal(second))
			Expect(created.Load()).To(Equal(int64(2)))
			Expect(p.Size()).To(Equal(2))
		})

		It("should recycle released resources", func() {
			p, err := pool.New(1, factory)
			Expect(err).NotTo(HaveOccurred())

			ctx := context.Background()
			resource, err := p.Acquire(ctx)
			Expect(err).NotTo(HaveOccurred())
			p.Release(resource)

			again, err := p.Acquire(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(resource))
			Expect(created.Load()).To(Equal(int64(1)))
		})

		It("should block at the bound until a release", func() {
			p, err := pool.New(1, factory)
			Expect(err).NotTo(HaveOccurred())

			ctx := context.Background()
			resource, err := p.Acquire(ctx)
			Expect(err).NotTo(HaveOccurred())

			acquired := make(chan int)
			go func() {
				defer GinkgoRecover()
				r, err := p.Acquire(ctx)
				Expect(err).NotTo(HaveOccurred())
				acquired <- r
			}()

			Consistently(acquired, "100ms", "10ms").ShouldNot(Receive())

			p.Release(resource)
			Eventually(acquired, "1s", "10ms").Should(Receive(Equal(resource)))
		})

		It("should respect context cancellation while waiting", func() {
			p, err := pool.New(1, factory)
			Expect(err).NotTo(HaveOccurred())

			_, err = p.Acquire(context.Background())
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err = p.Acquire(ctx)
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})

		It("should fail after the pool is closed", func() {
			p, err := pool.New(1, factory)
			Expect(err).NotTo(HaveOccurred())

			p.Close()

			_, err = p.Acquire(context.Background())
			Expect(err).To(MatchError(pool.ErrClosed))
		})
	})

	Describe("Release", func() {
		It("should drop resources released after close", func() {
			p, err := pool.New(1, factory)
			Expect(err).NotTo(HaveOccurred())

			resource, err := p.Acquire(context.Background())
			Expect(err).NotTo(HaveOccurred())

			p.Close()
			p.Release(resource)

			Expect(p.Size()).To(Equal(0))
		})
	})
})
