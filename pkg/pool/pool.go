package pool

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Acquire after the pool has been closed.
	ErrClosed = errors.New("pool is closed")

	// ErrInvalidSize is returned by New for a non-positive max size.
	ErrInvalidSize = errors.New("pool size must be positive")
)

// Factory creates a new pool resource.
type Factory[T any] func(ctx context.Context) (T, error)

// Pool holds up to maxSize resources. Resources are created lazily by the
// factory and recycled through Release.
type Pool[T any] struct {
	factory Factory[T]
	idle    chan T
	maxSize int

	mutex  sync.Mutex
	size   int
	closed bool
}

// New creates an empty pool bounded at maxSize resources.
func New[T any](maxSize int, factory Factory[T]) (*Pool[T], error) {
	if maxSize <= 0 {
		return nil, ErrInvalidSize
	}

	return &Pool[T]{
		factory: factory,
		idle:    make(chan T, maxSize),
		maxSize: maxSize,
	}, nil
}

// Acquire returns an idle resource, creates one if the pool is below its
// bound, or blocks until a resource is released.
func (p *Pool[T]) Acquire(ctx context.Context) (T, error) {
	var zero T

	select {
	case resource := <-p.idle:
		return resource, nil
	default:
	}

	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return zero, ErrClosed
	}
	if p.size < p.maxSize {
		p.size++
		p.mutex.Unlock()

		resource, err := p.factory(ctx)
		if err != nil {
			p.mutex.Lock()
			p.size--
			p.mutex.Unlock()
			return zero, err
		}
		return resource, nil
	}
	p.mutex.Unlock()

	select {
	case resource := <-p.idle:
		return resource, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Release returns a resource to the pool. Resources released after Close, or
// beyond the pool's bound, are dropped.
func (p *Pool[T]) Release(resource T) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		p.size--
		return
	}

	select {
	case p.idle <- resource:
	default:
		p.size--
	}
}

// Close marks the pool closed and discards idle resources. In-flight
// resources are dropped on Release.
func (p *Pool[T]) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	for {
		select {
		case <-p.idle:
			p.size--
		default:
			return
		}
	}
}

// Size reports how many resources the pool has created and not yet dropped.
func (p *Pool[T]) Size() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.size
}
