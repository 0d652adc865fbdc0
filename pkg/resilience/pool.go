package resilience

import (
	"context"
	"sync"
)

// Pool bounds the number of concurrently running tasks. Unlike a queue-backed
// worker pool it has no lifecycle of its own: each Go call borrows a slot and
// Wait blocks until every borrowed slot is returned.
type Pool struct {
	slots chan struct{}
	wg    sync.WaitGroup
}

// NewPool creates a pool running at most limit tasks at once.
func NewPool(limit int) *Pool {
	if limit <= 0 {
		limit = 1
	}
	return &Pool{slots: make(chan struct{}, limit)}
}

// Go runs task on its own goroutine once a slot frees up. It blocks while the
// pool is saturated and gives up when the context ends first.
func (p *Pool) Go(ctx context.Context, task func()) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.slots <- struct{}{}:
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.slots
			p.wg.Done()
		}()
		task()
	}()
	return nil
}

// Wait blocks until all started tasks finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// ForEach runs fn(i) for every i in [0,n) with at most limit in flight and
// returns the per-index errors. It stops scheduling when ctx ends; unscheduled
// indices get the context error.
func ForEach(ctx context.Context, n, limit int, fn func(i int) error) []error {
	pool := NewPool(limit)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		i := i
		if err := pool.Go(ctx, func() {
			errs[i] = fn(i)
		}); err != nil {
			errs[i] = err
		}
	}
	pool.Wait()
	return errs
}
