// Package workpool provides a fixed-size worker pool with a bounded
// queue for CPU-heavy work. Saturation is reported to the caller
// instead of queuing without limit, so request handling stays
// responsive while hashing work is refused under overload.
package workpool

import (
	"context"
	"errors"
	"sync"
)

// Sentinel errors.
var (
	ErrSaturated = errors.New("worker pool queue is full")
	ErrClosed    = errors.New("worker pool is closed")
)

type task struct {
	fn   func()
	done chan struct{}
}

// Pool runs submitted functions on a fixed number of workers.
// The zero value is not usable; use New.
type Pool struct {
	queue chan task
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a pool with the given number of workers and queue slots.
// Workers and queue sizes below 1 are raised to 1.
func New(workers, queue int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queue < 1 {
		queue = 1
	}

	p := &Pool{queue: make(chan task, queue)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.queue {
		t.fn()
		close(t.done)
	}
}

// Do submits fn and waits for it to finish. It returns ErrSaturated
// without blocking when all queue slots are taken, ErrClosed after
// Close, and the context error if ctx ends before fn completes. In the
// context case fn may still run to completion in the background; the
// caller must not read results it would have produced.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := task{fn: fn, done: make(chan struct{})}
	if err := p.submit(t); err != nil {
		return err
	}

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Go submits fn without waiting for completion. Queue-full and
// closed-pool conditions are reported like Do.
func (p *Pool) Go(fn func()) error {
	return p.submit(task{fn: fn, done: make(chan struct{})})
}

func (p *Pool) submit(t task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- t:
		return nil
	default:
		return ErrSaturated
	}
}

// Depth reports the number of queued tasks not yet picked up by a
// worker. Intended for gauges; the value is immediately stale.
func (p *Pool) Depth() int {
	return len(p.queue)
}

// Close stops accepting work and waits for queued tasks to finish.
// Safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}
