package workpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoRunsFunction(t *testing.T) {
	p := New(2, 4)
	defer p.Close()

	var ran atomic.Bool
	err := p.Do(context.Background(), func() { ran.Store(true) })

	if err != nil {
		t.Fatalf("Do() error = %v, want nil", err)
	}
	if !ran.Load() {
		t.Fatal("submitted function did not run")
	}
}

func TestDoSaturation(t *testing.T) {
	p := New(1, 1)
	defer p.Close()

	block := make(chan struct{})
	defer close(block)

	// Occupy the single worker.
	if err := p.Go(func() { <-block }); err != nil {
		t.Fatalf("Go() error = %v, want nil", err)
	}
	// Wait for the worker to pick the task up, then fill the queue slot.
	waitForDepth(t, p, 0)
	if err := p.Go(func() {}); err != nil {
		t.Fatalf("Go() error = %v, want nil", err)
	}

	err := p.Do(context.Background(), func() {})
	if !errors.Is(err, ErrSaturated) {
		t.Fatalf("Do() error = %v, want ErrSaturated", err)
	}
}

func TestDoContextCancelled(t *testing.T) {
	p := New(1, 2)
	defer p.Close()

	block := make(chan struct{})
	defer close(block)

	if err := p.Go(func() { <-block }); err != nil {
		t.Fatalf("Go() error = %v, want nil", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Do(ctx, func() {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do() error = %v, want DeadlineExceeded", err)
	}
}

func TestDoAfterClose(t *testing.T) {
	p := New(1, 1)
	p.Close()

	err := p.Do(context.Background(), func() {})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Do() after Close error = %v, want ErrClosed", err)
	}
}

func TestCloseWaitsForQueued(t *testing.T) {
	p := New(1, 4)

	var count atomic.Int32
	for i := 0; i < 4; i++ {
		if err := p.Go(func() { count.Add(1) }); err != nil {
			t.Fatalf("Go() error = %v, want nil", err)
		}
	}

	p.Close()

	if got := count.Load(); got != 4 {
		t.Fatalf("completed tasks = %d, want 4", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	p := New(1, 1)
	p.Close()
	p.Close()
}

// waitForDepth polls until the queue depth drops to want.
func waitForDepth(t *testing.T, p *Pool, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for p.Depth() > want {
		if time.Now().After(deadline) {
			t.Fatalf("queue depth %d did not reach %d", p.Depth(), want)
		}
		time.Sleep(time.Millisecond)
	}
}
