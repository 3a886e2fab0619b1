package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRunAllExecutesEveryJob(t *testing.T) {
	pool := NewPool(3, 8)
	defer pool.Close()

	var ran int64
	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			atomic.AddInt64(&ran, 1)
			return nil
		}
	}
	if err := pool.RunAll(context.Background(), jobs); err != nil {
		t.Fatalf("run all: %v", err)
	}
	if got := atomic.LoadInt64(&ran); got != 20 {
		t.Fatalf("expected 20 jobs run, got %d", got)
	}
}

func TestRunAllReturnsFirstError(t *testing.T) {
	pool := NewPool(2, 4)
	defer pool.Close()

	boom := errors.New("embed failed")
	jobs := []Job{
		func(context.Context) error { return nil },
		func(context.Context) error { return boom },
		func(context.Context) error { return nil },
	}
	if err := pool.RunAll(context.Background(), jobs); !errors.Is(err, boom) {
		t.Fatalf("expected embed error, got %v", err)
	}
}

func TestRunAllHonorsCancelledContext(t *testing.T) {
	pool := NewPool(1, 0)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pool.RunAll(ctx, []Job{
		func(context.Context) error { return nil },
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestRunAllBoundsConcurrency(t *testing.T) {
	const workers = 2
	pool := NewPool(workers, 16)
	defer pool.Close()

	var mu sync.Mutex
	inFlight, peak := 0, 0

	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil
		}
	}
	if err := pool.RunAll(context.Background(), jobs); err != nil {
		t.Fatalf("run all: %v", err)
	}
	if peak > workers {
		t.Fatalf("observed %d concurrent jobs with %d workers", peak, workers)
	}
}
