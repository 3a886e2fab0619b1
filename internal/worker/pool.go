package worker

import (
	"context"
	"sync"
)

// Job is one unit of work submitted to the pool.
type Job func(ctx context.Context) error

// Pool runs submitted jobs on a fixed set of workers. It bounds the
// concurrency of embedding calls during document indexing so a large upload
// cannot fan out an unbounded number of upstream requests.
type Pool struct {
	jobs chan queuedJob
	wg   sync.WaitGroup

	closeOnce sync.Once
}

type queuedJob struct {
	ctx  context.Context
	job  Job
	done chan error
}

// NewPool starts workers goroutines consuming from a queue of queueSize.
func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{jobs: make(chan queuedJob, queueSize)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for queued := range p.jobs {
		select {
		case <-queued.ctx.Done():
			queued.done <- queued.ctx.Err()
		default:
			queued.done <- queued.job(queued.ctx)
		}
	}
}

// RunAll executes all jobs through the pool and blocks until every one has
// finished, returning the first error observed. Jobs already queued still run
// after a failure; RunAll never abandons an in-flight job.
func (p *Pool) RunAll(ctx context.Context, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}
	done := make(chan error, len(jobs))
	go func() {
		for _, job := range jobs {
			p.jobs <- queuedJob{ctx: ctx, job: job, done: done}
		}
	}()

	var firstErr error
	for range jobs {
		if err := <-done; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close stops the workers after the queue drains. Close must not be called
// while a RunAll is in flight; the owner serializes shutdown behind the last
// RunAll.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
