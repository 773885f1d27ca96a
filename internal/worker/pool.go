package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Job is a unit of background work. Errors are logged, never returned to the
// submitter.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool runs submitted jobs on a fixed number of goroutines. With a single
// worker, jobs run in submission order.
type Pool struct {
	logger *zap.Logger
	count  int
	jobs   chan Job
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
}

func NewPool(logger *zap.Logger, count, queue int) *Pool {
	if count < 1 {
		count = 1
	}
	return &Pool{
		logger: logger,
		count:  count,
		jobs:   make(chan Job, queue),
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.logger.Debug("starting worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Submit queues a job. It returns false when the pool is stopped or the queue
// is full; the job is dropped in both cases.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		p.logger.Warn("worker queue full, dropping job", zap.String("job", job.Name))
		return false
	}
}

// Stop refuses new jobs, lets the workers finish everything already queued
// and waits for them to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Debug("worker pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		if err := job.Run(ctx); err != nil {
			p.logger.Warn("job failed",
				zap.Int("worker", id),
				zap.String("job", job.Name),
				zap.Error(err),
			)
		}
	}
}
