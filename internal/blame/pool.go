package blame

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// queueFactor sizes the job queue relative to the number of workers.
const queueFactor = 16

// pool runs background jobs on a fixed set of workers. Submit never blocks:
// once the queue is full the job runs on its own goroutine instead.
type pool struct {
	log *slog.Logger

	mu     sync.RWMutex
	closed bool
	jobs   chan func()

	workers  errgroup.Group
	overflow sync.WaitGroup
}

func newPool(workers int, log *slog.Logger) *pool {
	if workers < 1 {
		workers = 1
	}
	p := &pool{
		log:  log,
		jobs: make(chan func(), workers*queueFactor),
	}
	for range workers {
		p.workers.Go(func() error {
			for job := range p.jobs {
				p.run(job)
			}
			return nil
		})
	}
	log.Debug("worker pool ready", slog.Int("workers", workers))
	return p
}

// Submit schedules job. It reports false once the pool is closed.
func (p *pool) Submit(job func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job:
	default:
		p.log.Debug("worker queue full, running job on a new goroutine")
		p.overflow.Add(1)
		go func() {
			defer p.overflow.Done()
			p.run(job)
		}()
	}
	return true
}

func (p *pool) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("background job panicked", slog.Any("panic", r))
		}
	}()
	job()
}

// Close stops accepting jobs, drains the queue and waits for running jobs.
func (p *pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	_ = p.workers.Wait()
	p.overflow.Wait()
	p.log.Debug("worker pool shut down")
}
