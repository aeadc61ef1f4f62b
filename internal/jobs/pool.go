package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Pool runs jobs on a fixed set of workers fed by a bounded queue.
type Pool struct {
	orch   *Orchestrator
	queue  chan Job
	wg     sync.WaitGroup
	logger hclog.Logger

	mu     sync.Mutex
	closed bool
}

// NewPool starts the workers immediately.
func NewPool(ctx context.Context, orch *Orchestrator, workers, queueSize int, logger hclog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	p := &Pool{
		orch:   orch,
		queue:  make(chan Job, queueSize),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	return p
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for job := range p.queue {
		// Run reports the failure itself; the worker only keeps going.
		_ = p.orch.Run(ctx, job)
	}
}

// Submit persists the job in its queued state and enqueues it, blocking
// while the queue is full. The mutex is held across the send so Close can
// never close the queue while a send is in flight.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("job pool is closed")
	}
	p.orch.snapshot(NewRecord(job))
	p.queue <- job
	return nil
}

// Close stops accepting jobs and waits for queued work to drain. Workers
// consume the queue without the mutex, so a Submit blocked on a full queue
// still drains before Close gets to close the channel.
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
