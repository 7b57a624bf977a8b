package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type queuedJob struct {
	seq int
	job Job
}

type queuedResult struct {
	seq    int
	result Result
}

// Pool runs jobs on a fixed number of workers. Results are collected while
// jobs are still being submitted and returned in submission order.
type Pool struct {
	workers    int
	jobQueue   chan queuedJob
	results    chan queuedResult
	wg         sync.WaitGroup
	collected  chan []Result
	submitted  int
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a new worker pool bound to ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan queuedJob, workers*2),
		results:    make(chan queuedResult, workers*2),
		collected:  make(chan []Result, 1),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case qj, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := qj.job.Execute(p.ctx)
			select {
			case p.results <- queuedResult{seq: qj.seq, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// collect drains results until the channel closes
func (p *Pool) collect() {
	var ordered []Result
	for qr := range p.results {
		for len(ordered) <= qr.seq {
			ordered = append(ordered, nil)
		}
		ordered[qr.seq] = qr.result
	}

	results := make([]Result, 0, len(ordered))
	for _, r := range ordered {
		if r != nil {
			results = append(results, r)
		}
	}
	p.collected <- results
}

// Submit queues a job. It returns without queuing once the pool is shut down.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- queuedJob{seq: p.submitted, job: job}:
		p.submitted++
	}
}

// Wait waits for all submitted jobs and returns their results in submission
// order. Jobs cancelled by Shutdown produce no result.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	results := <-p.collected
	p.cancelFunc()
	return results
}

// Shutdown cancels running jobs and stops the workers
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
