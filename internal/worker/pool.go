package worker

import (
	"context"
	"sort"
	"sync"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job
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

// Pool runs jobs on a fixed number of goroutines and returns results in
// submission order
type Pool struct {
	workers   int
	jobQueue  chan queuedJob
	results   chan queuedResult
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	nextSeq   int
	collected []queuedResult
	collectWG sync.WaitGroup
	closeOnce sync.Once
}

// NewPool creates a new pool bound to ctx. Cancelling ctx stops the workers.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:  workers,
		jobQueue: make(chan queuedJob, workers*2),
		results:  make(chan queuedResult, workers*2),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers and the result collector. Results are drained
// as they arrive so Submit never blocks on an unread result.
func (p *Pool) Start() {
	p.collectWG.Add(1)
	go func() {
		defer p.collectWG.Done()
		for r := range p.results {
			p.collected = append(p.collected, r)
		}
	}()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case queued, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := queued.job.Execute(p.ctx)
			select {
			case p.results <- queuedResult{seq: queued.seq, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It returns false once the pool is cancelled.
// Submit must not be called concurrently with Wait.
func (p *Pool) Submit(job Job) bool {
	// A cancelled pool may still have room in the queue; select would then
	// pick either case at random.
	if p.ctx.Err() != nil {
		return false
	}
	queued := queuedJob{seq: p.nextSeq, job: job}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- queued:
		p.nextSeq++
		return true
	}
}

// Wait closes the queue, waits for the workers and returns the results in
// submission order. Jobs dropped by cancellation have no result.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
	p.cancel()

	collected := p.collected

	sort.Slice(collected, func(i, j int) bool { return collected[i].seq < collected[j].seq })

	results := make([]Result, len(collected))
	for i, r := range collected {
		results[i] = r.result
	}
	return results
}

// Shutdown cancels in-flight work and stops the workers
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
