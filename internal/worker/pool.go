// Package worker runs conversion jobs on a bounded set of goroutines.
package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"megrep/pkg/logger"
	"megrep/pkg/results"
)

// Job is a single input to convert. Index is its position in the batch.
type Job struct {
	Index int
	Input string
}

// Result is the outcome of a job
type Result struct {
	Job      Job
	Result   results.ConversionResult
	Duration time.Duration
}

// Processor converts one input. It must not panic and must report failures
// inside the returned result.
type Processor interface {
	Process(ctx context.Context, input string) results.ConversionResult
}

// ProcessorFunc adapts a function to Processor
type ProcessorFunc func(ctx context.Context, input string) results.ConversionResult

// Process calls f
func (f ProcessorFunc) Process(ctx context.Context, input string) results.ConversionResult {
	return f(ctx, input)
}

// Pool manages concurrent conversion workers
type Pool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	processor   Processor
	logger      logger.Logger
	stopOnce    sync.Once
}

// NewPool creates a pool with numWorkers workers, at least one
func NewPool(numWorkers int, processor Processor, log logger.Logger) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Pool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		processor:   processor,
		logger:      log.WithField("component", "worker"),
	}
}

// Start launches the workers. Jobs run with ctx; cancelling it stops
// workers from picking up further jobs.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop closes the queue and waits for running jobs to finish
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobQueue)
		p.wg.Wait()
		close(p.resultQueue)
		p.cancel()
		p.logger.Debug("Worker pool stopped")
	})
}

// Submit queues a job
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel
func (p *Pool) Results() <-chan Result {
	return p.resultQueue
}

// RunBatch submits every input and waits for all of them, returning the
// results in input order. Each input is handed to exactly one worker.
func (p *Pool) RunBatch(inputs []string) []Result {
	go func() {
		for i, input := range inputs {
			if err := p.Submit(Job{Index: i, Input: input}); err != nil {
				return
			}
		}
	}()

	collected := make([]Result, 0, len(inputs))
collect:
	for len(collected) < len(inputs) {
		select {
		case r := <-p.resultQueue:
			collected = append(collected, r)
		case <-p.ctx.Done():
			break collect
		}
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].Job.Index < collected[j].Job.Index
	})
	return collected
}

// NumWorkers returns the number of workers
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		result := p.process(job, id)

		select {
		case p.resultQueue <- result:
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) process(job Job, workerID int) Result {
	start := time.Now()
	r := p.processor.Process(p.ctx, job.Input)

	res := Result{Job: job, Result: r, Duration: time.Since(start)}
	p.logger.DebugWithFields("Worker finished job", map[string]interface{}{
		"worker_id": workerID,
		"input":     job.Input,
		"duration":  res.Duration,
	})
	return res
}
