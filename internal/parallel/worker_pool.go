// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"sync"

	"ja-redact/internal/observability"
	"ja-redact/internal/redactors"
)

// DocumentRedactor processes one document. *redactors.Pipeline implements it.
type DocumentRedactor interface {
	RedactFile(ctx context.Context, path string) redactors.Outcome
}

// WorkerPool runs documents through a DocumentRedactor on a fixed number of
// goroutines. Documents share nothing but the redactor, which must be safe
// for concurrent use.
type WorkerPool struct {
	workers  int
	jobs     chan *Job
	results  chan *Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	observer *observability.StandardObserver
	redactor DocumentRedactor
}

// Job represents a file processing task
type Job struct {
	FilePath string
	JobID    string

	// Index is the position of the file in the submitted batch
	Index int
}

// Result represents processing results
type Result struct {
	JobID   string
	Index   int
	Outcome redactors.Outcome
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(ctx context.Context, workers int, redactor DocumentRedactor, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workers:  workers,
		jobs:     make(chan *Job, workers*2),
		results:  make(chan *Result, workers*2),
		ctx:      ctx,
		cancel:   cancel,
		observer: observer,
		redactor: redactor,
	}
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Close signals that no more jobs will be submitted.
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Stop waits for the workers to drain the queue and closes Results.
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit adds a job to the queue. It blocks while the queue is full and
// gives up when the pool's context ends.
func (wp *WorkerPool) Submit(job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		result := wp.processJob(job, id)
		wp.results <- result
	}
}

// processJob runs one document. A cancelled pool still yields a Result so
// the collector sees every submitted job.
func (wp *WorkerPool) processJob(job *Job, workerID int) *Result {
	finishTiming := wp.observer.StartTiming("worker_pool", "process_job", job.FilePath)

	outcome := wp.redactor.RedactFile(wp.ctx, job.FilePath)

	meta := map[string]interface{}{
		"worker_id":  workerID,
		"job_id":     job.JobID,
		"redactions": outcome.Redactions,
	}
	if outcome.Err != nil {
		meta["error"] = outcome.Err.Error()
	}
	finishTiming(outcome.Status == redactors.OutcomeRedacted, meta)

	return &Result{
		JobID:   job.JobID,
		Index:   job.Index,
		Outcome: outcome,
	}
}
