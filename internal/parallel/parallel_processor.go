// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"ja-redact/internal/observability"
	"ja-redact/internal/redactors"
)

// ParallelProcessor fans a batch of documents out to a worker pool.
type ParallelProcessor struct {
	workers  int
	redactor DocumentRedactor
	observer *observability.StandardObserver
}

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalFiles      int            `json:"total_files"`
	RedactedFiles   int            `json:"redacted_files"`
	FailedFiles     int            `json:"failed_files"`
	TotalRedactions int            `json:"total_redactions"`
	Entities        map[string]int `json:"entities"`
	TotalDuration   time.Duration  `json:"total_duration_ns"`
	WorkerCount     int            `json:"worker_count"`
	AvgFileTime     time.Duration  `json:"avg_file_time_ns"`
}

// DefaultWorkers is the CPU count capped at 8.
func DefaultWorkers() int {
	return min(runtime.NumCPU(), 8)
}

// NewParallelProcessor creates a new parallel processor. workers < 1 selects
// DefaultWorkers.
func NewParallelProcessor(workers int, redactor DocumentRedactor, observer *observability.StandardObserver) *ParallelProcessor {
	if workers < 1 {
		workers = DefaultWorkers()
	}
	return &ParallelProcessor{
		workers:  workers,
		redactor: redactor,
		observer: observer,
	}
}

// ProgressCallback is called in completion order after each document.
type ProgressCallback func(completed, total int, outcome redactors.Outcome)

// ProcessFiles processes multiple files in parallel
func (pp *ParallelProcessor) ProcessFiles(ctx context.Context, filePaths []string) ([]redactors.Outcome, *ProcessingStats) {
	return pp.ProcessFilesWithProgress(ctx, filePaths, nil)
}

// ProcessFilesWithProgress runs every file and returns the outcomes in input
// order. A failed document never stops the batch.
func (pp *ParallelProcessor) ProcessFilesWithProgress(ctx context.Context, filePaths []string, progressCallback ProgressCallback) ([]redactors.Outcome, *ProcessingStats) {
	start := time.Now()
	finishTiming := pp.observer.StartTiming("parallel_processor", "process_files", "batch")

	pool := NewWorkerPool(ctx, min(pp.workers, max(len(filePaths), 1)), pp.redactor, pp.observer)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, filePath := range filePaths {
			if !pool.Submit(&Job{FilePath: filePath, JobID: fmt.Sprintf("job_%d", i), Index: i}) {
				return
			}
		}
	}()
	go pool.Stop()

	outcomes := make([]redactors.Outcome, len(filePaths))
	stats := &ProcessingStats{
		TotalFiles:  len(filePaths),
		WorkerCount: pool.Workers(),
		Entities:    make(map[string]int),
	}

	var fileTime time.Duration
	completed := 0
	for result := range pool.Results() {
		o := result.Outcome
		outcomes[result.Index] = o
		completed++

		if o.Status == redactors.OutcomeRedacted {
			stats.RedactedFiles++
			stats.TotalRedactions += o.Redactions
			for entity, n := range o.Entities {
				stats.Entities[entity] += n
			}
		} else {
			stats.FailedFiles++
		}
		fileTime += o.Duration

		if progressCallback != nil {
			progressCallback(completed, len(filePaths), o)
		}
	}

	// Files never submitted because the context ended
	for i := range outcomes {
		if outcomes[i].Path == "" {
			outcomes[i] = redactors.Outcome{
				Path:   filePaths[i],
				Status: redactors.OutcomeFailed,
				Err:    redactors.NewRedactionError(redactors.ErrorRead, "not processed", filePaths[i], "parallel_processor", ctx.Err()),
			}
			stats.FailedFiles++
		}
	}

	stats.TotalDuration = time.Since(start)
	stats.AvgFileTime = fileTime / time.Duration(max(completed, 1))

	finishTiming(true, map[string]interface{}{
		"total_files":      stats.TotalFiles,
		"redacted_files":   stats.RedactedFiles,
		"failed_files":     stats.FailedFiles,
		"total_redactions": stats.TotalRedactions,
		"worker_count":     stats.WorkerCount,
	})
	return outcomes, stats
}
