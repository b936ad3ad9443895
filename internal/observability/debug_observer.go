// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DebugObserver provides detailed step-by-step debugging. Steps nest; the
// depth is reported on every entry. Workers share one observer, so depth is
// only meaningful with a single worker.
type DebugObserver struct {
	*StandardObserver
	depth atomic.Int32
}

// NewDebugObserver creates a debug observer with step-by-step logging
func NewDebugObserver(logger zerolog.Logger) *DebugObserver {
	return &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, logger),
	}
}

// StartStep begins a processing step
func (d *DebugObserver) StartStep(component, step, filePath string) func(success bool, details string) {
	if d == nil {
		return func(bool, string) {}
	}
	start := time.Now()
	depth := d.depth.Add(1) - 1
	d.logger.Debug().
		Str("component", component).
		Str("step", step).
		Str("file_path", filePath).
		Int32("depth", depth).
		Msg("step started")

	return func(success bool, details string) {
		d.depth.Add(-1)
		ev := d.logger.Debug()
		if !success {
			ev = d.logger.Warn()
		}
		ev.Str("component", component).
			Str("step", step).
			Str("file_path", filePath).
			Int32("depth", depth).
			Bool("success", success).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("details", details).
			Msg("step finished")
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	if d == nil {
		return
	}
	d.logger.Debug().Str("component", component).Int32("depth", d.depth.Load()).Msg(detail)
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	if d == nil {
		return
	}
	d.logger.Debug().Str("component", component).Str("metric", metric).Interface("value", value).Msg("metric")
}
