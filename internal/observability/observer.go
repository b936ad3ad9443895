// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StandardObserver records timed operations for all components. Entries
// carry entity types, offsets and counts; callers must never put matched
// text into metadata.
type StandardObserver struct {
	level  ObservabilityLevel
	logger zerolog.Logger
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, logger zerolog.Logger) *StandardObserver {
	return &StandardObserver{
		level:  level,
		logger: logger,
	}
}

// Level returns the configured observability level.
func (o *StandardObserver) Level() ObservabilityLevel {
	if o == nil {
		return ObservabilityOff
	}
	return o.level
}

// Logger returns the underlying logger.
func (o *StandardObserver) Logger() *zerolog.Logger {
	return &o.logger
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		data := StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		}
		if msg, ok := metadata["error"].(string); ok {
			data.Error = msg
		}
		o.LogOperation(data)
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level == ObservabilityOff {
		return
	}
	if data.RequestID == "" {
		data.RequestID = uuid.NewString()
	}

	ev := o.logger.Debug()
	if !data.Success {
		ev = o.logger.Warn()
	} else if o.level == ObservabilityMetrics {
		ev = o.logger.Info()
	}

	ev = ev.Str("component", data.Component).
		Str("operation", data.Operation).
		Str("request_id", data.RequestID).
		Bool("success", data.Success).
		Int64("duration_ms", data.DurationMs)
	if data.FilePath != "" {
		ev = ev.Str("file_path", data.FilePath)
	}
	if data.Error != "" {
		ev = ev.Str("error", data.Error)
	}
	if data.ContentLength > 0 {
		ev = ev.Int("content_length", data.ContentLength)
	}
	if data.MatchCount > 0 {
		ev = ev.Int("match_count", data.MatchCount)
	}
	if len(data.Metadata) > 0 {
		ev = ev.Fields(data.Metadata)
	}
	ev.Msg(data.Component + " " + data.Operation)
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component     string                 `json:"component"`
	Operation     string                 `json:"operation"`
	RequestID     string                 `json:"request_id"`
	FilePath      string                 `json:"file_path,omitempty"`
	DurationMs    int64                  `json:"duration_ms,omitempty"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	ContentLength int                    `json:"content_length,omitempty"`
	MatchCount    int                    `json:"match_count,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}
