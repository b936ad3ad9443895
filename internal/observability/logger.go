// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggerOptions configures the process logger.
type LoggerOptions struct {
	// trace, debug, info, warn, error or off
	Level string

	// console or json
	Format string

	Writer io.Writer
}

// NewLogger builds a zerolog logger. Console output goes to stderr by
// default so redacted text written to stdout stays clean.
func NewLogger(opt LoggerOptions) zerolog.Logger {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(opt.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level; unknown names mean info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// LevelFor maps an observability level to the logger level it needs.
func LevelFor(level ObservabilityLevel) string {
	switch level {
	case ObservabilityOff:
		return "warn"
	case ObservabilityDebug:
		return "debug"
	default:
		return "info"
	}
}
