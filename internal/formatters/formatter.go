// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ja-redact/internal/parallel"
	"ja-redact/internal/redactors"
	"ja-redact/internal/version"
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	Verbose bool // List every document, not only failures
	NoColor bool // Whether to disable colored output
}

// FileReport is one document of a batch run.
type FileReport struct {
	Path       string         `json:"path" yaml:"path"`
	Output     string         `json:"output,omitempty" yaml:"output,omitempty"`
	Audit      string         `json:"audit,omitempty" yaml:"audit,omitempty"`
	Status     string         `json:"status" yaml:"status"`
	ErrorType  string         `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
	Redactions int            `json:"redactions" yaml:"redactions"`
	Entities   map[string]int `json:"entities,omitempty" yaml:"entities,omitempty"`
	DurationMS float64        `json:"duration_ms" yaml:"duration_ms"`
}

// Failed reports whether the document was not redacted.
func (f FileReport) Failed() bool {
	return f.Status == redactors.OutcomeFailed.String()
}

// BatchSummary holds the totals of a batch run.
type BatchSummary struct {
	TotalFiles      int            `json:"total_files" yaml:"total_files"`
	RedactedFiles   int            `json:"redacted_files" yaml:"redacted_files"`
	FailedFiles     int            `json:"failed_files" yaml:"failed_files"`
	TotalRedactions int            `json:"total_redactions" yaml:"total_redactions"`
	Entities        map[string]int `json:"entities" yaml:"entities"`
	WorkerCount     int            `json:"worker_count" yaml:"worker_count"`
	DurationMS      float64        `json:"duration_ms" yaml:"duration_ms"`
	AvgFileMS       float64        `json:"avg_file_ms" yaml:"avg_file_ms"`
}

// Report is what every formatter renders.
type Report struct {
	Tool        string       `json:"tool" yaml:"tool"`
	Version     string       `json:"version" yaml:"version"`
	GeneratedAt time.Time    `json:"generated_at" yaml:"generated_at"`
	Summary     BatchSummary `json:"summary" yaml:"summary"`
	Files       []FileReport `json:"files" yaml:"files"`
}

// NewReport converts the outcomes of a batch run. Files keep input order.
func NewReport(outcomes []redactors.Outcome, stats *parallel.ProcessingStats) *Report {
	r := &Report{
		Tool:        version.Name,
		Version:     version.Short(),
		GeneratedAt: time.Now().UTC(),
		Files:       make([]FileReport, 0, len(outcomes)),
	}
	if stats != nil {
		r.Summary = BatchSummary{
			TotalFiles:      stats.TotalFiles,
			RedactedFiles:   stats.RedactedFiles,
			FailedFiles:     stats.FailedFiles,
			TotalRedactions: stats.TotalRedactions,
			Entities:        stats.Entities,
			WorkerCount:     stats.WorkerCount,
			DurationMS:      ms(stats.TotalDuration),
			AvgFileMS:       ms(stats.AvgFileTime),
		}
	}
	if r.Summary.Entities == nil {
		r.Summary.Entities = map[string]int{}
	}

	for _, o := range outcomes {
		fr := FileReport{
			Path:       o.Path,
			Output:     o.OutputPath,
			Audit:      o.AuditPath,
			Status:     o.Status.String(),
			Redactions: o.Redactions,
			Entities:   o.Entities,
			DurationMS: ms(o.Duration),
		}
		if o.Err != nil {
			fr.Error = o.Err.Error()
			var re *redactors.RedactionError
			if errors.As(o.Err, &re) {
				fr.ErrorType = re.Type.String()
			}
		}
		r.Files = append(r.Files, fr)
	}
	return r
}

// Failures returns the documents that were not redacted.
func (r *Report) Failures() []FileReport {
	var failed []FileReport
	for _, f := range r.Files {
		if f.Failed() {
			failed = append(failed, f)
		}
	}
	return failed
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders the report in the formatter's specific output format
	Format(report *Report, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format (e.g., ".json", ".txt", ".csv")
	FileExtension() string
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatInfo provides metadata about a formatter
type FormatInfo struct {
	Name        string
	Description string
	Extension   string
	MimeType    string
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export renders the report with the named formatter.
func Export(format string, report *Report, options FormatterOptions) (string, error) {
	formatter, exists := Get(format)
	if !exists {
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	return formatter.Format(report, options)
}

// GetFormatInfo returns metadata about a specific formatter
func GetFormatInfo(name string) FormatInfo {
	formatter, exists := Get(name)
	if !exists {
		return FormatInfo{}
	}

	info := FormatInfo{
		Name:        formatter.Name(),
		Description: formatter.Description(),
		Extension:   formatter.FileExtension(),
	}

	switch name {
	case "json":
		info.MimeType = "application/json"
	case "csv":
		info.MimeType = "text/csv"
	case "yaml":
		info.MimeType = "application/x-yaml"
	case "junit":
		info.MimeType = "application/xml"
	case "text":
		info.MimeType = "text/plain"
	default:
		info.MimeType = "application/octet-stream"
	}

	return info
}
