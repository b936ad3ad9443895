// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ja-redact/internal/evaluation"
	"ja-redact/internal/formatters"
	"ja-redact/internal/formatters/shared"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable batch summary with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

// paint colors s unless colors are disabled.
func (f *Formatter) paint(name string, noColor bool, format string, args ...interface{}) string {
	if noColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

func (f *Formatter) Format(report *formatters.Report, options formatters.FormatterOptions) (string, error) {
	if options.NoColor {
		color.NoColor = true
	}

	var b strings.Builder
	s := report.Summary

	if files := shared.VisibleFiles(report, options); len(files) > 0 {
		f.appendFiles(&b, files, options)
		b.WriteString("\n")
	}

	status := f.paint("green", options.NoColor, "redacted %d files", s.RedactedFiles)
	if s.FailedFiles > 0 {
		status += ", " + f.paint("red", options.NoColor, "%d failed", s.FailedFiles)
	}
	fmt.Fprintf(&b, "%s (%d redactions in %s, %d workers)\n",
		status, s.TotalRedactions, formatDuration(s.DurationMS), s.WorkerCount)

	entities := shared.SortedEntities(s.Entities)
	if len(entities) > 0 {
		b.WriteString(f.paint("white", options.NoColor, "%-20s %8s\n", "ENTITY", "COUNT"))
		for _, e := range entities {
			fmt.Fprintf(&b, "%s %8d\n", f.paint("cyan", options.NoColor, "%-20s", e.EntityType), e.Count)
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// appendFiles writes one line per document: status, redactions, path and,
// for failures, the cause.
func (f *Formatter) appendFiles(b *strings.Builder, files []formatters.FileReport, options formatters.FormatterOptions) {
	for _, file := range files {
		if file.Failed() {
			fmt.Fprintf(b, "%s %s: %s\n",
				f.paint("red", options.NoColor, "[%-8s]", "FAILED"),
				f.paint("white", options.NoColor, "%s", filepath.Base(file.Path)),
				file.Error)
			continue
		}
		line := fmt.Sprintf("%s %s %s",
			f.paint("green", options.NoColor, "[%-8s]", "REDACTED"),
			f.paint("blue", options.NoColor, "%5d", file.Redactions),
			filepath.Base(file.Path))
		if file.Output != "" {
			line += " -> " + f.paint("magenta", options.NoColor, "%s", file.Output)
		}
		b.WriteString(line + "\n")
	}
}

// FormatEvaluation renders the totals of an evaluation run.
func (f *Formatter) FormatEvaluation(sum *evaluation.Summary, options formatters.FormatterOptions) string {
	if options.NoColor {
		color.NoColor = true
	}

	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString(f.paint("white", options.NoColor, "%s\nEvaluation results\n%s\n", rule, rule))
	fmt.Fprintf(&b, "Files evaluated: %d\n", len(sum.Files))
	if len(sum.Errors) > 0 {
		fmt.Fprintf(&b, "Files skipped:   %s\n", f.paint("red", options.NoColor, "%d", len(sum.Errors)))
	}
	fmt.Fprintf(&b, "True positives:  %d\n", sum.TP)
	fmt.Fprintf(&b, "False positives: %d (common words: %d)\n", sum.FP, sum.CommonWordFP)
	fmt.Fprintf(&b, "False negatives: %d\n\n", sum.FN)

	fmt.Fprintf(&b, "Precision: %s\n", f.percent(sum.Precision, options))
	fmt.Fprintf(&b, "Recall:    %s\n", f.percent(sum.Recall, options))
	fmt.Fprintf(&b, "F1-Score:  %s\n\n", f.percent(sum.F1, options))

	fmt.Fprintf(&b, "Total time:   %s\n", sum.TotalTime.Round(time.Millisecond))
	fmt.Fprintf(&b, "Average time: %.2fms/file\n", float64(sum.AverageTime)/float64(time.Millisecond))
	fmt.Fprintf(&b, "Throughput:   %.2f files/s", sum.FilesPerSecond())
	return b.String()
}

func (f *Formatter) percent(v float64, options formatters.FormatterOptions) string {
	name := "green"
	switch {
	case v < 0.5:
		name = "red"
	case v < 0.8:
		name = "yellow"
	}
	return f.paint(name, options.NoColor, "%6.2f%%", v*100)
}

func formatDuration(msec float64) string {
	return time.Duration(msec * float64(time.Millisecond)).Round(time.Millisecond).String()
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
