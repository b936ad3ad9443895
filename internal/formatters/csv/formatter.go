// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"ja-redact/internal/formatters"
	"ja-redact/internal/formatters/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values, one row per document"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

// Format writes every document regardless of Verbose; spreadsheets filter
// on the status column.
func (f *Formatter) Format(report *formatters.Report, options formatters.FormatterOptions) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	headers := []string{"Path", "Status", "Redactions", "Entities", "Output", "Error Type", "Error", "Duration ms"}
	if err := w.Write(headers); err != nil {
		return "", err
	}

	for _, file := range report.Files {
		row := []string{
			file.Path,
			file.Status,
			strconv.Itoa(file.Redactions),
			entityCell(file.Entities),
			file.Output,
			file.ErrorType,
			file.Error,
			strconv.FormatFloat(file.DurationMS, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// entityCell renders "PERSON=2;EMAIL_ADDRESS=1", most frequent first.
func entityCell(entities map[string]int) string {
	parts := make([]string, 0, len(entities))
	for _, e := range shared.SortedEntities(entities) {
		parts = append(parts, fmt.Sprintf("%s=%d", e.EntityType, e.Count))
	}
	return strings.Join(parts, ";")
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
