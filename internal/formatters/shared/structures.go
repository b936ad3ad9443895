// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"sort"

	"ja-redact/internal/formatters"
)

// EntityCount is one row of an entity breakdown.
type EntityCount struct {
	EntityType string `json:"entity_type" yaml:"entity_type"`
	Count      int    `json:"count" yaml:"count"`
}

// SortedEntities orders an entity breakdown by count, then by name.
func SortedEntities(entities map[string]int) []EntityCount {
	out := make([]EntityCount, 0, len(entities))
	for t, n := range entities {
		out = append(out, EntityCount{EntityType: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].EntityType < out[j].EntityType
	})
	return out
}

// VisibleFiles returns every document in verbose mode and only the failures
// otherwise.
func VisibleFiles(report *formatters.Report, options formatters.FormatterOptions) []formatters.FileReport {
	if options.Verbose {
		return report.Files
	}
	return report.Failures()
}

// DocumentResponse is the machine-readable form shared by the JSON and YAML
// formatters.
type DocumentResponse struct {
	Tool        string                  `json:"tool" yaml:"tool"`
	Version     string                  `json:"version" yaml:"version"`
	GeneratedAt string                  `json:"generated_at" yaml:"generated_at"`
	Summary     formatters.BatchSummary `json:"summary" yaml:"summary"`
	Entities    []EntityCount           `json:"entity_breakdown" yaml:"entity_breakdown"`
	Files       []formatters.FileReport `json:"files" yaml:"files"`
}

// ConvertReport builds the response; Files follows VisibleFiles.
func ConvertReport(report *formatters.Report, options formatters.FormatterOptions) DocumentResponse {
	files := VisibleFiles(report, options)
	if files == nil {
		files = []formatters.FileReport{}
	}
	return DocumentResponse{
		Tool:        report.Tool,
		Version:     report.Version,
		GeneratedAt: report.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Summary:     report.Summary,
		Entities:    SortedEntities(report.Summary.Entities),
		Files:       files,
	}
}
