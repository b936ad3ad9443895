// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package evaluation

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ja-redact/internal/detector"
	"ja-redact/internal/observability"
)

// Detector returns the spans that redaction would replace.
type Detector interface {
	Detect(ctx context.Context, text string) ([]detector.Span, error)
}

// DocumentReader loads the text of a document.
type DocumentReader interface {
	ReadDocument(path string) (string, error)
}

// FileResult is the score of one document.
type FileResult struct {
	File           string        `json:"file"`
	TotalExpected  int           `json:"total_expected"`
	TotalDetected  int           `json:"total_detected"`
	TP             int           `json:"tp"`
	FP             int           `json:"fp"`
	FN             int           `json:"fn"`
	CommonWordFP   int           `json:"common_word_fp"`
	Precision      float64       `json:"precision"`
	Recall         float64       `json:"recall"`
	F1             float64       `json:"f1"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// FileError records a document that could not be evaluated.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Summary aggregates a run.
type Summary struct {
	Files        []FileResult  `json:"files"`
	Errors       []FileError   `json:"errors,omitempty"`
	TP           int           `json:"tp"`
	FP           int           `json:"fp"`
	FN           int           `json:"fn"`
	CommonWordFP int           `json:"common_word_fp"`
	Precision    float64       `json:"precision"`
	Recall       float64       `json:"recall"`
	F1           float64       `json:"f1"`
	TotalTime    time.Duration `json:"total_time"`
	AverageTime  time.Duration `json:"average_time"`
}

// FilesPerSecond is the throughput of the run.
func (s *Summary) FilesPerSecond() float64 {
	if s.TotalTime <= 0 {
		return 0
	}
	return float64(len(s.Files)) / s.TotalTime.Seconds()
}

// Harness scores a Detector against the reference patterns.
type Harness struct {
	detector    Detector
	reader      DocumentReader
	commonWords map[string]bool
	observer    *observability.StandardObserver
}

// NewHarness creates a harness. commonWords are counted as false positives
// of their own kind when detected.
func NewHarness(d Detector, r DocumentReader, commonWords []string, observer *observability.StandardObserver) *Harness {
	h := &Harness{
		detector:    d,
		reader:      r,
		commonWords: make(map[string]bool, len(commonWords)),
		observer:    observer,
	}
	for _, w := range commonWords {
		h.commonWords[strings.TrimSpace(w)] = true
	}
	return h
}

// EvaluateText scores one document. Values are compared per entity type as
// sets of whitespace-trimmed strings.
func (h *Harness) EvaluateText(ctx context.Context, name, text string) (FileResult, error) {
	start := time.Now()
	res := FileResult{File: name}

	spans, err := h.detector.Detect(ctx, text)
	if err != nil {
		return res, err
	}
	res.ProcessingTime = time.Since(start)

	expected := ExpectedEntities(text)
	detected := make(map[string][]string)
	for _, s := range spans {
		v := strings.TrimSpace(s.Text(text))
		detected[s.EntityType] = append(detected[s.EntityType], v)
		if h.commonWords[v] {
			res.CommonWordFP++
		}
	}
	for _, vs := range expected {
		res.TotalExpected += len(vs)
	}
	res.TotalDetected = len(spans)

	types := make(map[string]bool)
	for t := range expected {
		types[t] = true
	}
	for t := range detected {
		types[t] = true
	}
	for t := range types {
		exp := toSet(expected[t])
		det := toSet(detected[t])
		for v := range det {
			if exp[v] {
				res.TP++
			} else {
				res.FP++
			}
		}
		for v := range exp {
			if !det[v] {
				res.FN++
			}
		}
	}
	res.Precision, res.Recall, res.F1 = scores(res.TP, res.FP, res.FN)
	return res, nil
}

// EvaluateFiles scores each document in order. Unreadable or failing
// documents are reported in Summary.Errors and skipped.
func (h *Harness) EvaluateFiles(ctx context.Context, paths []string, progress func(done, total int)) *Summary {
	finishTiming := h.observer.StartTiming("evaluation", "evaluate_files", "batch")
	sum := &Summary{}

	for i, path := range paths {
		name := filepath.Base(path)
		text, err := h.reader.ReadDocument(path)
		if err == nil {
			var res FileResult
			res, err = h.EvaluateText(ctx, name, text)
			if err == nil {
				sum.Files = append(sum.Files, res)
			}
		}
		if err != nil {
			sum.Errors = append(sum.Errors, FileError{File: name, Error: err.Error()})
		}
		if progress != nil {
			progress(i+1, len(paths))
		}
	}

	for _, r := range sum.Files {
		sum.TP += r.TP
		sum.FP += r.FP
		sum.FN += r.FN
		sum.CommonWordFP += r.CommonWordFP
		sum.TotalTime += r.ProcessingTime
	}
	sum.Precision, sum.Recall, sum.F1 = scores(sum.TP, sum.FP, sum.FN)
	if len(sum.Files) > 0 {
		sum.AverageTime = sum.TotalTime / time.Duration(len(sum.Files))
	}

	finishTiming(true, map[string]interface{}{
		"files":  len(sum.Files),
		"errors": len(sum.Errors),
		"tp":     sum.TP,
		"fp":     sum.FP,
		"fn":     sum.FN,
	})
	return sum
}

// WriteDetails writes the per-file results followed by the totals.
func WriteDetails(w io.Writer, sum *Summary) error {
	rule := strings.Repeat("=", 80)
	var b strings.Builder

	fmt.Fprintf(&b, "Evaluation details\n%s\n\n", rule)
	for _, r := range sum.Files {
		fmt.Fprintf(&b, "File: %s\n", r.File)
		fmt.Fprintf(&b, "  TP: %d, FP: %d, FN: %d, common-word FP: %d\n", r.TP, r.FP, r.FN, r.CommonWordFP)
		fmt.Fprintf(&b, "  Precision: %.2f%%, Recall: %.2f%%, F1: %.2f%%\n", r.Precision*100, r.Recall*100, r.F1*100)
		fmt.Fprintf(&b, "  Processing time: %.2fms\n\n", ms(r.ProcessingTime))
	}

	errs := append([]FileError(nil), sum.Errors...)
	sort.Slice(errs, func(i, j int) bool { return errs[i].File < errs[j].File })
	for _, e := range errs {
		fmt.Fprintf(&b, "Error: %s: %s\n", e.File, e.Error)
	}

	fmt.Fprintf(&b, "\n%s\nTotals\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Precision: %.2f%%\n", sum.Precision*100)
	fmt.Fprintf(&b, "Recall: %.2f%%\n", sum.Recall*100)
	fmt.Fprintf(&b, "F1-Score: %.2f%%\n", sum.F1*100)
	fmt.Fprintf(&b, "Average processing time: %.2fms/file\n", ms(sum.AverageTime))

	_, err := io.WriteString(w, b.String())
	return err
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// scores returns precision, recall and F1, each 0 when undefined.
func scores(tp, fp, fn int) (precision, recall, f1 float64) {
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if d := 2*tp + fp + fn; d > 0 {
		f1 = float64(2*tp) / float64(d)
	}
	return precision, recall, f1
}
