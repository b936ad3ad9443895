// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ja-redact/internal/analyzer"
	"ja-redact/internal/anonymizer"
	"ja-redact/internal/config"
	"ja-redact/internal/detector"
	"ja-redact/internal/enhancer"
	"ja-redact/internal/filter"
	"ja-redact/internal/nlp"
	"ja-redact/internal/observability"
	"ja-redact/internal/preprocessors"
	"ja-redact/internal/version"
)

// OutcomeStatus is the result of processing one document.
type OutcomeStatus int

const (
	OutcomeRedacted OutcomeStatus = iota
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	if s == OutcomeRedacted {
		return "redacted"
	}
	return "failed"
}

// Outcome reports one document. Err is a *RedactionError when Status is
// OutcomeFailed.
type Outcome struct {
	Path       string
	OutputPath string
	AuditPath  string
	Status     OutcomeStatus
	Err        error

	// Redactions is the number of replaced spans; Entities counts them per type
	Redactions int
	Entities   map[string]int

	Duration time.Duration
}

// Trace carries the per-stage counts of one redaction.
type Trace struct {
	Analysis analyzer.Stats
	Filter   filter.Stats
}

// Options control where a Pipeline writes.
type Options struct {
	OutputDir string
	Prefix    string

	// AuditDir enables one JSON audit log per document when set
	AuditDir string
}

// Pipeline redacts documents: read, analyze, filter, anonymize, write. It
// shares only read-only components between calls and is safe for
// concurrent use.
type Pipeline struct {
	preprocessors *preprocessors.PreprocessorManager
	analyzer      *analyzer.Analyzer
	filter        *filter.Filter
	observer      *observability.StandardObserver
	debug         *observability.DebugObserver
	opts          Options
}

// NewPipeline assembles a pipeline from built components. observer and
// debug may be nil.
func NewPipeline(pm *preprocessors.PreprocessorManager, an *analyzer.Analyzer, f *filter.Filter, observer *observability.StandardObserver, debug *observability.DebugObserver, opts Options) *Pipeline {
	return &Pipeline{
		preprocessors: pm,
		analyzer:      an,
		filter:        f,
		observer:      observer,
		debug:         debug,
		opts:          opts,
	}
}

// Build constructs every component from the configuration. The statistical
// recognizer is loaded once here. A returned error is never recoverable.
func Build(cfg *config.Config, opts Options, observer *observability.StandardObserver, debug *observability.DebugObserver) (*Pipeline, error) {
	finishTiming := observer.StartTiming("pipeline", "build", "")

	fail := func(t RedactionErrorType, msg string, err error) (*Pipeline, error) {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, NewRedactionError(t, msg, "", "pipeline", err)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return fail(ErrorConfiguration, "invalid recognizer catalog", err)
	}
	allow, err := cfg.AllowList(time.Now())
	if err != nil {
		return fail(ErrorConfiguration, "invalid allow-list", err)
	}
	f, err := filter.New(cfg.FilterSettings())
	if err != nil {
		return fail(ErrorConfiguration, "invalid filter settings", err)
	}
	external, err := nlp.New(cfg.NLPSettings())
	if err != nil {
		return fail(ErrorInitialization, "failed to start statistical recognizer", err)
	}
	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o750); err != nil {
			return fail(ErrorInitialization, "failed to create output directory", err)
		}
	}

	enh := enhancer.New(cfg.EnhancerSettings(), catalog.ContextTable())
	an := analyzer.New(catalog, external, enh, allow, cfg.AnalyzerSettings())

	finishTiming(true, map[string]interface{}{
		"rules":      len(catalog.Rules()),
		"allow_list": allow.Len(),
		"nlp_engine": cfg.NLP.Engine,
	})
	return NewPipeline(preprocessors.NewDefaultManager(observer), an, f, observer, debug, opts), nil
}

// RedactText runs detection, filtering and anonymization over one text.
func (p *Pipeline) RedactText(ctx context.Context, text string) (anonymizer.Result, Trace, error) {
	var trace Trace

	spans, astats, err := p.analyzer.AnalyzeWithStats(ctx, text)
	trace.Analysis = astats
	if err != nil {
		return anonymizer.Result{}, trace, err
	}
	p.debug.LogMetric("analyzer", "candidates", astats.Kept)

	kept, fstats := p.filter.ApplyWithStats(text, spans)
	trace.Filter = fstats
	p.debug.LogMetric("filter", "kept", fstats.Kept)

	return anonymizer.Anonymize(text, kept), trace, nil
}

// RedactFile redacts one document and writes the result. Failures are
// reported in the Outcome; the caller moves on to the next document.
func (p *Pipeline) RedactFile(ctx context.Context, path string) Outcome {
	start := time.Now()
	out := Outcome{Path: path}

	finishTiming := p.observer.StartTiming("pipeline", "redact_file", path)
	finishStep := p.debug.StartStep("pipeline", "redact_file", path)

	fail := func(t RedactionErrorType, component, msg string, err error) Outcome {
		re := NewRedactionError(t, msg, path, component, err)
		out.Status = OutcomeFailed
		out.Err = re
		out.Duration = time.Since(start)
		finishTiming(false, map[string]interface{}{"error": re.Error(), "error_type": t.String()})
		finishStep(false, re.Error())
		return out
	}

	if err := ctx.Err(); err != nil {
		return fail(ErrorAnalyze, "pipeline", "cancelled", err)
	}

	content, err := p.preprocessors.ProcessFile(path)
	if err != nil {
		return fail(ErrorRead, "preprocessor", "failed to read document", err)
	}

	res, trace, err := p.RedactText(ctx, content.Text)
	if err != nil {
		return fail(ErrorAnalyze, "analyzer", "failed to analyze document", err)
	}

	out.OutputPath = filepath.Join(p.opts.OutputDir, preprocessors.OutputName(content, p.opts.Prefix))
	if err := os.WriteFile(out.OutputPath, []byte(res.Text), 0o600); err != nil {
		return fail(ErrorWrite, "writer", "failed to write redacted document", err)
	}

	if p.opts.AuditDir != "" {
		log := NewRedactionAuditLog(path, out.OutputPath, version.Short())
		log.Record(content.Text, res, trace.Filter, time.Since(start))
		auditPath, err := log.WriteTo(p.opts.AuditDir)
		if err != nil {
			return fail(ErrorWrite, "audit", "failed to write audit log", err)
		}
		out.AuditPath = auditPath
	}

	out.Status = OutcomeRedacted
	out.Redactions = len(res.Replacements)
	out.Entities = make(map[string]int)
	for _, r := range res.Replacements {
		out.Entities[r.EntityType]++
	}
	out.Duration = time.Since(start)

	finishTiming(true, map[string]interface{}{
		"candidates": trace.Analysis.Kept,
		"suppressed": trace.Filter.Input - trace.Filter.Kept,
		"truncated":  trace.Filter.Truncated,
		"redactions": out.Redactions,
	})
	finishStep(true, fmt.Sprintf("%d redactions", out.Redactions))
	return out
}

// Detect returns the spans that would be replaced in text, before tokens
// are assigned.
func (p *Pipeline) Detect(ctx context.Context, text string) ([]detector.Span, error) {
	spans, err := p.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	return p.filter.Apply(text, spans), nil
}

// ReadDocument extracts the text of a document with the pipeline's preprocessors.
func (p *Pipeline) ReadDocument(path string) (string, error) {
	content, err := p.preprocessors.ProcessFile(path)
	if err != nil {
		return "", NewRedactionError(ErrorRead, "failed to read document", path, "preprocessor", err)
	}
	return content.Text, nil
}
