// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ja-redact/internal/config"
	"ja-redact/internal/evaluation"
	"ja-redact/internal/formatters"
	"ja-redact/internal/formatters/text"
	"ja-redact/internal/observability"
	"ja-redact/internal/paths"
	"ja-redact/internal/redactors"

	"golang.org/x/term"
)

// progressEvery is the number of documents between progress lines.
const progressEvery = 10

type flagValues struct {
	input       string
	pattern     string
	limit       int
	configFile  string
	resultsFile string
	jsonOutput  bool
	noColor     bool
}

func main() {
	var f flagValues
	flag.StringVar(&f.input, "input", "", "Directory containing the documents to evaluate")
	flag.StringVar(&f.pattern, "pattern", "", "Comma-separated file name patterns (default from config: *.md)")
	flag.IntVar(&f.limit, "limit", 0, "Evaluate at most n documents, 0 for all")
	flag.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&f.resultsFile, "output", "evaluation_results.txt", "Path of the detailed results file")
	flag.BoolVar(&f.jsonOutput, "json", false, "Print the summary as JSON")
	flag.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	flag.Parse()

	os.Exit(run(f, os.Stdout, os.Stderr))
}

func run(f flagValues, stdout, stderr io.Writer) int {
	if f.input == "" {
		fmt.Fprintln(stderr, "Error: --input is required")
		fmt.Fprintln(stderr, "Usage: ja-redact-evaluate --input <dir> [--limit n] [--output results.txt]")
		return 1
	}
	if file, ok := stdout.(*os.File); !ok || !term.IsTerminal(int(file.Fd())) {
		f.noColor = true
	}

	cfg, err := config.Resolve(f.configFile, os.LookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if f.pattern != "" {
		cfg.Batch.Pattern = f.pattern
	}

	logger := observability.NewLogger(observability.LoggerOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: stderr,
	})

	files, err := paths.CollectInputs(f.input, paths.SplitPatterns(cfg.Batch.Pattern), f.limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list input documents")
		return 1
	}

	pipeline, err := redactors.Build(cfg, redactors.Options{}, nil, nil)
	if err != nil {
		logger.Error().Err(err).Msg("initialization failed")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	harness := evaluation.NewHarness(pipeline, pipeline, cfg.FilterSettings().CommonWords, nil)
	summary := harness.EvaluateFiles(ctx, files, func(done, total int) {
		if done%progressEvery == 0 || done == total {
			fmt.Fprintf(stderr, "evaluated %d/%d documents\n", done, total)
		}
	})
	for _, e := range summary.Errors {
		fmt.Fprintf(stderr, "failed: %s: %s\n", e.File, e.Error)
	}

	if f.jsonOutput {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			logger.Error().Err(err).Msg("failed to encode summary")
			return 1
		}
		fmt.Fprintln(stdout, string(data))
	} else {
		fmt.Fprintln(stdout, text.NewFormatter().FormatEvaluation(summary, formatters.FormatterOptions{NoColor: f.noColor}))
	}

	if f.resultsFile != "" {
		if err := writeDetails(f.resultsFile, summary); err != nil {
			logger.Error().Err(err).Str("path", f.resultsFile).Msg("failed to write results file")
			return 1
		}
		fmt.Fprintf(stderr, "detailed results written to %s\n", f.resultsFile)
	}
	return 0
}

func writeDetails(path string, summary *evaluation.Summary) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := evaluation.WriteDetails(file, summary); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
