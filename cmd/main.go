// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"ja-redact/internal/config"
	"ja-redact/internal/formatters"
	_ "ja-redact/internal/formatters/csv"
	_ "ja-redact/internal/formatters/json"
	_ "ja-redact/internal/formatters/junit"
	_ "ja-redact/internal/formatters/text"
	_ "ja-redact/internal/formatters/yaml"
	"ja-redact/internal/help"
	"ja-redact/internal/observability"
	"ja-redact/internal/parallel"
	"ja-redact/internal/paths"
	"ja-redact/internal/redactors"
	"ja-redact/internal/version"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Exit codes
const (
	exitOK          = 0
	exitFatal       = 1
	exitPartialFail = 2
)

// progressEvery is the number of redacted documents between progress lines.
const progressEvery = 50

// flagValues holds command line flag values
type flagValues struct {
	input        string
	output       string
	prefix       string
	pattern      string
	limit        int
	workers      int
	configFile   string
	format       string
	reportFile   string
	auditDir     string
	verbose      bool
	debug        bool
	noColor      bool
	showVersion  bool
	listEntities bool
	explain      string
}

func main() {
	var f flagValues
	flag.StringVar(&f.input, "input", "", "Directory containing the documents to redact")
	flag.StringVar(&f.output, "output", "", "Directory for redacted documents")
	flag.StringVar(&f.prefix, "prefix", "", "Prefix for output file names (default from config)")
	flag.StringVar(&f.pattern, "pattern", "", "Comma-separated file name patterns (default from config: *.md)")
	flag.IntVar(&f.limit, "limit", -1, "Process at most n documents, 0 for all (default from config)")
	flag.IntVar(&f.workers, "workers", 0, "Concurrent documents (default from config)")
	flag.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&f.format, "format", "text", "Summary format: text, json, yaml, csv, junit")
	flag.StringVar(&f.reportFile, "report", "", "Write the summary to a file instead of stdout")
	flag.StringVar(&f.auditDir, "audit-dir", "", "Write one JSON audit log per document to this directory")
	flag.BoolVar(&f.verbose, "verbose", false, "List every document in the summary")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging of every pipeline stage")
	flag.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&f.showVersion, "version", false, "Show version information")
	flag.BoolVar(&f.listEntities, "list-entities", false, "List the entity types the catalog detects")
	flag.StringVar(&f.explain, "explain", "", "Show the rules and context words of one entity type")
	flag.Usage = func() {
		help.NewSystem(os.Stderr, nil, nil, f.noColor || !isTerminal(os.Stderr)).ShowUsage(version.Name)
	}
	flag.Parse()

	os.Exit(run(f, os.Stdout, os.Stderr))
}

// run executes one batch and returns the process exit code.
func run(f flagValues, stdout, stderr io.Writer) int {
	if f.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return exitOK
	}

	if !isTerminalWriter(stdout) || os.Getenv("CI") != "" {
		f.noColor = true
	}

	cfg, err := config.Resolve(f.configFile, os.LookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
	applyFlags(cfg, f)

	if f.listEntities || f.explain != "" {
		return showCatalogHelp(cfg, f, stdout, stderr)
	}

	if f.input == "" || f.output == "" {
		fmt.Fprintln(stderr, "Error: --input and --output are required")
		flag.Usage()
		return exitFatal
	}

	logger := newLogger(cfg, f.debug, stderr)
	observer, debugObs := newObservers(logger, f.debug)

	files, err := paths.CollectInputs(f.input, paths.SplitPatterns(cfg.Batch.Pattern), cfg.Batch.Limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list input documents")
		return exitFatal
	}

	pipeline, err := redactors.Build(cfg, redactors.Options{
		OutputDir: f.output,
		Prefix:    cfg.Batch.Prefix,
		AuditDir:  f.auditDir,
	}, observer, debugObs)
	if err != nil {
		logger.Error().Err(err).Msg("initialization failed")
		return exitFatal
	}

	logger.Info().
		Int("documents", len(files)).
		Int("workers", cfg.Batch.Workers).
		Str("nlp_engine", cfg.NLP.Engine).
		Msg("starting batch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redacted := 0
	processor := parallel.NewParallelProcessor(cfg.Batch.Workers, pipeline, observer)
	outcomes, stats := processor.ProcessFilesWithProgress(ctx, files, func(completed, total int, o redactors.Outcome) {
		if o.Status == redactors.OutcomeFailed {
			fmt.Fprintf(stderr, "failed: %s: %v\n", filepath.Base(o.Path), o.Err)
			return
		}
		redacted++
		if redacted%progressEvery == 0 {
			fmt.Fprintf(stderr, "processed %d/%d documents\n", completed, total)
		}
	})

	report := formatters.NewReport(outcomes, stats)
	out, err := formatters.Export(f.format, report, formatters.FormatterOptions{Verbose: f.verbose, NoColor: f.noColor || f.reportFile != ""})
	if err != nil {
		logger.Error().Err(err).Msg("failed to format summary")
		return exitFatal
	}
	if err := writeReport(f.reportFile, out, stdout); err != nil {
		logger.Error().Err(err).Msg("failed to write summary")
		return exitFatal
	}
	if f.format != "text" || f.reportFile != "" {
		fmt.Fprintf(stderr, "redacted %d files\n", stats.RedactedFiles)
	}

	if stats.FailedFiles > 0 {
		return exitPartialFail
	}
	return exitOK
}

// applyFlags overrides configuration with explicitly given flags.
func applyFlags(cfg *config.Config, f flagValues) {
	if f.prefix != "" {
		cfg.Batch.Prefix = f.prefix
	}
	if f.pattern != "" {
		cfg.Batch.Pattern = f.pattern
	}
	if f.limit >= 0 {
		cfg.Batch.Limit = f.limit
	}
	if f.workers > 0 {
		cfg.Batch.Workers = f.workers
	}
}

func showCatalogHelp(cfg *config.Config, f flagValues, stdout, stderr io.Writer) int {
	catalog, err := cfg.Catalog()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
	h := help.NewSystem(stdout, catalog, cfg.Analysis.TargetEntities, f.noColor)
	if f.explain != "" {
		if !h.ShowEntity(f.explain) {
			return exitFatal
		}
		return exitOK
	}
	h.ShowEntities()
	return exitOK
}

// newLogger builds the process logger; --debug forces debug level.
func newLogger(cfg *config.Config, debug bool, w io.Writer) zerolog.Logger {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	return observability.NewLogger(observability.LoggerOptions{
		Level:  level,
		Format: cfg.Logging.Format,
		Writer: w,
	})
}

// newObservers returns a per-operation observer only when debugging or when
// the logger is verbose enough to show its entries.
func newObservers(logger zerolog.Logger, debug bool) (*observability.StandardObserver, *observability.DebugObserver) {
	if debug {
		d := observability.NewDebugObserver(logger)
		return d.StandardObserver, d
	}
	if logger.GetLevel() <= zerolog.DebugLevel {
		return observability.NewStandardObserver(observability.ObservabilityMetrics, logger), nil
	}
	return nil, nil
}

func writeReport(path, content string, stdout io.Writer) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, content)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(strings.TrimRight(content, "\n")+"\n"), 0o600)
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
