// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"ja-redact/internal/recognizers"

	"github.com/fatih/color"
)

// EntityInfo describes one entity type for the help screens.
type EntityInfo struct {
	Name         string
	Description  string
	Rules        []recognizers.Rule
	ContextWords []string
	Targeted     bool // redacted under the current analysis.target_entities
}

// System renders help content for the command line.
type System struct {
	out     io.Writer
	catalog *recognizers.Catalog
	targets map[string]bool
	noColor bool
	colors  map[string]*color.Color
}

// NewSystem creates a help system over a compiled catalog. targets are the
// configured target entities; none means every entity is targeted.
func NewSystem(out io.Writer, catalog *recognizers.Catalog, targets []string, noColor bool) *System {
	// Disable colors if requested
	if noColor {
		color.NoColor = true
	}

	h := &System{
		out:     out,
		catalog: catalog,
		targets: make(map[string]bool, len(targets)),
		noColor: noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"example":  color.New(color.FgMagenta),
		},
	}
	for _, t := range targets {
		h.targets[t] = true
	}
	return h
}

func (h *System) print(name, format string, args ...interface{}) {
	if h.noColor {
		fmt.Fprintf(h.out, format, args...)
		return
	}
	h.colors[name].Fprintf(h.out, format, args...)
}

// Entity collects the help content of one entity type. ok is false when the
// catalog has no rule for it.
func (h *System) Entity(name string) (EntityInfo, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	rules := h.catalog.RulesFor(name)
	if len(rules) == 0 {
		return EntityInfo{}, false
	}
	return EntityInfo{
		Name:         name,
		Description:  h.catalog.Description(name),
		Rules:        rules,
		ContextWords: h.catalog.ContextWords(name),
		Targeted:     len(h.targets) == 0 || h.targets[name],
	}, true
}

// ShowUsage displays the options of the redaction command.
func (h *System) ShowUsage(tool string) {
	h.print("title", "%s - Japanese PII redaction\n", tool)
	fmt.Fprintln(h.out, strings.Repeat("=", len(tool)+27))
	fmt.Fprintln(h.out)
	h.print("header", "USAGE:\n")
	fmt.Fprintf(h.out, "  %s --input <dir> --output <dir> [options]\n\n", tool)

	h.print("header", "OPTIONS:\n")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --input\t<dir>\tDirectory containing the documents to redact (required)")
	fmt.Fprintln(w, "  --output\t<dir>\tDirectory for redacted documents (required, created if missing)")
	fmt.Fprintln(w, "  --pattern\t<glob>\tFile name pattern inside --input (default from config: *.md)")
	fmt.Fprintln(w, "  --prefix\t<text>\tPrefix for output file names (default from config: none)")
	fmt.Fprintln(w, "  --limit\t<n>\tProcess at most n documents, 0 for all")
	fmt.Fprintln(w, "  --workers\t<n>\tConcurrent documents (default: CPU count, at most 8)")
	fmt.Fprintln(w, "  --config\t<path>\tConfiguration file (YAML)")
	fmt.Fprintln(w, "  --format\t<format>\tSummary format: text, json, yaml, csv, junit (default: text)")
	fmt.Fprintln(w, "  --report\t<path>\tWrite the summary to a file instead of stdout")
	fmt.Fprintln(w, "  --audit-dir\t<dir>\tWrite one JSON audit log per document")
	fmt.Fprintln(w, "  --verbose\t\tList every document in the summary")
	fmt.Fprintln(w, "  --debug\t\tEnable debug logging of every pipeline stage")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --list-entities\t\tList the entity types the catalog detects")
	fmt.Fprintln(w, "  --explain\t<entity>\tShow the rules and context words of one entity type")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	w.Flush()

	fmt.Fprintln(h.out)
	h.print("header", "EXAMPLES:\n")
	h.print("example", "  %s --input ./docs --output ./redacted\n", tool)
	h.print("example", "  %s --input ./docs --output ./redacted --limit 100 --workers 4\n", tool)
	h.print("example", "  %s --explain PHONE_NUMBER\n", tool)

	fmt.Fprintln(h.out)
	h.print("header", "CONFIGURATION:\n")
	fmt.Fprintln(h.out, "  Config file: ja-redact.yaml, ja-redact.yml or config.yaml in the current directory")
	fmt.Fprintln(h.out, "  Environment: JA_REDACT_* variables, also read from .env")
}

// ShowEntities lists every entity type with its rule count and description.
func (h *System) ShowEntities() {
	h.print("title", "Detected entity types\n")
	fmt.Fprintln(h.out, "=====================")
	fmt.Fprintln(h.out)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ENTITY\tRULES\tTARGET\tDESCRIPTION")
	fmt.Fprintln(w, "  ------\t-----\t------\t-----------")
	for _, name := range h.catalog.Entities() {
		info, _ := h.Entity(name)
		target := "no"
		if info.Targeted {
			target = "yes"
		}
		fmt.Fprintf(w, "  %s\t%d\t%s\t%s\n", name, len(info.Rules), target, info.Description)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "Entity types produced by the statistical recognizer (e.g. LOCATION) are")
	fmt.Fprintln(h.out, "redacted unless analysis.target_entities leaves them out.")
}

// ShowEntity displays the rules and context words of one entity type.
func (h *System) ShowEntity(name string) bool {
	info, ok := h.Entity(name)
	if !ok {
		h.print("negative", "Error: entity '%s' not found.\n", name)
		fmt.Fprintln(h.out, "Use --list-entities to see the available entity types.")
		return false
	}

	h.print("title", "%s\n", info.Name)
	fmt.Fprintln(h.out, strings.Repeat("=", len(info.Name)))
	if info.Description != "" {
		fmt.Fprintln(h.out, info.Description)
	}
	if !info.Targeted {
		h.print("negative", "Not in analysis.target_entities: matches are discarded.\n")
	}
	fmt.Fprintln(h.out)

	h.print("header", "RULES:\n")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tSCORE\tPATTERN")
	for _, r := range info.Rules {
		fmt.Fprintf(w, "  %s\t%.2f\t%s\n", r.Name, r.Score, r.Expr)
	}
	w.Flush()
	fmt.Fprintln(h.out)

	h.print("header", "CONTEXT WORDS:\n")
	if len(info.ContextWords) == 0 {
		fmt.Fprintln(h.out, "  (none)")
		return true
	}
	fmt.Fprint(h.out, "  ")
	h.print("positive", "%s\n", strings.Join(info.ContextWords, ", "))
	return true
}
