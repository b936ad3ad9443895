// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package analyzer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ja-redact/internal/allowlist"
	"ja-redact/internal/detector"
	"ja-redact/internal/enhancer"
	"ja-redact/internal/recognizers"
)

// Settings are the analysis options shared by every document.
type Settings struct {
	Language       string
	ScoreThreshold float64

	// Entity types to report; empty means everything the recognizers emit
	TargetEntities []string

	// Serialize calls into the external recognizer
	SerializeExternal bool
}

// Stats counts what aggregation kept and discarded for one document.
type Stats struct {
	Catalog        int
	External       int
	BelowThreshold int
	Allowed        int
	Untargeted     int
	OnToken        int
	Duplicates     int
	Kept           int
}

// Analyzer merges catalog and external candidates under one threshold and
// allow-list. It holds only read-only configuration and is safe for
// concurrent use; calls into the external recognizer are serialized when
// SerializeExternal is set.
type Analyzer struct {
	catalog  *recognizers.Catalog
	external detector.Recognizer
	enhancer *enhancer.Enhancer
	allow    *allowlist.List
	settings Settings
	targets  map[string]bool

	externalMu sync.Mutex
}

// New creates an Analyzer. external may be nil.
func New(catalog *recognizers.Catalog, external detector.Recognizer, enh *enhancer.Enhancer, allow *allowlist.List, settings Settings) *Analyzer {
	a := &Analyzer{
		catalog:  catalog,
		external: external,
		enhancer: enh,
		allow:    allow,
		settings: settings,
	}
	if len(settings.TargetEntities) > 0 {
		a.targets = make(map[string]bool, len(settings.TargetEntities))
		for _, e := range settings.TargetEntities {
			a.targets[e] = true
		}
	}
	return a
}

// Analyze returns the scored candidate spans for text.
func (a *Analyzer) Analyze(ctx context.Context, text string) ([]detector.Span, error) {
	spans, _, err := a.AnalyzeWithStats(ctx, text)
	return spans, err
}

// AnalyzeWithStats is Analyze with per-stage counts. An external
// recognizer failure fails the document.
func (a *Analyzer) AnalyzeWithStats(ctx context.Context, text string) ([]detector.Span, Stats, error) {
	var stats Stats

	candidates := a.catalog.Match(text)
	stats.Catalog = len(candidates)

	if a.external != nil {
		ext, err := a.callExternal(ctx, text)
		if err != nil {
			return nil, stats, fmt.Errorf("%s recognizer: %w", a.external.Name(), err)
		}
		stats.External = len(ext)
		candidates = append(candidates, ext...)
	}

	tokens := detector.TokenPattern.FindAllStringIndex(text, -1)

	best := make(map[spanKey]int)
	var out []detector.Span
	for _, s := range candidates {
		if !s.Valid(text) {
			continue
		}
		if a.targets != nil && !a.targets[s.EntityType] {
			stats.Untargeted++
			continue
		}
		if overlapsToken(s, tokens) {
			stats.OnToken++
			continue
		}
		if a.allow.Allowed(s.EntityType, s.Text(text)) {
			stats.Allowed++
			continue
		}
		if a.enhancer != nil {
			s = a.enhancer.Enhance(text, s)
		}
		if s.Score < a.settings.ScoreThreshold {
			stats.BelowThreshold++
			continue
		}

		key := spanKey{s.Start, s.End, s.EntityType}
		if i, ok := best[key]; ok {
			stats.Duplicates++
			if s.Score > out[i].Score {
				out[i] = s
			}
			continue
		}
		best[key] = len(out)
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		if out[i].End != out[j].End {
			return out[i].End < out[j].End
		}
		return out[i].EntityType < out[j].EntityType
	})
	stats.Kept = len(out)
	return out, stats, nil
}

func (a *Analyzer) callExternal(ctx context.Context, text string) ([]detector.Span, error) {
	if a.settings.SerializeExternal {
		a.externalMu.Lock()
		defer a.externalMu.Unlock()
	}
	return a.external.Analyze(ctx, detector.AnalyzeRequest{
		Text:           text,
		Language:       a.settings.Language,
		Entities:       a.settings.TargetEntities,
		AllowList:      a.allow.Values(),
		ScoreThreshold: a.settings.ScoreThreshold,
	})
}

type spanKey struct {
	start, end int
	entity     string
}

func overlapsToken(s detector.Span, tokens [][]int) bool {
	for _, t := range tokens {
		if s.Start < t[1] && t[0] < s.End {
			return true
		}
	}
	return false
}
