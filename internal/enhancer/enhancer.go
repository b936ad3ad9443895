// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package enhancer

import (
	"slices"

	"ja-redact/internal/detector"
)

// Settings control the linear context boost.
type Settings struct {
	// Amount added to a span's score when a context word is nearby
	SimilarityFactor float64

	// Floor applied to a boosted score
	MinScoreWithContext float64

	// Radius in characters searched on each side of the span
	WindowChars int

	// Per-entity radius overrides
	WindowOverrides map[string]int
}

// DefaultSettings returns the stock boost: +0.35, floored at 0.75, ±20 characters.
func DefaultSettings() Settings {
	return Settings{
		SimilarityFactor:    0.35,
		MinScoreWithContext: 0.75,
		WindowChars:         20,
	}
}

// Enhancer raises candidate scores when context words surround the span.
// It never lowers a score. Safe for concurrent use.
type Enhancer struct {
	settings Settings
	table    map[string][]string
}

// New creates an enhancer over a context-word table keyed by entity type.
// Table words are used for spans that carry no words of their own.
func New(settings Settings, table map[string][]string) *Enhancer {
	folded := make(map[string][]string, len(table))
	for entity, words := range table {
		folded[entity] = detector.FoldAll(words)
	}
	return &Enhancer{settings: settings, table: folded}
}

// Enhance returns span with its score adjusted. The window covers the text on
// either side of the span; the span's own text is not searched.
func (e *Enhancer) Enhance(text string, span detector.Span) detector.Span {
	if !span.Valid(text) {
		return span
	}

	words := e.table[span.EntityType]
	if len(span.ContextWords) > 0 {
		words = detector.FoldAll(span.ContextWords)
	}
	if len(words) == 0 {
		return span
	}

	radius := e.settings.WindowChars
	if r, ok := e.settings.WindowOverrides[span.EntityType]; ok {
		radius = r
	}
	before, after := detector.NewContextExtractor(radius).Surroundings(text, span.Start, span.End)

	found := detector.FindWords(detector.Fold(before), words)
	for _, w := range detector.FindWords(detector.Fold(after), words) {
		if !slices.Contains(found, w) {
			found = append(found, w)
		}
	}

	span.Context.BeforeText = before
	span.Context.AfterText = after
	if len(found) == 0 {
		return span
	}

	boosted := span.Score + e.settings.SimilarityFactor
	if boosted < e.settings.MinScoreWithContext {
		boosted = e.settings.MinScoreWithContext
	}
	if boosted > 1.0 {
		boosted = 1.0
	}
	if boosted < span.Score {
		boosted = span.Score
	}

	span.Context.PositiveKeywords = found
	span.Context.ConfidenceImpact = boosted - span.Score
	span.Score = boosted
	return span
}

// EnhanceAll adjusts every span, returning a new slice.
func (e *Enhancer) EnhanceAll(text string, spans []detector.Span) []detector.Span {
	out := make([]detector.Span, len(spans))
	for i, s := range spans {
		out[i] = e.Enhance(text, s)
	}
	return out
}
