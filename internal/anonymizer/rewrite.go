// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package anonymizer

import (
	"sort"
	"strings"

	"ja-redact/internal/detector"
)

// Replacement records one substitution. Offsets refer to the input text.
// The original value is deliberately not kept.
type Replacement struct {
	EntityType string
	Token      string
	Index      int
	Start      int
	End        int
	Score      float64
	Recognizer string
}

// Result is a rewritten document.
type Result struct {
	Text         string
	Replacements []Replacement
}

// Anonymize rewrites text with a fresh AnonymizationMap.
func Anonymize(text string, spans []detector.Span) Result {
	return Rewrite(text, spans, NewAnonymizationMap())
}

// Rewrite replaces every span with its <TYPE><N> token.
//
// Spans of the same type that intersect are merged first (union range,
// highest score), and spans lying inside another span are dropped. Indices
// are assigned in document order. Replacement runs from the last span to the
// first; a span that runs into the next replaced span is clipped at that
// span's start, while its index still keys on the full original text.
func Rewrite(text string, spans []detector.Span, m *AnonymizationMap) Result {
	resolved := resolveConflicts(text, spans)

	replacements := make([]Replacement, len(resolved))
	for i, s := range resolved {
		idx := m.Index(s.EntityType, s.Text(text))
		replacements[i] = Replacement{
			EntityType: s.EntityType,
			Token:      detector.Token(s.EntityType, idx),
			Index:      idx,
			Start:      s.Start,
			End:        s.End,
			Score:      s.Score,
			Recognizer: s.Recognizer,
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	pieces := make([]string, 0, 2*len(replacements)+1)
	limit := len(text)
	for i := len(replacements) - 1; i >= 0; i-- {
		r := replacements[i]
		end := r.End
		if end > limit {
			end = limit
		}
		pieces = append(pieces, text[end:limit], r.Token)
		limit = r.Start
	}
	pieces = append(pieces, text[:limit])
	for i := len(pieces) - 1; i >= 0; i-- {
		b.WriteString(pieces[i])
	}

	return Result{Text: b.String(), Replacements: replacements}
}

// resolveConflicts returns valid, non-contained spans ordered by start.
func resolveConflicts(text string, spans []detector.Span) []detector.Span {
	var valid []detector.Span
	for _, s := range spans {
		if s.Valid(text) {
			valid = append(valid, s)
		}
	}
	valid = mergeSameType(valid)

	sort.SliceStable(valid, func(i, j int) bool {
		a, b := valid[i], valid[j]
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.EntityType < b.EntityType
	})
	var out []detector.Span
	for _, s := range valid {
		inside := false
		for _, o := range out {
			if o.Contains(s) {
				inside = true
				break
			}
		}
		if !inside {
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// mergeSameType folds intersecting spans of one entity type into their union.
func mergeSameType(spans []detector.Span) []detector.Span {
	sorted := append([]detector.Span(nil), spans...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].EntityType != sorted[j].EntityType {
			return sorted[i].EntityType < sorted[j].EntityType
		}
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var out []detector.Span
	for _, s := range sorted {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.EntityType == s.EntityType && last.Overlaps(s) {
				if s.End > last.End {
					last.End = s.End
				}
				if s.Score > last.Score {
					last.Score = s.Score
					last.Recognizer = s.Recognizer
				}
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
