// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ja-redact/internal/detector"
)

// Reason names why a span was dropped.
type Reason string

const (
	ReasonMalformed       Reason = "malformed"
	ReasonDuplicate       Reason = "duplicate"
	ReasonContained       Reason = "contained"
	ReasonAmount          Reason = "amount"
	ReasonAmountContext   Reason = "amount_context"
	ReasonCommonWord      Reason = "common_word"
	ReasonDigitsOnly      Reason = "digits_only"
	ReasonBusinessSuffix  Reason = "business_suffix"
	ReasonBareYear        Reason = "bare_year"
	ReasonNoContext       Reason = "no_context"
	ReasonEmptyAfterCut   Reason = "empty_after_truncation"
	ReasonBlankAfterStrip Reason = "blank"
)

// Settings configure the entity-specific suppression rules.
type Settings struct {
	// Exact-match PERSON false positives
	CommonWords []string

	// Regex matched against the end of PERSON text
	BusinessSuffixPattern string

	// PERSON spans below this score need a context word nearby
	PersonMinScore float64

	// Radius in characters of the PERSON context and year windows
	PersonWindowChars int

	// Words that vouch for a PERSON span
	PersonContextWords []string

	// Window for the ORG amount check
	AmountWindowBefore int
	AmountWindowAfter  int
	AmountContextWords []string
}

// DefaultSettings returns the stock suppression rules. PersonContextWords
// is left empty; callers pass the PERSON entry of the context-word table.
func DefaultSettings() Settings {
	return Settings{
		CommonWords:           DefaultCommonWords(),
		BusinessSuffixPattern: DefaultBusinessSuffixPattern,
		PersonMinScore:        0.75,
		PersonWindowChars:     20,
		AmountWindowBefore:    15,
		AmountWindowAfter:     5,
		AmountContextWords:    DefaultAmountContextWords(),
	}
}

// Stats summarizes one Apply call.
type Stats struct {
	Input     int
	Kept      int
	Truncated int
	Dropped   map[Reason]int
}

// Filter resolves overlapping candidates and suppresses known false
// positives. It holds no per-document state and is safe for concurrent use.
type Filter struct {
	commonWords  map[string]bool
	suffix       *regexp.Regexp
	personMin    float64
	personWindow *detector.ContextExtractor
	personWords  []string
	amountWindow *detector.ContextExtractor
	amountWords  []string
}

var (
	// digits, whitespace and the punctuation found between them
	digitsOnlyPattern = regexp.MustCompile(`^[0-9０-９\s\-:：、。，．]+$`)
	yearPattern       = regexp.MustCompile(`^[0-9０-９]{4}$`)
	amountPattern     = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
	amountInText      = regexp.MustCompile(`\d{1,3}(?:,\d{3})+`)
)

// New compiles the settings into a Filter.
func New(settings Settings) (*Filter, error) {
	suffix, err := regexp.Compile(`(?:` + settings.BusinessSuffixPattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("business suffix pattern: %w", err)
	}

	f := &Filter{
		commonWords:  make(map[string]bool, len(settings.CommonWords)),
		suffix:       suffix,
		personMin:    settings.PersonMinScore,
		personWindow: detector.NewContextExtractor(settings.PersonWindowChars),
		personWords:  detector.FoldAll(settings.PersonContextWords),
		amountWindow: detector.NewContextExtractor(0).WithRadius(settings.AmountWindowBefore, settings.AmountWindowAfter),
		amountWords:  detector.FoldAll(settings.AmountContextWords),
	}
	for _, w := range settings.CommonWords {
		f.commonWords[strings.TrimSpace(w)] = true
	}
	return f, nil
}

// Apply runs overlap resolution and suppression over the candidates and
// returns the kept spans ordered by start offset.
func (f *Filter) Apply(text string, spans []detector.Span) []detector.Span {
	kept, _ := f.ApplyWithStats(text, spans)
	return kept
}

// ApplyWithStats is Apply that also reports what was dropped and why.
//
// Candidates are visited longest first, ties broken by later start, higher
// score, then entity type name. A candidate whose range equals or lies within
// an accepted range is discarded. Survivors pass the entity checks, are cut at
// the first line break and re-checked, and their final range is accepted.
// Partially overlapping spans are not made disjoint here.
func (f *Filter) ApplyWithStats(text string, spans []detector.Span) ([]detector.Span, Stats) {
	stats := Stats{Input: len(spans), Dropped: make(map[Reason]int)}

	candidates := make([]detector.Span, 0, len(spans))
	for _, s := range spans {
		if !s.Valid(text) {
			stats.Dropped[ReasonMalformed]++
			continue
		}
		candidates = append(candidates, s)
	}
	sortCandidates(candidates)

	var kept []detector.Span
	covered := func(s detector.Span) (Reason, bool) {
		for _, a := range kept {
			if a.Start == s.Start && a.End == s.End {
				return ReasonDuplicate, true
			}
			if a.Contains(s) {
				return ReasonContained, true
			}
		}
		return "", false
	}

	for _, s := range candidates {
		if reason, drop := covered(s); drop {
			stats.Dropped[reason]++
			continue
		}
		if reason, drop := f.suppress(text, s); drop {
			stats.Dropped[reason]++
			continue
		}

		if truncates(s.EntityType) {
			if nl := strings.IndexByte(s.Text(text), '\n'); nl >= 0 {
				s = s.WithEnd(s.Start + nl)
				stats.Truncated++
				if s.Len() == 0 {
					stats.Dropped[ReasonEmptyAfterCut]++
					continue
				}
				if reason, drop := covered(s); drop {
					stats.Dropped[reason]++
					continue
				}
				if reason, drop := f.suppress(text, s); drop {
					stats.Dropped[reason]++
					continue
				}
			}
		}

		kept = append(kept, s)
	}

	// A truncated range can end up inside a later, shorter candidate.
	kept, pruned := pruneContained(kept)
	stats.Dropped[ReasonContained] += pruned

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Start != kept[j].Start {
			return kept[i].Start < kept[j].Start
		}
		return kept[i].End < kept[j].End
	})
	stats.Kept = len(kept)
	return kept, stats
}

// sortCandidates orders by length desc, start desc, score desc, entity type asc.
func sortCandidates(spans []detector.Span) {
	sort.SliceStable(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Start != b.Start {
			return a.Start > b.Start
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.EntityType < b.EntityType
	})
}

// pruneContained drops spans strictly inside another kept span.
func pruneContained(spans []detector.Span) ([]detector.Span, int) {
	out := spans[:0:0]
	for i, s := range spans {
		inside := false
		for j, o := range spans {
			if i != j && o.Contains(s) && o.Len() > s.Len() {
				inside = true
				break
			}
		}
		if !inside {
			out = append(out, s)
		}
	}
	return out, len(spans) - len(out)
}

// truncates reports whether spans of the type are cut at line breaks.
func truncates(entityType string) bool {
	return entityType == detector.EntityPerson || detector.IsOrgFamily(entityType)
}
