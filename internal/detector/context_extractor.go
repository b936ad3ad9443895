// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"unicode/utf8"
)

// ContextExtractor cuts character windows around spans. Radii are counted in
// runes, not bytes, so a window of 20 covers 20 Japanese characters.
type ContextExtractor struct {
	// Number of characters before the span to consider
	Before int

	// Number of characters after the span to consider
	After int
}

// NewContextExtractor creates a new context extractor with a symmetric radius
func NewContextExtractor(radius int) *ContextExtractor {
	return &ContextExtractor{Before: radius, After: radius}
}

// WithRadius sets asymmetric radii
func (ce *ContextExtractor) WithRadius(before, after int) *ContextExtractor {
	ce.Before = before
	ce.After = after
	return ce
}

// Window returns the text from Before runes ahead of start to After runes
// past end, the span itself included.
func (ce *ContextExtractor) Window(text string, start, end int) string {
	from := backRunes(text, start, ce.Before)
	to := forwardRunes(text, end, ce.After)
	return text[from:to]
}

// Surroundings returns the text before and after the span, the span excluded.
func (ce *ContextExtractor) Surroundings(text string, start, end int) (before, after string) {
	from := backRunes(text, start, ce.Before)
	to := forwardRunes(text, end, ce.After)
	return text[from:start], text[end:to]
}

// Extract fills a ContextInfo for the span.
func (ce *ContextExtractor) Extract(text string, span Span) ContextInfo {
	before, after := ce.Surroundings(text, span.Start, span.End)
	return ContextInfo{BeforeText: before, AfterText: after}
}

// backRunes walks n runes back from byte offset i.
func backRunes(s string, i, n int) int {
	if i > len(s) {
		i = len(s)
	}
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}

// forwardRunes walks n runes forward from byte offset i.
func forwardRunes(s string, i, n int) int {
	if i < 0 {
		i = 0
	}
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
