// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transformers are stateful, so each caller takes its own chain from the pool.
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFKC, cases.Fold())
	},
}

// Fold returns the NFKC, case-folded form of s. Fullwidth Latin and
// halfwidth katakana collapse to their canonical forms, so ＴＥＬ folds to tel.
// Only use the result for comparisons; offsets do not survive folding.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	tr := foldPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	foldPool.Put(tr)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// FoldAll folds every word, dropping empty ones.
func FoldAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if f := Fold(w); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// FindWords returns the words that occur in the folded haystack. Words must
// already be folded.
func FindWords(foldedHaystack string, foldedWords []string) []string {
	var found []string
	for _, w := range foldedWords {
		if strings.Contains(foldedHaystack, w) {
			found = append(found, w)
		}
	}
	return found
}
