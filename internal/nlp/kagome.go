// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"ja-redact/internal/detector"
)

// DefaultScore is the confidence assigned to dictionary-tagged entities.
const DefaultScore = 0.85

// posEntities maps the IPA proper-noun subclass to an entity type.
var posEntities = map[string]string{
	"人名": detector.EntityPerson,
	"組織": detector.EntityOrg,
	"地域": detector.EntityLocation,
}

// KagomeRecognizer tags proper nouns found by morphological analysis with
// the IPA dictionary. Loading the dictionary is expensive; build one
// recognizer per process and share it.
type KagomeRecognizer struct {
	tok   *tokenizer.Tokenizer
	score float64
}

// NewKagome loads the IPA dictionary.
func NewKagome(score float64) (*KagomeRecognizer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize kagome tokenizer: %w", err)
	}
	if score <= 0 {
		score = DefaultScore
	}
	return &KagomeRecognizer{tok: t, score: score}, nil
}

// Name implements detector.Recognizer.
func (k *KagomeRecognizer) Name() string { return "kagome" }

// Analyze implements detector.Recognizer. Only dictionary-known tokens are
// considered; unknown words (Latin text, symbols) are classed as proper
// nouns by the unknown-word handler and would flood the output. Adjacent
// tokens of the same type, such as a family name followed by a given name,
// are merged into one span.
func (k *KagomeRecognizer) Analyze(ctx context.Context, req detector.AnalyzeRequest) ([]detector.Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(req.Entities))
	for _, e := range req.Entities {
		wanted[e] = true
	}

	var spans []detector.Span
	for _, t := range k.tok.Tokenize(req.Text) {
		if t.Class != tokenizer.KNOWN {
			continue
		}
		entity := entityOf(t.POS())
		if entity == "" || (len(wanted) > 0 && !wanted[entity]) {
			continue
		}
		start := t.Position
		end := start + len(t.Surface)
		if start < 0 || end > len(req.Text) || req.Text[start:end] != t.Surface {
			continue
		}

		if n := len(spans); n > 0 && spans[n-1].EntityType == entity && spans[n-1].End == start {
			spans[n-1].End = end
			continue
		}
		spans = append(spans, detector.Span{
			Start:      start,
			End:        end,
			EntityType: entity,
			Score:      k.score,
			Recognizer: k.Name(),
		})
	}
	return spans, nil
}

// entityOf reads 名詞,固有名詞,<subclass> POS tags.
func entityOf(pos []string) string {
	if len(pos) < 3 || pos[0] != "名詞" || pos[1] != "固有名詞" {
		return ""
	}
	return posEntities[strings.TrimSpace(pos[2])]
}
