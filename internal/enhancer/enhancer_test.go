// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package enhancer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ja-redact/internal/detector"
	"ja-redact/internal/recognizers"
)

func spanOf(text, sub, entityType string, score float64) detector.Span {
	start := strings.Index(text, sub)
	return detector.Span{Start: start, End: start + len(sub), EntityType: entityType, Score: score}
}

func TestEnhance(t *testing.T) {
	e := New(DefaultSettings(), recognizers.DefaultContextWords())

	tests := []struct {
		name      string
		text      string
		sub       string
		entity    string
		score     float64
		wantScore float64
	}{
		{"boost clamps at one", "電話: 080-1234-5678", "080-1234-5678", detector.EntityPhoneNumber, 0.7, 1.0},
		{"boost floored", "暗証番号 1234", "1234", detector.EntityPIN, 0.2, 0.75},
		{"linear boost above floor", "口座番号 1234567", "1234567", detector.EntityBankAccount, 0.5, 0.85},
		{"no context unchanged", "番号 1234", "1234", detector.EntityPIN, 0.2, 0.2},
		{"context after span", "1234 は暗証番号です", "1234", detector.EntityPIN, 0.2, 0.75},
		{"fullwidth latin folds", "ＴＥＬ 080-1234-5678", "080-1234-5678", detector.EntityPhoneNumber, 0.7, 1.0},
		{"case insensitive", "CVV 123", "123", detector.EntitySecurityCode, 0.2, 0.75},
		{"span text not searched", "担当", "担当", detector.EntityPerson, 0.4, 0.4},
		{"unknown entity untouched", "住所 東京", "東京", "GPE", 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Enhance(tt.text, spanOf(tt.text, tt.sub, tt.entity, tt.score))
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.GreaterOrEqual(t, got.Score, tt.score)
		})
	}
}

func TestEnhanceRecordsKeywords(t *testing.T) {
	e := New(DefaultSettings(), recognizers.DefaultContextWords())
	text := "電話: 080-1234-5678"

	got := e.Enhance(text, spanOf(text, "080-1234-5678", detector.EntityPhoneNumber, 0.7))
	assert.Equal(t, []string{"電話"}, got.Context.PositiveKeywords)
	assert.InDelta(t, 0.3, got.Context.ConfidenceImpact, 1e-9)
	assert.Equal(t, "電話: ", got.Context.BeforeText)
}

func TestSpanWordsOverrideTable(t *testing.T) {
	e := New(DefaultSettings(), recognizers.DefaultContextWords())
	text := "社員番号 EMP-123456"

	s := spanOf(text, "EMP-123456", "EMPLOYEE_ID", 0.4)
	assert.InDelta(t, 0.4, e.Enhance(text, s).Score, 1e-9)

	s.ContextWords = []string{"社員番号"}
	assert.InDelta(t, 0.75, e.Enhance(text, s).Score, 1e-9)
}

func TestWindowRadius(t *testing.T) {
	text := "氏名" + strings.Repeat("。", 25) + "山田"
	span := spanOf(text, "山田", detector.EntityPerson, 0.4)

	narrow := New(DefaultSettings(), recognizers.DefaultContextWords())
	assert.InDelta(t, 0.4, narrow.Enhance(text, span).Score, 1e-9)

	settings := DefaultSettings()
	settings.WindowOverrides = map[string]int{detector.EntityPerson: 30}
	wide := New(settings, recognizers.DefaultContextWords())
	assert.InDelta(t, 0.75, wide.Enhance(text, span).Score, 1e-9)
}

func TestEnhanceLeavesMalformedSpans(t *testing.T) {
	e := New(DefaultSettings(), recognizers.DefaultContextWords())
	bad := detector.Span{Start: 5, End: 2, EntityType: detector.EntityPIN, Score: 0.2}
	assert.Equal(t, bad, e.Enhance("暗証番号", bad))
}

func TestEnhanceAllKeepsOrder(t *testing.T) {
	e := New(DefaultSettings(), recognizers.DefaultContextWords())
	text := "暗証番号 1234 と 5678"
	spans := []detector.Span{
		spanOf(text, "1234", detector.EntityPIN, 0.2),
		spanOf(text, "5678", detector.EntityPIN, 0.2),
	}
	out := e.EnhanceAll(text, spans)
	assert.Len(t, out, 2)
	assert.Equal(t, spans[0].Start, out[0].Start)
	assert.Equal(t, spans[1].Start, out[1].Start)
	assert.InDelta(t, 0.2, spans[0].Score, 1e-9)
}
