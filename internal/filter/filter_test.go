// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ja-redact/internal/detector"
	"ja-redact/internal/enhancer"
	"ja-redact/internal/recognizers"
)

func newTestFilter(t *testing.T) *Filter {
	t.Helper()
	settings := DefaultSettings()
	settings.PersonContextWords = recognizers.DefaultContextWords()[detector.EntityPerson]
	f, err := New(settings)
	require.NoError(t, err)
	return f
}

func at(text, sub, entityType string, score float64) detector.Span {
	start := strings.Index(text, sub)
	if start < 0 {
		panic("substring not found: " + sub)
	}
	return detector.Span{Start: start, End: start + len(sub), EntityType: entityType, Score: score}
}

func TestNewRejectsBadSuffixPattern(t *testing.T) {
	settings := DefaultSettings()
	settings.BusinessSuffixPattern = `(情報`
	_, err := New(settings)
	assert.Error(t, err)
}

func TestUngroupedSuffixPatternAnchorsEveryAlternative(t *testing.T) {
	settings := DefaultSettings()
	settings.BusinessSuffixPattern = `情報|記録`
	f, err := New(settings)
	require.NoError(t, err)

	text := "担当 情報太郎 / 顧客記録"
	kept, stats := f.ApplyWithStats(text, []detector.Span{
		at(text, "情報太郎", detector.EntityPerson, 0.9),
		at(text, "顧客記録", detector.EntityPerson, 0.9),
	})
	require.Len(t, kept, 1)
	assert.Equal(t, "情報太郎", kept[0].Text(text))
	assert.Equal(t, 1, stats.Dropped[ReasonBusinessSuffix])
}

func TestContainedSpanDropped(t *testing.T) {
	f := newTestFilter(t)
	text := "電話 080-1234-5678"
	spans := []detector.Span{
		at(text, "1234", detector.EntityPIN, 0.75),
		at(text, "080-1234-5678", detector.EntityPhoneNumber, 0.7),
	}

	kept, stats := f.ApplyWithStats(text, spans)
	require.Len(t, kept, 1)
	assert.Equal(t, detector.EntityPhoneNumber, kept[0].EntityType)
	assert.Equal(t, 1, stats.Dropped[ReasonContained])
}

func TestSameRangeTieBreaksOnEntityName(t *testing.T) {
	f := newTestFilter(t)
	text := "取引先: 山田商店"
	spans := []detector.Span{
		at(text, "山田商店", detector.EntityOrganization, 0.6),
		at(text, "山田商店", detector.EntityOrg, 0.6),
	}

	kept, stats := f.ApplyWithStats(text, spans)
	require.Len(t, kept, 1)
	assert.Equal(t, detector.EntityOrg, kept[0].EntityType)
	assert.Equal(t, 1, stats.Dropped[ReasonDuplicate])
}

func TestSuffixRuleIsScopedToPerson(t *testing.T) {
	f := newTestFilter(t)
	text := "取引先: 山田商店"
	spans := []detector.Span{
		at(text, "山田商店", detector.EntityPerson, 0.9),
		at(text, "山田商店", detector.EntityOrg, 0.6),
	}

	kept, stats := f.ApplyWithStats(text, spans)
	require.Len(t, kept, 1)
	assert.Equal(t, detector.EntityOrg, kept[0].EntityType)
	assert.Equal(t, "山田商店", kept[0].Text(text))
	assert.Equal(t, 1, stats.Dropped[ReasonBusinessSuffix])
}

func TestOrgAmountSuppression(t *testing.T) {
	f := newTestFilter(t)

	tests := []struct {
		name   string
		text   string
		sub    string
		keep   bool
		reason Reason
	}{
		{"bare amount", "合計金額: 1,250,000円", "1,250,000", false, ReasonAmount},
		{"amount without context", "件数 12,000", "12,000", false, ReasonAmount},
		{"amount inside name with money context", "金額 合計1,250,000円", "合計1,250,000", false, ReasonAmountContext},
		{"figure inside name without money context", "品番 A1,250,000型 在庫", "A1,250,000型", true, ""},
		{"real company", "取引先 山田製作所 様", "山田製作所", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, stats := f.ApplyWithStats(tt.text, []detector.Span{at(tt.text, tt.sub, detector.EntityOrg, 0.85)})
			if tt.keep {
				assert.Len(t, kept, 1)
				return
			}
			assert.Empty(t, kept)
			assert.Equal(t, 1, stats.Dropped[tt.reason])
		})
	}
}

func TestPersonSuppression(t *testing.T) {
	f := newTestFilter(t)

	tests := []struct {
		name   string
		text   string
		sub    string
		score  float64
		keep   bool
		reason Reason
	}{
		{"common word", "担当者 は未定", "担当者", 0.85, false, ReasonCommonWord},
		{"digits and punctuation", "日付 2024-01", "2024-01", 0.85, false, ReasonDigitsOnly},
		{"year digits", "2024年度", "2024", 0.85, false, ReasonDigitsOnly},
		{"business suffix", "顧客情報", "顧客情報", 0.85, false, ReasonBusinessSuffix},
		{"low score without context", "明日は山田太郎と会う", "山田太郎", 0.4, false, ReasonNoContext},
		{"low score with context", "氏名: 山田太郎", "山田太郎", 0.4, true, ""},
		{"honorific after name", "山田太郎様へ", "山田太郎", 0.4, true, ""},
		{"high score without context", "明日は山田太郎と会う", "山田太郎", 0.85, true, ""},
		{"romaji with context", "担当 Taro Yamada", "Taro Yamada", 0.3, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, stats := f.ApplyWithStats(tt.text, []detector.Span{at(tt.text, tt.sub, detector.EntityPerson, tt.score)})
			if tt.keep {
				require.Len(t, kept, 1)
				assert.Equal(t, tt.sub, kept[0].Text(tt.text))
				return
			}
			assert.Empty(t, kept)
			assert.Equal(t, 1, stats.Dropped[tt.reason])
		})
	}
}

func TestOtherEntitiesPassUnchecked(t *testing.T) {
	f := newTestFilter(t)
	text := "2024"
	kept := f.Apply(text, []detector.Span{{Start: 0, End: 4, EntityType: detector.EntityPIN, Score: 0.2}})
	assert.Len(t, kept, 1)
}

func TestNewlineTruncation(t *testing.T) {
	f := newTestFilter(t)
	text := "担当: 山田太郎\n備考あり"
	span := at(text, "山田太郎\n備考", detector.EntityPerson, 0.85)

	kept, stats := f.ApplyWithStats(text, []detector.Span{span})
	require.Len(t, kept, 1)
	assert.Equal(t, "山田太郎", kept[0].Text(text))
	assert.Equal(t, span.Start, kept[0].Start)
	assert.Equal(t, 1, stats.Truncated)
}

func TestTruncationRevealingCommonWordSuppresses(t *testing.T) {
	f := newTestFilter(t)
	text := "氏名\n山田"
	span := detector.Span{Start: 0, End: len(text), EntityType: detector.EntityPerson, Score: 0.85}

	kept, stats := f.ApplyWithStats(text, []detector.Span{span})
	assert.Empty(t, kept)
	assert.Equal(t, 1, stats.Truncated)
	assert.Equal(t, 1, stats.Dropped[ReasonCommonWord])
}

func TestOrgTruncationRevealingAmountSuppresses(t *testing.T) {
	f := newTestFilter(t)
	text := "1,250,000\n山田会社"
	span := detector.Span{Start: 0, End: len(text), EntityType: detector.EntityOrg, Score: 0.85}

	kept, stats := f.ApplyWithStats(text, []detector.Span{span})
	assert.Empty(t, kept)
	assert.Equal(t, 1, stats.Dropped[ReasonAmount])
}

func TestTruncationToNothingDrops(t *testing.T) {
	f := newTestFilter(t)
	text := "\n山田太郎"
	span := detector.Span{Start: 0, End: len(text), EntityType: detector.EntityPerson, Score: 0.85}

	kept, stats := f.ApplyWithStats(text, []detector.Span{span})
	assert.Empty(t, kept)
	assert.Equal(t, 1, stats.Dropped[ReasonEmptyAfterCut])
}

func TestTruncatedDuplicateDropped(t *testing.T) {
	f := newTestFilter(t)
	text := "山田太郎\n鈴木"
	long := detector.Span{Start: 0, End: len(text), EntityType: detector.EntityPerson, Score: 0.85}
	short := detector.Span{Start: 0, End: len("山田太郎\n"), EntityType: detector.EntityPerson, Score: 0.85}

	kept, stats := f.ApplyWithStats(text, []detector.Span{short, long})
	require.Len(t, kept, 1)
	assert.Equal(t, "山田太郎", kept[0].Text(text))
	assert.Equal(t, 1, stats.Dropped[ReasonDuplicate])
}

func TestMalformedSpansDroppedSilently(t *testing.T) {
	f := newTestFilter(t)
	text := "山田"
	spans := []detector.Span{
		{Start: 0, End: 0, EntityType: detector.EntityPerson, Score: 0.9},
		{Start: 0, End: 100, EntityType: detector.EntityPerson, Score: 0.9},
		{Start: 1, End: 3, EntityType: detector.EntityPerson, Score: 0.9},
	}

	kept, stats := f.ApplyWithStats(text, spans)
	assert.Empty(t, kept)
	assert.Equal(t, 3, stats.Dropped[ReasonMalformed])
	assert.Equal(t, 3, stats.Input)
}

func TestPartialOverlapIsKept(t *testing.T) {
	f := newTestFilter(t)
	text := "ABCDEFGH"
	spans := []detector.Span{
		{Start: 0, End: 4, EntityType: "X", Score: 0.9},
		{Start: 2, End: 6, EntityType: "Y", Score: 0.9},
	}

	kept := f.Apply(text, spans)
	require.Len(t, kept, 2)
	assert.Equal(t, 0, kept[0].Start)
	assert.Equal(t, 2, kept[1].Start)
}

func TestContainmentInvariant(t *testing.T) {
	f := newTestFilter(t)
	catalog := recognizers.NewDefaultCatalog()
	enh := enhancer.New(enhancer.DefaultSettings(), catalog.ContextTable())

	docs := []string{
		"氏名: 山田 太郎\n電話: 080-1234-5678\nメール: taro@example.co.jp\n",
		"取引先: 株式会社山田製作所\n合計金額: 1,250,000円\n口座番号 1234567\n",
		"免許証 第123456789012号 暗証番号 1234 カード 4111-1111-1111-1111 CVV 123",
		"担当 Taro Yamada\nパスワード: Sup3rSecr3t!\n登録番号 T1234567890123",
	}
	for _, doc := range docs {
		kept := f.Apply(doc, enh.EnhanceAll(doc, catalog.Match(doc)))
		for i, a := range kept {
			assert.True(t, a.Valid(doc))
			for j, b := range kept {
				if i == j {
					continue
				}
				strict := a.Contains(b) && a.Len() > b.Len()
				assert.False(t, strict, "%q contains %q", a.Text(doc), b.Text(doc))
				assert.False(t, a.Start == b.Start && a.End == b.End, "duplicate range %d-%d", a.Start, a.End)
			}
		}
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	f := newTestFilter(t)
	catalog := recognizers.NewDefaultCatalog()
	doc := "氏名: 山田 太郎\n電話: 080-1234-5678\n取引先: 山田商店\n"

	first := f.Apply(doc, catalog.Match(doc))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, f.Apply(doc, catalog.Match(doc)))
	}
}
