// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package evaluation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ja-redact/internal/detector"
)

// findDetector returns a span for every occurrence of each configured value.
type findDetector struct {
	values map[string]string // value -> entity type
	err    error
}

func (f *findDetector) Detect(_ context.Context, text string) ([]detector.Span, error) {
	if f.err != nil {
		return nil, f.err
	}
	var spans []detector.Span
	for v, entity := range f.values {
		from := 0
		for {
			i := strings.Index(text[from:], v)
			if i < 0 {
				break
			}
			start := from + i
			spans = append(spans, detector.Span{Start: start, End: start + len(v), EntityType: entity, Score: 0.9})
			from = start + len(v)
		}
	}
	return spans, nil
}

type mapReader map[string]string

func (m mapReader) ReadDocument(path string) (string, error) {
	text, ok := m[path]
	if !ok {
		return "", errors.New("no such document")
	}
	return text, nil
}

func TestExpectedEntities(t *testing.T) {
	text := "メール: taro@example.co.jp\n電話: 03-1234-5678\nカード: 4111-1111-1111-1111\n" +
		"パスワード: Secr3tPass!\npassword = hunter22hunter\nkey: sk_live_abcdef123456789\n"

	got := ExpectedEntities(text)
	assert.Equal(t, []string{"taro@example.co.jp"}, got[detector.EntityEmailAddress])
	assert.Equal(t, []string{"03-1234-5678"}, got[detector.EntityPhoneNumber])
	assert.Equal(t, []string{"4111-1111-1111-1111"}, got[detector.EntityCreditCard])
	assert.Equal(t, []string{"Secr3tPass!", "hunter22hunter"}, got[detector.EntityPassword])
	assert.Equal(t, []string{"sk_live_abcdef123456789"}, got[detector.EntitySecretKey])
}

func TestExpectedEntitiesShortPasswordIgnored(t *testing.T) {
	got := ExpectedEntities("パスワード: abc")
	assert.NotContains(t, got, detector.EntityPassword)
	assert.Empty(t, ExpectedEntities("特に個人情報はありません。"))
}

func TestEvaluateText(t *testing.T) {
	text := "担当: 会議\n連絡先: taro@example.com\n電話: 090-1111-2222\n"
	d := &findDetector{values: map[string]string{
		"taro@example.com": detector.EntityEmailAddress,
		"会議":               detector.EntityPerson,
	}}
	h := NewHarness(d, nil, []string{"会議"}, nil)

	res, err := h.EvaluateText(context.Background(), "memo.md", text)
	require.NoError(t, err)

	assert.Equal(t, "memo.md", res.File)
	assert.Equal(t, 2, res.TotalExpected)
	assert.Equal(t, 2, res.TotalDetected)
	assert.Equal(t, 1, res.TP)
	assert.Equal(t, 1, res.FP)
	assert.Equal(t, 1, res.FN)
	assert.Equal(t, 1, res.CommonWordFP)
	assert.InDelta(t, 0.5, res.Precision, 1e-9)
	assert.InDelta(t, 0.5, res.Recall, 1e-9)
	assert.InDelta(t, 0.5, res.F1, 1e-9)
}

func TestEvaluateTextComparesSets(t *testing.T) {
	text := "a@example.com と a@example.com"
	d := &findDetector{values: map[string]string{"a@example.com": detector.EntityEmailAddress}}

	res, err := NewHarness(d, nil, nil, nil).EvaluateText(context.Background(), "x", text)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TP)
	assert.Equal(t, 0, res.FP)
	assert.Equal(t, 0, res.FN)
	assert.InDelta(t, 1.0, res.F1, 1e-9)
}

func TestEvaluateTextWrongTypeIsMiss(t *testing.T) {
	d := &findDetector{values: map[string]string{"03-1234-5678": detector.EntityCreditCard}}
	res, err := NewHarness(d, nil, nil, nil).EvaluateText(context.Background(), "x", "TEL 03-1234-5678")
	require.NoError(t, err)
	assert.Equal(t, 0, res.TP)
	assert.Equal(t, 1, res.FP)
	assert.Equal(t, 1, res.FN)
}

func TestEvaluateTextNothingToFind(t *testing.T) {
	res, err := NewHarness(&findDetector{}, nil, nil, nil).EvaluateText(context.Background(), "x", "こんにちは")
	require.NoError(t, err)
	assert.Zero(t, res.Precision)
	assert.Zero(t, res.Recall)
	assert.Zero(t, res.F1)
}

func TestEvaluateFiles(t *testing.T) {
	docs := mapReader{
		"in/a.md": "mail a@example.com",
		"in/b.md": "tel 03-1234-5678",
	}
	d := &findDetector{values: map[string]string{"a@example.com": detector.EntityEmailAddress}}
	h := NewHarness(d, docs, nil, nil)

	var progress []int
	sum := h.EvaluateFiles(context.Background(), []string{"in/a.md", "in/missing.md", "in/b.md"}, func(done, total int) {
		assert.Equal(t, 3, total)
		progress = append(progress, done)
	})

	assert.Equal(t, []int{1, 2, 3}, progress)
	require.Len(t, sum.Files, 2)
	assert.Equal(t, "a.md", sum.Files[0].File)
	assert.Equal(t, "b.md", sum.Files[1].File)
	require.Len(t, sum.Errors, 1)
	assert.Equal(t, "missing.md", sum.Errors[0].File)

	assert.Equal(t, 1, sum.TP)
	assert.Equal(t, 0, sum.FP)
	assert.Equal(t, 1, sum.FN)
	assert.InDelta(t, 1.0, sum.Precision, 1e-9)
	assert.InDelta(t, 0.5, sum.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, sum.F1, 1e-9)
}

func TestEvaluateFilesDetectorError(t *testing.T) {
	h := NewHarness(&findDetector{err: errors.New("engine down")}, mapReader{"a.md": "x"}, nil, nil)
	sum := h.EvaluateFiles(context.Background(), []string{"a.md"}, nil)
	assert.Empty(t, sum.Files)
	require.Len(t, sum.Errors, 1)
	assert.Contains(t, sum.Errors[0].Error, "engine down")
	assert.Zero(t, sum.FilesPerSecond())
}

func TestWriteDetails(t *testing.T) {
	sum := &Summary{
		Files:     []FileResult{{File: "a.md", TP: 1, FN: 1, Precision: 1, Recall: 0.5, F1: 2.0 / 3.0}},
		Errors:    []FileError{{File: "z.md", Error: "bad"}},
		TP:        1,
		FN:        1,
		Precision: 1,
		Recall:    0.5,
		F1:        2.0 / 3.0,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDetails(&buf, sum))
	out := buf.String()

	assert.Contains(t, out, "File: a.md")
	assert.Contains(t, out, "TP: 1, FP: 0, FN: 1")
	assert.Contains(t, out, "Error: z.md: bad")
	assert.Contains(t, out, "Recall: 50.00%")
	assert.Contains(t, out, "F1-Score: 66.67%")
	assert.Less(t, strings.Index(out, "File: a.md"), strings.Index(out, "Totals"))
}
