// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ja-redact/internal/detector"
	"ja-redact/internal/resilience"
)

func TestAnalyzeConvertsCodePointOffsets(t *testing.T) {
	var got analyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"entity_type":"PERSON","start":3,"end":7,"score":0.85,"recognition_metadata":{"recognizer_name":"SpacyRecognizer"}},
			{"entity_type":"LOCATION","start":8,"end":10,"score":0.7},
			{"entity_type":"PERSON","start":9,"end":99,"score":0.9}
		]`))
	}))
	defer srv.Close()

	text := "担当は山田太郎、東京"
	c := New(srv.URL+"/", time.Second)
	spans, err := c.Analyze(context.Background(), detector.AnalyzeRequest{
		Text:           text,
		Language:       "ja",
		Entities:       []string{"PERSON", "LOCATION"},
		AllowList:      []string{"弊社"},
		ScoreThreshold: 0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "ja", got.Language)
	assert.Equal(t, []string{"PERSON", "LOCATION"}, got.Entities)
	assert.Equal(t, []string{"弊社"}, got.AllowList)
	assert.Equal(t, 0.5, got.ScoreThreshold)

	require.Len(t, spans, 2)
	assert.Equal(t, "山田太郎", spans[0].Text(text))
	assert.Equal(t, "SpacyRecognizer", spans[0].Recognizer)
	assert.Equal(t, "東京", spans[1].Text(text))
	assert.Equal(t, "sidecar", spans[1].Recognizer)
}

func TestAnalyzeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).Analyze(context.Background(), detector.AnalyzeRequest{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestAnalyzeDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).Analyze(context.Background(), detector.AnalyzeRequest{Text: "x"})
	assert.ErrorContains(t, err, "decode")
}

func TestAnalyzeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Analyze(context.Background(), detector.AnalyzeRequest{Text: "x"})
	assert.Error(t, err)
}

func TestAnalyzeBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:             "sidecar",
		FailureThreshold: 2,
		Timeout:          time.Hour,
	})
	c := NewWithBreaker(srv.URL, time.Second, breaker)
	req := detector.AnalyzeRequest{Text: "x"}

	for i := 0; i < 2; i++ {
		_, err := c.Analyze(context.Background(), req)
		var statusErr *resilience.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	}

	_, err := c.Analyze(context.Background(), req)
	var cbErr *resilience.CircuitBreakerError
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, resilience.StateOpen, breaker.GetState())
}

func TestAnalyzeDecodeErrorKeepsBreakerClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Hour})
	c := NewWithBreaker(srv.URL, time.Second, breaker)
	for i := 0; i < 3; i++ {
		_, err := c.Analyze(context.Background(), detector.AnalyzeRequest{Text: "x"})
		assert.ErrorContains(t, err, "decode")
	}
	assert.Equal(t, resilience.StateClosed, breaker.GetState())
}

func TestRuneOffsets(t *testing.T) {
	assert.Equal(t, []int{0, 3, 4, 7}, runeOffsets("山a田"))
	assert.Equal(t, []int{0}, runeOffsets(""))
}
