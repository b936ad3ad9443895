// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sidecar calls a Presidio-compatible analyzer service over HTTP.
// The service reports offsets in Unicode code points; they are converted
// to byte offsets before spans leave this package.
package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ja-redact/internal/detector"
	"ja-redact/internal/resilience"
)

// DefaultTimeout bounds a single /analyze call.
const DefaultTimeout = 10 * time.Second

// Client calls the analyzer's /analyze endpoint. It is safe for concurrent use.
// Once the service keeps failing, calls fail fast until the breaker lets a
// probe through.
type Client struct {
	url     string
	http    *http.Client
	breaker *resilience.CircuitBreaker
}

// New creates a Client pointing at the given base URL
// (e.g. "http://presidio-analyzer:3000").
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithBreaker(baseURL, timeout, resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("sidecar")))
}

// NewWithBreaker is New with a caller-supplied circuit breaker.
func NewWithBreaker(baseURL string, timeout time.Duration, breaker *resilience.CircuitBreaker) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:     strings.TrimRight(baseURL, "/") + "/analyze",
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

type analyzeRequest struct {
	Text           string   `json:"text"`
	Language       string   `json:"language"`
	Entities       []string `json:"entities,omitempty"`
	ScoreThreshold float64  `json:"score_threshold,omitempty"`
	AllowList      []string `json:"allow_list,omitempty"`
}

type analyzerResult struct {
	EntityType string  `json:"entity_type"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Score      float64 `json:"score"`

	RecognitionMetadata struct {
		RecognizerName string `json:"recognizer_name"`
	} `json:"recognition_metadata"`
}

// Name implements detector.Recognizer.
func (c *Client) Name() string { return "sidecar" }

// Analyze implements detector.Recognizer. Transport and status failures are
// returned as errors; the caller decides whether the document is skipped.
func (c *Client) Analyze(ctx context.Context, req detector.AnalyzeRequest) ([]detector.Span, error) {
	body, err := json.Marshal(analyzeRequest{
		Text:           req.Text,
		Language:       req.Language,
		Entities:       req.Entities,
		ScoreThreshold: req.ScoreThreshold,
		AllowList:      req.AllowList,
	})
	if err != nil {
		return nil, fmt.Errorf("sidecar: marshal: %w", err)
	}

	var results []analyzerResult
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		var callErr error
		results, callErr = c.post(ctx, body)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("sidecar: %w", err)
	}

	offsets := runeOffsets(req.Text)
	spans := make([]detector.Span, 0, len(results))
	for _, r := range results {
		if r.Start < 0 || r.End > len(offsets)-1 || r.Start >= r.End {
			continue
		}
		name := r.RecognitionMetadata.RecognizerName
		if name == "" {
			name = c.Name()
		}
		spans = append(spans, detector.Span{
			Start:      offsets[r.Start],
			End:        offsets[r.End],
			EntityType: r.EntityType,
			Score:      r.Score,
			Recognizer: name,
		})
	}
	return spans, nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]analyzerResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &resilience.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var results []analyzerResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return results, nil
}

// runeOffsets maps code point index i to its byte offset; the final
// element is len(s).
func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
