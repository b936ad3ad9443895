// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"fmt"
	"time"

	"ja-redact/internal/detector"
	"ja-redact/internal/nlp/sidecar"
)

// Supported engines.
const (
	EngineKagome  = "kagome"
	EngineSidecar = "sidecar"
	EngineNone    = "none"
)

// Settings select and configure the statistical recognizer.
type Settings struct {
	Engine  string
	URL     string
	Timeout time.Duration
	Score   float64
}

// New builds the configured recognizer. EngineNone yields a nil recognizer
// and no error; the catalog then runs alone.
func New(s Settings) (detector.Recognizer, error) {
	switch s.Engine {
	case "", EngineKagome:
		k, err := NewKagome(s.Score)
		if err != nil {
			return nil, err
		}
		return k, nil
	case EngineSidecar:
		if s.URL == "" {
			return nil, fmt.Errorf("nlp engine %q requires a url", s.Engine)
		}
		return sidecar.New(s.URL, s.Timeout), nil
	case EngineNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown nlp engine %q", s.Engine)
	}
}
