// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ja-redact/internal/config"
)

func TestRunEvaluation(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)
	t.Setenv(config.EnvNLPEngine, "none")

	in := filepath.Join(dir, "docs")
	require.NoError(t, os.Mkdir(in, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.md"), []byte("連絡先: tanaka@example.co.jp\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "b.md"), []byte{0xff}, 0o600))

	results := filepath.Join(dir, "results.txt")
	var stdout, stderr bytes.Buffer
	code := run(flagValues{input: in, resultsFile: results, jsonOutput: true}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var summary struct {
		Files []struct {
			File string `json:"file"`
			TP   int    `json:"tp"`
		} `json:"files"`
		Errors []struct {
			File string `json:"file"`
		} `json:"errors"`
		TP int `json:"tp"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.Len(t, summary.Files, 1)
	assert.Equal(t, "a.md", summary.Files[0].File)
	assert.Equal(t, 1, summary.TP)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "b.md", summary.Errors[0].File)

	details, err := os.ReadFile(results)
	require.NoError(t, err)
	assert.Contains(t, string(details), "File: a.md")
	assert.Contains(t, stderr.String(), "failed: b.md")
}

func TestRunEvaluationRequiresInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(flagValues{}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "--input is required")
}
