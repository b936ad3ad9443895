// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ja-redact/internal/detector"
	"ja-redact/internal/recognizers"
)

func newTestSystem(buf *bytes.Buffer) *System {
	return NewSystem(buf, recognizers.NewDefaultCatalog(), []string{detector.EntityPhoneNumber, detector.EntityEmailAddress}, true)
}

func TestEntity(t *testing.T) {
	h := newTestSystem(&bytes.Buffer{})

	info, ok := h.Entity(" phone_number ")
	require.True(t, ok)
	assert.Equal(t, detector.EntityPhoneNumber, info.Name)
	assert.True(t, info.Targeted)
	assert.Equal(t, "jp_phone_pattern", info.Rules[0].Name)
	assert.Contains(t, info.ContextWords, "電話番号")

	_, ok = h.Entity("LOCATION")
	assert.False(t, ok)
}

func TestShowEntity(t *testing.T) {
	var buf bytes.Buffer
	require.True(t, newTestSystem(&buf).ShowEntity("PHONE_NUMBER"))

	out := buf.String()
	assert.Contains(t, out, "Japanese landline and mobile numbers")
	assert.Contains(t, out, "jp_phone_pattern")
	assert.Contains(t, out, `0\d{1,4}-\d{1,4}-\d{3,4}`)
	assert.Contains(t, out, "0.70")
	assert.Contains(t, out, "電話, 電話番号, 携帯")
	assert.NotContains(t, out, "Not in analysis.target_entities")
}

func TestShowEntityNotTargeted(t *testing.T) {
	var buf bytes.Buffer
	require.True(t, newTestSystem(&buf).ShowEntity("PIN"))
	assert.Contains(t, buf.String(), "Not in analysis.target_entities")
}

func TestShowEntityUnknown(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, newTestSystem(&buf).ShowEntity("NOPE"))
	assert.Contains(t, buf.String(), "entity 'NOPE' not found")
}

func TestShowEntities(t *testing.T) {
	var buf bytes.Buffer
	newTestSystem(&buf).ShowEntities()
	out := buf.String()

	for _, e := range recognizers.NewDefaultCatalog().Entities() {
		assert.Contains(t, out, e)
	}
	phone := lineWith(out, "PHONE_NUMBER")
	assert.Contains(t, phone, "yes")
	assert.Contains(t, lineWith(out, "  PIN "), "no")
}

func TestShowUsage(t *testing.T) {
	var buf bytes.Buffer
	newTestSystem(&buf).ShowUsage("ja-redact")
	out := buf.String()
	assert.Contains(t, out, "ja-redact --input <dir> --output <dir>")
	assert.Contains(t, out, "--explain")
	assert.Contains(t, out, "JA_REDACT_")
}

func lineWith(out, needle string) string {
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, needle) {
			return l
		}
	}
	return ""
}
