// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package allowlist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `version: "1.0"
rules:
  - id: company-name
    value: 山田商店
    entities: [ORG, ORGANIZATION]
    reason: our own company name
  - id: support-line
    value: "0120-000-000"
    reason: public support number
  - id: retired
    value: 鈴木一郎
    enabled: false
  - id: expired
    value: 佐藤花子
    expires_at: 2020-01-01T00:00:00Z
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewTrimsValues(t *testing.T) {
	l := New(" 東京本社 ", "", "example.co.jp")
	assert.True(t, l.Allowed("LOCATION", "東京本社"))
	assert.True(t, l.Allowed("PERSON", " 東京本社\n"))
	assert.False(t, l.Allowed("LOCATION", "東京"))
	assert.Equal(t, []string{"example.co.jp", "東京本社"}, l.Values())
	assert.Equal(t, 2, l.Len())
}

func TestLoadAndAdd(t *testing.T) {
	f, err := LoadFile(writeFile(t, sampleFile))
	require.NoError(t, err)
	require.Len(t, f.Rules, 4)

	l := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, l.Add(f, now))

	assert.True(t, l.Allowed("ORG", "山田商店"))
	assert.False(t, l.Allowed("PERSON", "山田商店"))
	assert.True(t, l.Allowed("PHONE_NUMBER", "0120-000-000"))
	assert.False(t, l.Allowed("PERSON", "鈴木一郎"))
	assert.False(t, l.Allowed("PERSON", "佐藤花子"))
	assert.Equal(t, []string{"0120-000-000"}, l.Values())
	assert.Equal(t, 3, l.Len())
}

func TestRuleActive(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	off := false

	assert.True(t, (&Rule{Value: "x"}).Active(now))
	assert.True(t, (&Rule{Value: "x", ExpiresAt: &later}).Active(now))
	assert.False(t, (&Rule{Value: "x", Enabled: &off}).Active(now))
	assert.False(t, (&Rule{Value: "  "}).Active(now))
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "rules: [unclosed"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "rules:\n  - id: empty\n    reason: no value\n"))
	assert.ErrorContains(t, err, "value is required")
}

func TestNilListAllowsNothing(t *testing.T) {
	var l *List
	assert.False(t, l.Allowed("PERSON", "山田"))
	assert.Nil(t, l.Values())
	assert.Zero(t, l.Len())
}
