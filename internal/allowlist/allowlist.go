// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package allowlist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Rule exempts one literal value from redaction.
type Rule struct {
	ID        string     `yaml:"id,omitempty"`
	Value     string     `yaml:"value"`
	Entities  []string   `yaml:"entities,omitempty"`
	Reason    string     `yaml:"reason,omitempty"`
	Enabled   *bool      `yaml:"enabled,omitempty"`
	CreatedBy string     `yaml:"created_by,omitempty"`
	CreatedAt time.Time  `yaml:"created_at,omitempty"`
	ExpiresAt *time.Time `yaml:"expires_at,omitempty"`
}

// Active reports whether the rule applies at the given time.
func (r *Rule) Active(now time.Time) bool {
	if r.Enabled != nil && !*r.Enabled {
		return false
	}
	if r.ExpiresAt != nil && now.After(*r.ExpiresAt) {
		return false
	}
	return strings.TrimSpace(r.Value) != ""
}

// File is the on-disk allow-list format.
type File struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// List is the set of exempt strings. Values are compared exactly against
// the whitespace-trimmed span text. Build it before processing starts; it
// is read-only afterwards and safe for concurrent use.
type List struct {
	global map[string]bool
	scoped map[string]map[string]bool
}

// New returns a list exempting values for every entity type.
func New(values ...string) *List {
	l := &List{
		global: make(map[string]bool),
		scoped: make(map[string]map[string]bool),
	}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			l.global[v] = true
		}
	}
	return l
}

// LoadFile reads an allow-list file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read allow-list file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse allow-list file: %w", err)
	}
	for i, r := range f.Rules {
		if strings.TrimSpace(r.Value) == "" {
			return nil, fmt.Errorf("allow-list rule %d (%s): value is required", i, r.ID)
		}
	}
	return &f, nil
}

// Add merges the active rules of f into the list and returns how many were added.
func (l *List) Add(f *File, now time.Time) int {
	added := 0
	for _, r := range f.Rules {
		if !r.Active(now) {
			continue
		}
		v := strings.TrimSpace(r.Value)
		if len(r.Entities) == 0 {
			l.global[v] = true
		} else {
			for _, e := range r.Entities {
				if l.scoped[e] == nil {
					l.scoped[e] = make(map[string]bool)
				}
				l.scoped[e][v] = true
			}
		}
		added++
	}
	return added
}

// Allowed reports whether text must not be flagged as entityType.
func (l *List) Allowed(entityType, text string) bool {
	if l == nil {
		return false
	}
	v := strings.TrimSpace(text)
	return l.global[v] || l.scoped[entityType][v]
}

// Values returns the values exempt for every entity type, sorted.
func (l *List) Values() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.global))
	for v := range l.global {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct exemptions.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	n := len(l.global)
	for _, vs := range l.scoped {
		n += len(vs)
	}
	return n
}
