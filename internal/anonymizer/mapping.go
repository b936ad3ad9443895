// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package anonymizer

import (
	"sort"
	"strings"

	"ja-redact/internal/detector"
)

// AnonymizationMap hands out per-entity sequential indices for one document.
// Indices start at 1 and are never reused; the same normalized text of the
// same entity type always gets the same index. Create one per document and
// discard it afterwards. It is not safe for concurrent use.
type AnonymizationMap struct {
	indices map[string]map[string]int
}

// NewAnonymizationMap returns an empty map.
func NewAnonymizationMap() *AnonymizationMap {
	return &AnonymizationMap{indices: make(map[string]map[string]int)}
}

// Normalize returns the lookup key for span text.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}

// Index returns the index for text under entityType, allocating the next
// one on first use.
func (m *AnonymizationMap) Index(entityType, text string) int {
	key := Normalize(text)
	byText, ok := m.indices[entityType]
	if !ok {
		byText = make(map[string]int)
		m.indices[entityType] = byText
	}
	if idx, ok := byText[key]; ok {
		return idx
	}
	idx := len(byText) + 1
	byText[key] = idx
	return idx
}

// Token returns the placeholder for text under entityType.
func (m *AnonymizationMap) Token(entityType, text string) string {
	return detector.Token(entityType, m.Index(entityType, text))
}

// Distinct returns the number of distinct values seen for an entity type.
func (m *AnonymizationMap) Distinct(entityType string) int {
	return len(m.indices[entityType])
}

// EntityTypes lists the entity types with at least one index, sorted.
func (m *AnonymizationMap) EntityTypes() []string {
	types := make([]string, 0, len(m.indices))
	for t := range m.indices {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
