// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognizers

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"ja-redact/internal/detector"
)

// Rule is a compiled pattern bound to one entity type.
type Rule struct {
	Name         string
	Recognizer   string
	EntityType   string
	Expr         string
	Score        float64
	ContextWords []string

	regex *regexp.Regexp

	// RE2's \b treats kana, kanji and full-width digits as non-word
	// characters. A pattern that opens or closes with \b is also checked
	// against Unicode letters and digits at that edge.
	leftBoundary, rightBoundary bool
}

// Catalog is the immutable, compiled set of pattern rules. It is safe for
// concurrent use once built.
type Catalog struct {
	rules        []Rule
	contextWords map[string][]string
	entities     []string
	descriptions map[string]string
}

// Compile builds a catalog from definitions. Disabled definitions are
// skipped. A definition without its own context list takes the table entry
// for its entity type.
func Compile(defs []Definition, contextWords map[string][]string) (*Catalog, error) {
	c := &Catalog{
		contextWords: MergeContextWords(contextWords, nil),
		descriptions: make(map[string]string),
	}
	seen := make(map[string]bool)

	for _, def := range defs {
		if !def.IsEnabled() {
			continue
		}
		if def.SupportedEntity == "" {
			return nil, fmt.Errorf("recognizer %q: supported_entity is required", def.Name)
		}
		words := def.Context
		if len(words) == 0 {
			words = c.contextWords[def.SupportedEntity]
		}
		for _, p := range def.Patterns {
			re, err := regexp.Compile(p.Regex)
			if err != nil {
				return nil, fmt.Errorf("recognizer %q pattern %q: %w", def.Name, p.Name, err)
			}
			if p.Score < 0 || p.Score > 1 {
				return nil, fmt.Errorf("recognizer %q pattern %q: score %v outside [0,1]", def.Name, p.Name, p.Score)
			}
			c.rules = append(c.rules, Rule{
				Name:         p.Name,
				Recognizer:   def.Name,
				EntityType:   def.SupportedEntity,
				Expr:         p.Regex,
				Score:        p.Score,
				ContextWords: words,
				regex:        re,

				leftBoundary:  strings.HasPrefix(p.Regex, `\b`),
				rightBoundary: strings.HasSuffix(p.Regex, `\b`) && !strings.HasSuffix(p.Regex, `\\b`),
			})
		}
		if !seen[def.SupportedEntity] {
			seen[def.SupportedEntity] = true
			c.entities = append(c.entities, def.SupportedEntity)
		}
		if def.Description != "" && c.descriptions[def.SupportedEntity] == "" {
			c.descriptions[def.SupportedEntity] = def.Description
		}
	}
	sort.Strings(c.entities)
	return c, nil
}

// NewDefaultCatalog compiles the built-in definitions. It panics if they do
// not compile, which only a broken build can cause.
func NewDefaultCatalog() *Catalog {
	c, err := Compile(DefaultDefinitions(), DefaultContextWords())
	if err != nil {
		panic(err)
	}
	return c
}

// Match runs every rule over text. Each rule reports its own
// non-overlapping matches; overlap across rules is left to the filter.
func (c *Catalog) Match(text string) []detector.Span {
	var spans []detector.Span
	for i := range c.rules {
		spans = append(spans, c.rules[i].Match(text)...)
	}
	return spans
}

// Match returns the spans of one rule. If the regex has a capture group that
// participated in the match, the group is the span; otherwise the whole match.
func (r *Rule) Match(text string) []detector.Span {
	var spans []detector.Span
	for _, m := range r.regex.FindAllStringSubmatchIndex(text, -1) {
		if r.leftBoundary && isWordRune(lastRune(text[:m[0]])) {
			continue
		}
		if r.rightBoundary && isWordRune(firstRune(text[m[1]:])) {
			continue
		}
		start, end := m[0], m[1]
		if len(m) >= 4 && m[2] >= 0 {
			start, end = m[2], m[3]
		}
		if start >= end {
			continue
		}
		spans = append(spans, detector.Span{
			Start:        start,
			End:          end,
			EntityType:   r.EntityType,
			Score:        r.Score,
			Recognizer:   r.Name,
			ContextWords: r.ContextWords,
		})
	}
	return spans
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func lastRune(s string) rune {
	if s == "" {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func firstRune(s string) rune {
	if s == "" {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// Rules returns the compiled rules in catalog order.
func (c *Catalog) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// RulesFor returns the rules emitting entityType.
func (c *Catalog) RulesFor(entityType string) []Rule {
	var out []Rule
	for _, r := range c.rules {
		if r.EntityType == entityType {
			out = append(out, r)
		}
	}
	return out
}

// Entities lists the entity types the catalog can emit, sorted.
func (c *Catalog) Entities() []string {
	return append([]string(nil), c.entities...)
}

// ContextWords returns the context words configured for an entity type.
func (c *Catalog) ContextWords(entityType string) []string {
	return c.contextWords[entityType]
}

// ContextTable returns a copy of the full context-word table.
func (c *Catalog) ContextTable() map[string][]string {
	return MergeContextWords(c.contextWords, nil)
}

// Description returns the first description registered for an entity type.
func (c *Catalog) Description(entityType string) string {
	return c.descriptions[entityType]
}
