// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package evaluation

import (
	"regexp"

	"ja-redact/internal/detector"
)

// Reference patterns. They are deliberately simpler than the catalog and
// define what a document is expected to have redacted.
var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	phonePattern    = regexp.MustCompile(`0\d{1,4}-\d{1,4}-\d{3,4}`)
	cardPattern     = regexp.MustCompile(`\b(?:\d{4}-){3}\d{4}\b|\b\d{14,16}\b`)
	passwordPattern = regexp.MustCompile(`[Pp]assword\s*[:：=]\s*(\S{8,})|パスワード\s*[:：=]\s*(\S{8,})`)
	secretPattern   = regexp.MustCompile(`(?:sk|pk|tok|secret|key|akid|amzn)[-_a-zA-Z0-9]{12,}`)
)

// ExpectedEntities extracts the reference PII of text, keyed by entity type.
// Repeated values are listed once per occurrence.
func ExpectedEntities(text string) map[string][]string {
	expected := make(map[string][]string)
	add := func(entity string, values []string) {
		if len(values) > 0 {
			expected[entity] = append(expected[entity], values...)
		}
	}

	add(detector.EntityEmailAddress, emailPattern.FindAllString(text, -1))
	add(detector.EntityPhoneNumber, phonePattern.FindAllString(text, -1))
	add(detector.EntityCreditCard, cardPattern.FindAllString(text, -1))

	var passwords []string
	for _, m := range passwordPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			passwords = append(passwords, m[1])
		} else if m[2] != "" {
			passwords = append(passwords, m[2])
		}
	}
	add(detector.EntityPassword, passwords)

	add(detector.EntitySecretKey, secretPattern.FindAllString(text, -1))
	return expected
}
