// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"strings"

	"ja-redact/internal/detector"
)

// suppress runs the checks scoped to the span's entity type. Types without
// rules always pass.
func (f *Filter) suppress(text string, s detector.Span) (Reason, bool) {
	switch {
	case s.EntityType == detector.EntityPerson:
		return f.suppressPerson(text, s)
	case detector.IsOrgFamily(s.EntityType):
		return f.suppressOrg(text, s)
	}
	return "", false
}

func (f *Filter) suppressOrg(text string, s detector.Span) (Reason, bool) {
	matched := strings.TrimSpace(s.Text(text))
	if matched == "" {
		return ReasonBlankAfterStrip, true
	}
	if amountPattern.MatchString(matched) {
		return ReasonAmount, true
	}
	if amountInText.MatchString(matched) {
		window := detector.Fold(f.amountWindow.Window(text, s.Start, s.End))
		if len(detector.FindWords(window, f.amountWords)) > 0 {
			return ReasonAmountContext, true
		}
	}
	return "", false
}

func (f *Filter) suppressPerson(text string, s detector.Span) (Reason, bool) {
	matched := strings.TrimSpace(s.Text(text))
	if matched == "" {
		return ReasonBlankAfterStrip, true
	}
	if f.commonWords[matched] {
		return ReasonCommonWord, true
	}
	if digitsOnlyPattern.MatchString(matched) {
		return ReasonDigitsOnly, true
	}
	if f.suffix.MatchString(matched) {
		return ReasonBusinessSuffix, true
	}

	window := f.personWindow.Window(text, s.Start, s.End)
	if yearPattern.MatchString(matched) && !strings.Contains(window, "年") {
		return ReasonBareYear, true
	}
	if s.Score < f.personMin && len(detector.FindWords(detector.Fold(window), f.personWords)) == 0 {
		return ReasonNoContext, true
	}
	return "", false
}
