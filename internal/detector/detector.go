// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"context"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// Entity types emitted by the built-in catalog. The set is open: any string
// returned by an external recognizer (e.g. LOCATION) is carried as-is.
const (
	EntityPhoneNumber    = "PHONE_NUMBER"
	EntityEmailAddress   = "EMAIL_ADDRESS"
	EntityCreditCard     = "CREDIT_CARD"
	EntityPerson         = "PERSON"
	EntityOrg            = "ORG"
	EntityOrganization   = "ORGANIZATION"
	EntityLocation       = "LOCATION"
	EntityMyNumber       = "MY_NUMBER"
	EntityDriversLicense = "DRIVERS_LICENSE"
	EntityPassport       = "PASSPORT"
	EntityBankAccount    = "BANK_ACCOUNT"
	EntityTaxNumber      = "TAX_NUMBER"
	EntityPassword       = "PASSWORD"
	EntitySecretKey      = "SECRET_KEY"
	EntityCertificate    = "CERTIFICATE"
	EntitySecurityCode   = "SECURITY_CODE"
	EntityPIN            = "PIN"
)

// IsOrgFamily reports whether the entity type is one of the organization aliases.
func IsOrgFamily(entityType string) bool {
	return entityType == EntityOrg || entityType == EntityOrganization
}

// Span is a half-open byte range [Start, End) of a UTF-8 document tagged with
// an entity type and a confidence score in [0,1].
type Span struct {
	Start      int
	End        int
	EntityType string
	Score      float64

	// Recognizer is the rule or engine name that produced the span
	Recognizer string

	// ContextWords are the words that may raise the score of this span.
	// Only catalog spans carry them.
	ContextWords []string

	// Context records what the score adjuster found around the span
	Context ContextInfo
}

// ContextInfo stores contextual information about a span
type ContextInfo struct {
	BeforeText string
	AfterText  string

	// Context words found near the span
	PositiveKeywords []string

	// Score change applied by the adjuster
	ConfidenceImpact float64
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Valid reports whether the span is non-empty, inside text and aligned to rune boundaries.
func (s Span) Valid(text string) bool {
	if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
		return false
	}
	return isRuneBoundary(text, s.Start) && isRuneBoundary(text, s.End)
}

// Text returns the covered substring. The span must be valid for text.
func (s Span) Text(text string) string {
	return text[s.Start:s.End]
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Overlaps reports whether s and o share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// WithEnd returns a copy of the span ending at end.
func (s Span) WithEnd(end int) Span {
	s.End = end
	return s
}

// AnalyzeRequest is the contract passed to an external recognizer.
type AnalyzeRequest struct {
	Text           string
	Language       string
	Entities       []string
	AllowList      []string
	ScoreThreshold float64
}

// Recognizer is an external entity recognizer (statistical model, remote
// analyzer service). Implementations document their own concurrency contract.
type Recognizer interface {
	// Name identifies the recognizer in logs and audit records
	Name() string

	// Analyze returns candidate spans with byte offsets into req.Text
	Analyze(ctx context.Context, req AnalyzeRequest) ([]Span, error)
}

// TokenPattern matches anonymization tokens such as <PERSON1>.
var TokenPattern = regexp.MustCompile(`<[A-Z][A-Z0-9_]*[0-9]+>`)

// Token renders the anonymization token for an entity type and index.
func Token(entityType string, index int) string {
	return "<" + entityType + strconv.Itoa(index) + ">"
}

func isRuneBoundary(s string, i int) bool {
	if i == 0 || i == len(s) {
		return true
	}
	return utf8.RuneStart(s[i])
}
