// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"ja-redact/internal/anonymizer"
	"ja-redact/internal/filter"
)

// RedactionAuditLog records what was replaced in one document. It never
// contains the replaced values, only their types, tokens and positions.
type RedactionAuditLog struct {
	// DocumentID is a unique identifier for this document
	DocumentID string `json:"document_id"`

	// RedactionTimestamp is when the redaction was performed
	RedactionTimestamp time.Time `json:"redaction_timestamp"`

	// ToolVersion is the version of the tool that performed the redaction
	ToolVersion string `json:"tool_version"`

	OriginalPath string `json:"original_path"`
	RedactedPath string `json:"redacted_path"`

	// BLAKE3 hashes of the input text and the redacted output
	OriginalHash string `json:"original_hash"`
	RedactedHash string `json:"redacted_hash"`

	RedactionSummary RedactionSummary `json:"redaction_summary"`

	ContentRedactions []ContentRedaction `json:"content_redactions"`
}

// RedactionSummary contains summary statistics about redactions performed
type RedactionSummary struct {
	TotalRedactions int `json:"total_redactions"`

	// EntityTypes lists the redacted types, sorted
	EntityTypes []string `json:"entity_types"`

	// DistinctValues counts distinct values per type (the highest token index)
	DistinctValues map[string]int `json:"distinct_values"`

	// Candidates is the number of spans that reached the filter
	Candidates int `json:"candidates"`

	// Suppressed counts filter drops by reason
	Suppressed map[string]int `json:"suppressed,omitempty"`

	ProcessingTime time.Duration `json:"processing_time"`
}

// ContentRedaction represents audit information for a single replacement
type ContentRedaction struct {
	ID         string  `json:"id"`
	EntityType string  `json:"entity_type"`
	Token      string  `json:"token"`
	Index      int     `json:"index"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
	Recognizer string  `json:"recognizer"`
}

// NewRedactionAuditLog creates an audit log with a fresh document id.
func NewRedactionAuditLog(originalPath, redactedPath, toolVersion string) *RedactionAuditLog {
	return &RedactionAuditLog{
		DocumentID:         uuid.NewString(),
		RedactionTimestamp: time.Now().UTC(),
		ToolVersion:        toolVersion,
		OriginalPath:       originalPath,
		RedactedPath:       redactedPath,
		RedactionSummary: RedactionSummary{
			EntityTypes:    []string{},
			DistinctValues: map[string]int{},
		},
		ContentRedactions: make([]ContentRedaction, 0),
	}
}

// Record fills the log from a finished redaction.
func (ri *RedactionAuditLog) Record(original string, res anonymizer.Result, fstats filter.Stats, elapsed time.Duration) {
	ri.OriginalHash = GenerateDocumentHash([]byte(original))
	ri.RedactedHash = GenerateDocumentHash([]byte(res.Text))

	for _, r := range res.Replacements {
		ri.AddContentRedaction(ContentRedaction{
			EntityType: r.EntityType,
			Token:      r.Token,
			Index:      r.Index,
			Start:      r.Start,
			End:        r.End,
			Confidence: r.Score,
			Recognizer: r.Recognizer,
		})
	}

	ri.RedactionSummary.Candidates = fstats.Input
	if len(fstats.Dropped) > 0 {
		ri.RedactionSummary.Suppressed = make(map[string]int, len(fstats.Dropped))
		for reason, n := range fstats.Dropped {
			ri.RedactionSummary.Suppressed[string(reason)] = n
		}
	}
	ri.RedactionSummary.ProcessingTime = elapsed
}

// AddContentRedaction adds a content redaction to the log
func (ri *RedactionAuditLog) AddContentRedaction(redaction ContentRedaction) {
	if redaction.ID == "" {
		redaction.ID = fmt.Sprintf("%s-%d", ri.DocumentID, len(ri.ContentRedactions)+1)
	}
	ri.ContentRedactions = append(ri.ContentRedactions, redaction)

	s := &ri.RedactionSummary
	s.TotalRedactions++
	if _, seen := s.DistinctValues[redaction.EntityType]; !seen {
		s.EntityTypes = append(s.EntityTypes, redaction.EntityType)
		sort.Strings(s.EntityTypes)
	}
	s.DistinctValues[redaction.EntityType] = max(s.DistinctValues[redaction.EntityType], redaction.Index)
}

// ToJSON converts the audit log to JSON
func (ri *RedactionAuditLog) ToJSON() ([]byte, error) {
	return json.MarshalIndent(ri, "", "  ")
}

// FromJSON parses an audit log
func FromJSON(data []byte) (*RedactionAuditLog, error) {
	var log RedactionAuditLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit log: %w", err)
	}
	return &log, nil
}

// WriteTo writes the log as <dir>/<base of the redacted path>.audit.json.
func (ri *RedactionAuditLog) WriteTo(dir string) (string, error) {
	if err := ri.Validate(); err != nil {
		return "", err
	}
	data, err := ri.ToJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode audit log: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create audit directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(ri.RedactedPath)+".audit.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write audit log: %w", err)
	}
	return path, nil
}

// Validate validates the audit log for completeness and consistency
func (ri *RedactionAuditLog) Validate() error {
	if ri.DocumentID == "" {
		return fmt.Errorf("document_id cannot be empty")
	}
	if ri.OriginalPath == "" {
		return fmt.Errorf("original_path cannot be empty")
	}
	if ri.RedactedPath == "" {
		return fmt.Errorf("redacted_path cannot be empty")
	}
	if ri.RedactionTimestamp.IsZero() {
		return fmt.Errorf("redaction_timestamp cannot be zero")
	}
	for i, r := range ri.ContentRedactions {
		if r.EntityType == "" {
			return fmt.Errorf("content_redactions[%d].entity_type cannot be empty", i)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return fmt.Errorf("content_redactions[%d].confidence must be between 0 and 1", i)
		}
		if r.Start < 0 || r.End < r.Start {
			return fmt.Errorf("content_redactions[%d] has an invalid range", i)
		}
	}
	return nil
}

// GenerateDocumentHash returns the hex BLAKE3-256 digest of content.
func GenerateDocumentHash(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}
