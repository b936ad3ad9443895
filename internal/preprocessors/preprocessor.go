// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"path/filepath"
	"strings"

	"ja-redact/internal/observability"
)

// ProcessedContent represents content that has been processed by a preprocessor
type ProcessedContent struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text string

	// Content metadata
	Format    string
	PageCount int
	CharCount int
	LineCount int

	// Processing information
	ProcessorType string

	// OutputExt replaces the input extension in the output file name when set
	OutputExt string
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts content from the file
	Process(filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager manages all available preprocessors
type PreprocessorManager struct {
	preprocessors []Preprocessor
}

// NewPreprocessorManager creates a new preprocessor manager
func NewPreprocessorManager() *PreprocessorManager {
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
	}
}

// NewDefaultManager registers the plain text and PDF preprocessors.
func NewDefaultManager(observer *observability.StandardObserver) *PreprocessorManager {
	pm := NewPreprocessorManager()
	for _, p := range []Preprocessor{NewPlainTextPreprocessor(), NewPDFTextPreprocessor()} {
		p.SetObserver(observer)
		pm.RegisterPreprocessor(p)
	}
	return pm
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// ProcessFile extracts text with the first preprocessor that accepts the file.
func (pm *PreprocessorManager) ProcessFile(filePath string) (*ProcessedContent, error) {
	p := pm.GetPreprocessor(filePath)
	if p == nil {
		return nil, fmt.Errorf("no preprocessor for %s", filepath.Base(filePath))
	}
	return p.Process(filePath)
}

// GetAvailablePreprocessors returns all registered preprocessors
func (pm *PreprocessorManager) GetAvailablePreprocessors() []Preprocessor {
	return pm.preprocessors
}

// OutputName returns the output file name for a processed input: the input
// base name with prefix prepended and, for converted formats, the new extension.
func OutputName(pc *ProcessedContent, prefix string) string {
	name := filepath.Base(pc.OriginalPath)
	if pc.OutputExt != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + pc.OutputExt
	}
	return prefix + name
}

func hasExtension(filePath string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
