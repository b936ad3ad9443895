// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ja-redact/internal/observability"
)

// MaxTextFileSize caps the size of a text document.
const MaxTextFileSize = 100 * 1024 * 1024

// PlainTextPreprocessor passes UTF-8 text documents through unchanged.
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{
		".txt", ".text", ".log", ".md", ".markdown", ".rst",
		".csv", ".tsv", ".json", ".jsonl", ".yaml", ".yml", ".xml", ".html", ".htm",
	}
}

// CanProcess checks if this preprocessor can handle the given file
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, ptp.GetSupportedExtensions())
}

// Process reads the file. Content is returned byte-for-byte so redacted
// output differs from the input only at replaced spans.
func (ptp *PlainTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finishTiming := ptp.observer.StartTiming("plaintext_preprocessor", "process_file", filePath)

	content, err := ptp.readTextFile(filePath)
	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	result := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          content,
		Format:        "Plain Text",
		CharCount:     utf8.RuneCountInString(content),
		LineCount:     strings.Count(content, "\n") + 1,
		ProcessorType: "plaintext",
	}

	finishTiming(true, map[string]interface{}{
		"char_count": result.CharCount,
		"line_count": result.LineCount,
	})
	return result, nil
}

// readTextFile reads a text file and rejects oversized or non-UTF-8 content.
func (ptp *PlainTextPreprocessor) readTextFile(filePath string) (string, error) {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to get file info: %w", err)
	}
	if fileInfo.Size() > MaxTextFileSize {
		return "", fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), MaxTextFileSize)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8")
	}
	return string(data), nil
}
