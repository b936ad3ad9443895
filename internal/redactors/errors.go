// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"errors"
	"fmt"
	"time"
)

// RedactionErrorType defines the type of redaction error
type RedactionErrorType int

const (
	// ErrorInitialization indicates a recognizer or pipeline could not be built
	ErrorInitialization RedactionErrorType = iota

	// ErrorRead indicates the input document could not be read
	ErrorRead

	// ErrorAnalyze indicates candidate detection failed for a document
	ErrorAnalyze

	// ErrorWrite indicates the redacted output could not be written
	ErrorWrite

	// ErrorConfiguration indicates a configuration error
	ErrorConfiguration
)

// String returns the string representation of the error type
func (ret RedactionErrorType) String() string {
	switch ret {
	case ErrorInitialization:
		return "initialization"
	case ErrorRead:
		return "read"
	case ErrorAnalyze:
		return "analyze"
	case ErrorWrite:
		return "write"
	case ErrorConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// RedactionError represents an error that occurred during redaction
type RedactionError struct {
	// Type is the type of error
	Type RedactionErrorType

	// Message is the error message
	Message string

	// FilePath is the path to the file being processed when the error occurred
	FilePath string

	// Component is the component that generated the error
	Component string

	// Recoverable reports whether the batch may continue with the next document
	Recoverable bool

	// Timestamp is when the error occurred
	Timestamp time.Time

	// Cause is the underlying error that caused this error
	Cause error
}

// Error implements the error interface
func (re *RedactionError) Error() string {
	if re.FilePath != "" {
		return fmt.Sprintf("[%s] %s (file: %s, component: %s): %s",
			re.Type.String(), re.Message, re.FilePath, re.Component, re.causeMessage())
	}
	return fmt.Sprintf("[%s] %s (component: %s): %s",
		re.Type.String(), re.Message, re.Component, re.causeMessage())
}

func (re *RedactionError) causeMessage() string {
	if re.Cause != nil {
		return re.Cause.Error()
	}
	return ""
}

// Unwrap returns the underlying error for error unwrapping
func (re *RedactionError) Unwrap() error {
	return re.Cause
}

// NewRedactionError creates a new RedactionError
func NewRedactionError(errorType RedactionErrorType, message, filePath, component string, cause error) *RedactionError {
	return &RedactionError{
		Type:        errorType,
		Message:     message,
		FilePath:    filePath,
		Component:   component,
		Recoverable: isRecoverable(errorType),
		Timestamp:   time.Now(),
		Cause:       cause,
	}
}

// isRecoverable determines if an error type is recoverable
func isRecoverable(errorType RedactionErrorType) bool {
	switch errorType {
	case ErrorRead, ErrorAnalyze, ErrorWrite:
		return true
	default:
		return false
	}
}

// IsRecoverable reports whether err is a RedactionError the batch can skip past.
func IsRecoverable(err error) bool {
	var re *RedactionError
	return errors.As(err, &re) && re.Recoverable
}
