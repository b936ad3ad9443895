// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// ErrorType classifies a failed call to a remote recognizer.
type ErrorType int

const (
	ErrorTypeUnknown            ErrorType = iota
	ErrorTypeTransient                    // Connection refused or reset, DNS failures
	ErrorTypeTimeout                      // Request timeouts
	ErrorTypeServiceUnavailable           // 5xx and 429 answers
	ErrorTypeInvalidInput                 // Other 4xx answers
	ErrorTypeCanceled                     // The caller gave up
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeServiceUnavailable:
		return "service_unavailable"
	case ErrorTypeInvalidInput:
		return "invalid_input"
	case ErrorTypeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// StatusError is a non-200 answer from a remote service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original error
	Type     ErrorType

	// Unhealthy reports whether the error says the service itself is down,
	// as opposed to a problem with one request.
	Unhealthy bool
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Type, e.Original)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// ClassifyError categorizes an error. It returns nil for a nil error.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	c := &ClassifiedError{Original: err, Type: ErrorTypeUnknown}

	var statusErr *StatusError
	switch {
	case errors.Is(err, context.Canceled):
		c.Type = ErrorTypeCanceled
	case isTimeoutError(err):
		c.Type = ErrorTypeTimeout
		c.Unhealthy = true
	case errors.As(err, &statusErr):
		if statusErr.StatusCode >= http.StatusInternalServerError || statusErr.StatusCode == http.StatusTooManyRequests {
			c.Type = ErrorTypeServiceUnavailable
			c.Unhealthy = true
		} else {
			c.Type = ErrorTypeInvalidInput
		}
	case isNetworkError(err):
		c.Type = ErrorTypeTransient
		c.Unhealthy = true
	}
	return c
}

// IsUnhealthy reports whether err counts against a circuit breaker.
func IsUnhealthy(err error) bool {
	c := ClassifyError(err)
	return c != nil && c.Unhealthy
}

// isNetworkError checks if an error is network-related
func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

// isTimeoutError checks if an error is timeout-related
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
