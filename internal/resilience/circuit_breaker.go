// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CircuitBreakerState represents the state of a circuit breaker
type CircuitBreakerState int

const (
	StateClosed   CircuitBreakerState = iota // Normal operation
	StateOpen                                // Failing fast
	StateHalfOpen                            // Testing if service recovered
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Name             string                                          // Name used in errors
	FailureThreshold int                                             // Consecutive failures before opening
	SuccessThreshold int                                             // Successes needed to close from half-open
	Timeout          time.Duration                                   // How long to stay open before probing
	MaxRequests      int                                             // Concurrent probes in half-open state
	IsFailure        func(error) bool                                // Which errors count
	OnStateChange    func(name string, from, to CircuitBreakerState) // Optional
}

// DefaultCircuitBreakerConfig opens after five consecutive unhealthy
// errors and probes again after 30 seconds.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 1,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
		IsFailure:        IsUnhealthy,
	}
}

// CircuitBreaker stops calling a remote service that keeps failing. Calls
// rejected while open fail immediately; nothing is retried.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	mu     sync.Mutex
	now    func() time.Time

	state           CircuitBreakerState
	failureCount    int
	successCount    int
	lastFailureTime time.Time
	inFlight        int // probes running in half-open state
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 1
	}
	if config.SuccessThreshold < 1 {
		config.SuccessThreshold = 1
	}
	if config.MaxRequests < 1 {
		config.MaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = IsUnhealthy
	}
	return &CircuitBreaker{
		config: config,
		now:    time.Now,
		state:  StateClosed,
	}
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	probe, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	err = fn(ctx)
	cb.afterRequest(probe, err)
	return err
}

// beforeRequest checks if the request should be allowed
func (cb *CircuitBreaker) beforeRequest() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()

	switch cb.state {
	case StateOpen:
		if now.Sub(cb.lastFailureTime) < cb.config.Timeout {
			return false, &CircuitBreakerError{
				Name:  cb.config.Name,
				State: cb.state,
				Message: fmt.Sprintf("circuit breaker '%s' is OPEN (failed %d times, last failure %v ago)",
					cb.config.Name, cb.failureCount, now.Sub(cb.lastFailureTime).Round(time.Second)),
			}
		}
		cb.setState(StateHalfOpen)
		cb.successCount = 0
		fallthrough

	case StateHalfOpen:
		if cb.inFlight >= cb.config.MaxRequests {
			return false, &CircuitBreakerError{
				Name:    cb.config.Name,
				State:   cb.state,
				Message: fmt.Sprintf("circuit breaker '%s' is HALF_OPEN and probing", cb.config.Name),
			}
		}
		cb.inFlight++
		return true, nil
	}
	return false, nil
}

// afterRequest handles the response and updates circuit breaker state
func (cb *CircuitBreaker) afterRequest(probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe {
		cb.inFlight--
	}
	if cb.config.IsFailure(err) {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.failureCount++
	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.setState(StateOpen)
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.setState(StateClosed)
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}

func (cb *CircuitBreaker) setState(newState CircuitBreakerState) {
	if cb.state == newState {
		return
	}
	oldState := cb.state
	cb.state = newState
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, oldState, newState)
	}
}

// GetState returns the current state (thread-safe)
func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// CircuitBreakerError is returned when circuit breaker prevents execution
type CircuitBreakerError struct {
	Name    string
	State   CircuitBreakerState
	Message string
}

func (e *CircuitBreakerError) Error() string {
	return e.Message
}
