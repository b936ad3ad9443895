// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = &StatusError{StatusCode: 503, Body: "down"}

func newTestBreaker(threshold int) (*CircuitBreaker, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: threshold,
		Timeout:          time.Minute,
	})
	cb.now = func() time.Time { return now }
	return cb, &now
}

func fail(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(2)
	ctx := context.Background()

	assert.Equal(t, errUnavailable, cb.Execute(ctx, fail(errUnavailable)))
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, errUnavailable, cb.Execute(ctx, fail(errUnavailable)))
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	var cbErr *CircuitBreakerError
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, StateOpen, cbErr.State)
	assert.False(t, called)
}

func TestCircuitBreakerSuccessResetsCount(t *testing.T) {
	cb, _ := newTestBreaker(2)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail(errUnavailable))
	require.NoError(t, cb.Execute(ctx, fail(nil)))
	_ = cb.Execute(ctx, fail(errUnavailable))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreakerIgnoresRequestErrors(t *testing.T) {
	cb, _ := newTestBreaker(1)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail(&StatusError{StatusCode: 400, Body: "bad"}))
	_ = cb.Execute(ctx, fail(errors.New("decode: unexpected EOF")))
	_ = cb.Execute(ctx, fail(context.Canceled))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreakerHalfOpen(t *testing.T) {
	cb, now := newTestBreaker(1)
	ctx := context.Background()

	var transitions []string
	cb.config.OnStateChange = func(_ string, from, to CircuitBreakerState) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}

	_ = cb.Execute(ctx, fail(errUnavailable))
	require.Equal(t, StateOpen, cb.GetState())

	*now = now.Add(2 * time.Minute)
	_ = cb.Execute(ctx, fail(errUnavailable))
	assert.Equal(t, StateOpen, cb.GetState())

	*now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Execute(ctx, fail(nil)))
	assert.Equal(t, StateClosed, cb.GetState())

	assert.Equal(t, []string{
		"CLOSED->OPEN",
		"OPEN->HALF_OPEN", "HALF_OPEN->OPEN",
		"OPEN->HALF_OPEN", "HALF_OPEN->CLOSED",
	}, transitions)
}

func TestCircuitBreakerHalfOpenLimitsProbes(t *testing.T) {
	cb, now := newTestBreaker(1)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail(errUnavailable))
	*now = now.Add(2 * time.Minute)

	err := cb.Execute(ctx, func(context.Context) error {
		inner := cb.Execute(ctx, fail(nil))
		var cbErr *CircuitBreakerError
		assert.ErrorAs(t, inner, &cbErr)
		assert.Equal(t, StateHalfOpen, cbErr.State)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		unhealthy bool
	}{
		{"503", fmt.Errorf("call: %w", &StatusError{StatusCode: 503}), ErrorTypeServiceUnavailable, true},
		{"429", &StatusError{StatusCode: 429}, ErrorTypeServiceUnavailable, true},
		{"400", &StatusError{StatusCode: 400}, ErrorTypeInvalidInput, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), ErrorTypeTimeout, true},
		{"canceled", context.Canceled, ErrorTypeCanceled, false},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, ErrorTypeTransient, true},
		{"dns", &net.DNSError{Err: "no such host", Name: "sidecar"}, ErrorTypeTransient, true},
		{"other", errors.New("decode: bad json"), ErrorTypeUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ClassifyError(tt.err)
			require.NotNil(t, c)
			assert.Equal(t, tt.wantType, c.Type)
			assert.Equal(t, tt.unhealthy, c.Unhealthy)
			assert.Equal(t, tt.unhealthy, IsUnhealthy(tt.err))
		})
	}
	assert.Nil(t, ClassifyError(nil))
	assert.False(t, IsUnhealthy(nil))
}

func TestStatusErrorMessage(t *testing.T) {
	assert.Equal(t, "unexpected status 503: model not loaded", (&StatusError{StatusCode: 503, Body: "model not loaded"}).Error())
}
