// Package retry wraps provider operations with bounded retries. Transient
// failures (timeouts, 5xx, 429) back off exponentially; permanent failures
// (401, other 4xx) fail immediately; 404 means "not found" and yields an
// empty result rather than an error.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"
)

// ProviderError carries the HTTP status a provider call failed with, plus
// any Retry-After hint the server supplied.
type ProviderError struct {
	Op         string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// classification buckets for a failed attempt.
type class int

const (
	classRetryable class = iota
	classFatal
	classNotFound
)

// phase is the explicit retry state machine.
type phase int

const (
	phaseAttempting phase = iota
	phaseWaiting
	phaseExhausted
)

// Policy bounds the retry loop.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy matches the behavior providers are tuned for: three
// attempts, one-second base backoff, thirty-second cap.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second}
}

// NextDelay computes the backoff before the given attempt (1-based) retries.
// A server-provided hint overrides the exponential schedule. Pure function.
func (p Policy) NextDelay(attempt int, hint time.Duration) time.Duration {
	if hint > 0 {
		if p.MaxDelay > 0 && hint > p.MaxDelay {
			return p.MaxDelay
		}
		return hint
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Do runs fn under the policy, annotating terminal errors with op. A 404
// returns the zero value with a nil error.
func Do[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	state := phaseAttempting
	var lastErr error

	for attempt := 1; state != phaseExhausted; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		switch classify(err) {
		case classNotFound:
			return zero, nil
		case classFatal:
			return zero, fmt.Errorf("%s: %w", op, err)
		}

		if attempt >= maxAttempts {
			state = phaseExhausted
			break
		}

		state = phaseWaiting
		if err := sleep(ctx, p.NextDelay(attempt, retryAfterHint(lastErr))); err != nil {
			return zero, fmt.Errorf("%s: %w", op, err)
		}
		state = phaseAttempting
	}

	return zero, fmt.Errorf("%s: retries exhausted after %d attempts: %w", op, maxAttempts, lastErr)
}

func classify(err error) class {
	var pe *ProviderError
	if errors.As(err, &pe) {
		switch {
		case pe.StatusCode == http.StatusNotFound:
			return classNotFound
		case pe.StatusCode == http.StatusUnauthorized:
			return classFatal
		case pe.StatusCode == http.StatusTooManyRequests:
			return classRetryable
		case pe.StatusCode >= 500:
			return classRetryable
		case pe.StatusCode >= 400:
			return classFatal
		}
		return classRetryable
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return classRetryable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return classRetryable
	}
	if errors.Is(err, context.Canceled) {
		return classFatal
	}

	// Unknown errors are treated as transient network faults.
	return classRetryable
}

func retryAfterHint(err error) time.Duration {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.RetryAfter
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
