package retry

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNextDelay(t *testing.T) {
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	tests := []struct {
		name    string
		attempt int
		hint    time.Duration
		want    time.Duration
	}{
		{"first retry", 1, 0, time.Second},
		{"second retry doubles", 2, 0, 2 * time.Second},
		{"third retry doubles again", 3, 0, 4 * time.Second},
		{"capped at max", 6, 0, 10 * time.Second},
		{"hint overrides schedule", 1, 7 * time.Second, 7 * time.Second},
		{"hint capped at max", 1, time.Minute, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.NextDelay(tt.attempt, tt.hint); got != tt.want {
				t.Errorf("NextDelay(%d, %v) = %v, want %v", tt.attempt, tt.hint, got, tt.want)
			}
		})
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	result, err := Do(context.Background(), policy, "search", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &ProviderError{Op: "search", StatusCode: http.StatusServiceUnavailable}
		}
		return "found", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "found" {
		t.Errorf("result = %q, want %q", result, "found")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	_, err := Do(context.Background(), policy, "search", func(ctx context.Context) (string, error) {
		calls++
		return "", &ProviderError{Op: "search", StatusCode: http.StatusInternalServerError}
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !strings.Contains(err.Error(), "retries exhausted") {
		t.Errorf("error should mention exhaustion, got %q", err.Error())
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Error("original ProviderError should remain unwrappable")
	}
}

func TestDoNotFoundIsEmptyResult(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), DefaultPolicy(), "search", func(ctx context.Context) ([]int, error) {
		calls++
		return nil, &ProviderError{Op: "search", StatusCode: http.StatusNotFound}
	})
	if err != nil {
		t.Fatalf("404 must not be an error, got %v", err)
	}
	if result != nil {
		t.Errorf("404 must yield the zero value, got %v", result)
	}
	if calls != 1 {
		t.Errorf("404 must not be retried, calls = %d", calls)
	}
}

func TestDoFatalFailsImmediately(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusBadRequest, http.StatusForbidden} {
		calls := 0
		_, err := Do(context.Background(), DefaultPolicy(), "search", func(ctx context.Context) (string, error) {
			calls++
			return "", &ProviderError{Op: "search", StatusCode: status}
		})
		if err == nil {
			t.Errorf("status %d: expected error", status)
		}
		if calls != 1 {
			t.Errorf("status %d: must not retry, calls = %d", status, calls)
		}
	}
}

func TestDoRetriesRateLimitWithHint(t *testing.T) {
	policy := Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 50 * time.Millisecond}

	calls := 0
	start := time.Now()
	result, err := Do(context.Background(), policy, "search", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", &ProviderError{Op: "search", StatusCode: http.StatusTooManyRequests, RetryAfter: 20 * time.Millisecond}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Retry-After hint not honored, waited only %v", elapsed)
	}
}

func TestDoContextCancellation(t *testing.T) {
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, policy, "search", func(ctx context.Context) (string, error) {
			return "", &ProviderError{Op: "search", StatusCode: http.StatusInternalServerError}
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want class
	}{
		{"not found", &ProviderError{StatusCode: 404}, classNotFound},
		{"unauthorized", &ProviderError{StatusCode: 401}, classFatal},
		{"rate limited", &ProviderError{StatusCode: 429}, classRetryable},
		{"server error", &ProviderError{StatusCode: 503}, classRetryable},
		{"client error", &ProviderError{StatusCode: 422}, classFatal},
		{"deadline", context.DeadlineExceeded, classRetryable},
		{"canceled", context.Canceled, classFatal},
		{"wrapped provider error", &ProviderError{StatusCode: 500, Err: errors.New("boom")}, classRetryable},
		{"unknown error", errors.New("connection reset"), classRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
