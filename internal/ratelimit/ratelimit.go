// Package ratelimit implements per-provider sliding-window admission
// control with an optional fixed delay between requests.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Config bounds request volume for one provider key. A zero Config means
// unrestricted. Window and MaxRequests form the sliding-window quota;
// RequestDelay is an independent floor on the spacing between requests and
// applies even when no window is configured.
type Config struct {
	Window       time.Duration `mapstructure:"window"`
	MaxRequests  int           `mapstructure:"max_requests"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
}

// unwindowed reports whether the sliding-window quota is absent. The
// request delay is handled separately.
func (c Config) unwindowed() bool {
	return c.MaxRequests <= 0 || c.Window <= 0
}

// Limiter tracks timestamped request history per key. One Limiter is
// constructed per process and shared by reference; it is safe for
// concurrent use.
type Limiter struct {
	mu      sync.Mutex
	configs map[string]Config
	history map[string][]time.Time
	last    map[string]time.Time
	now     func() time.Time
}

// NewLimiter returns an empty limiter. Keys without configuration are
// unrestricted.
func NewLimiter() *Limiter {
	return &Limiter{
		configs: make(map[string]Config),
		history: make(map[string][]time.Time),
		last:    make(map[string]time.Time),
		now:     time.Now,
	}
}

// Configure sets the limit for a key, replacing any previous configuration.
func (l *Limiter) Configure(key string, cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.configs[key] = cfg
}

// IsAllowed reports whether a request for key would be admitted right now,
// without blocking and without consuming a slot.
func (l *Limiter) IsAllowed(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg := l.configs[key]
	if cfg.unwindowed() {
		return true
	}
	return len(l.prune(key, cfg)) < cfg.MaxRequests
}

// Remaining returns how many requests are left in the current window.
// Unconfigured keys report -1 (unlimited).
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg := l.configs[key]
	if cfg.unwindowed() {
		return -1
	}
	remaining := cfg.MaxRequests - len(l.prune(key, cfg))
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// TimeToReset returns how long until the oldest in-window request expires.
// Zero when a slot is free right now.
func (l *Limiter) TimeToReset(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg := l.configs[key]
	if cfg.unwindowed() {
		return 0
	}
	window := l.prune(key, cfg)
	if len(window) < cfg.MaxRequests {
		return 0
	}
	wait := window[0].Add(cfg.Window).Sub(l.now())
	if wait < 0 {
		wait = 0
	}
	return wait
}

// WaitForSlot blocks until a request for key may proceed, then records the
// request. The wait is recomputed from the oldest in-window request; after
// a slot frees, the fixed inter-request delay is applied. The delay also
// binds on its own when no window is configured. Returns the context error
// on cancellation, otherwise always nil.
func (l *Limiter) WaitForSlot(ctx context.Context, key string) error {
	for {
		l.mu.Lock()
		cfg := l.configs[key]

		if !cfg.unwindowed() {
			window := l.prune(key, cfg)
			if len(window) >= cfg.MaxRequests {
				wait := window[0].Add(cfg.Window).Sub(l.now())
				l.mu.Unlock()
				if err := sleep(ctx, wait); err != nil {
					return err
				}
				continue
			}
		}

		// Honor the fixed delay since the previous request.
		if cfg.RequestDelay > 0 {
			if last, ok := l.last[key]; ok {
				if delay := cfg.RequestDelay - l.now().Sub(last); delay > 0 {
					l.mu.Unlock()
					if err := sleep(ctx, delay); err != nil {
						return err
					}
					continue
				}
			}
		}

		now := l.now()
		if !cfg.unwindowed() {
			l.history[key] = append(l.history[key], now)
		}
		l.last[key] = now
		l.mu.Unlock()
		return nil
	}
}

// prune drops history entries older than the window. Caller holds l.mu.
func (l *Limiter) prune(key string, cfg Config) []time.Time {
	cutoff := l.now().Add(-cfg.Window)
	window := l.history[key]
	keep := 0
	for keep < len(window) && !window[keep].After(cutoff) {
		keep++
	}
	window = window[keep:]
	l.history[key] = window
	return window
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
