// Package retrylimit provides an adaptive rate limiter and a small retry
// wrapper for network clients. The limiter speeds up while requests succeed
// and backs off when the upstream starts failing.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(4, 1, 10, 1, 0.5)
//	err := retrylimit.WithRetry(ctx, lim, 3, func() error {
//	    return fetchMetadata()
//	})
package retrylimit

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter wraps a token-bucket limiter whose rate adjusts with the
// outcome of requests. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	minLimit rate.Limit
	maxLimit rate.Limit
	stepUp   rate.Limit
	stepDown float64
	lastErr  time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per
// second, bounded by [min, max]. stepUp is added on success, stepDown is the
// multiplier applied on failure (e.g. 0.5 to halve).
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < min {
		initial = min
	}
	burst := int(initial)
	if burst < 1 {
		burst = 1
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burst),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or the context is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success nudges the rate up, once the last failure is far enough behind.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastErr) > 10*time.Second {
		a.adjust(a.limiter.Limit() + a.stepUp)
	}
}

// Failure cuts the rate after a failed request.
func (a *AdaptiveLimiter) Failure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr = time.Now()
	a.adjust(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjust(next rate.Limit) {
	if next > a.maxLimit {
		next = a.maxLimit
	}
	if next < a.minLimit {
		next = a.minLimit
	}
	if next == a.limiter.Limit() {
		return
	}
	a.limiter.SetLimit(next)
	burst := int(next)
	if burst < 1 {
		burst = 1
	}
	a.limiter.SetBurst(burst)
}

// Fatal wraps an error that should stop retries immediately.
type Fatal struct {
	Err error
}

func (f *Fatal) Error() string { return f.Err.Error() }
func (f *Fatal) Unwrap() error { return f.Err }

// WithRetry runs fn up to attempts times, pacing each attempt through the
// limiter and backing off with jitter between failures. A *Fatal error or a
// done context ends the loop early.
func WithRetry(ctx context.Context, lim *AdaptiveLimiter, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	delay := 500 * time.Millisecond
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		lastErr = err
		if lim != nil {
			lim.Failure()
		}

		var fatal *Fatal
		if errors.As(err, &fatal) {
			return fatal.Err
		}
		if attempt == attempts-1 {
			break
		}

		sleep := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		delay *= 2
	}
	return lastErr
}
