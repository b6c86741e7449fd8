package utils

import (
	"context"
	"fmt"
	"time"
)

// Backoff returns how long to wait after the given failed attempt (1-based).
type Backoff func(attempt int) time.Duration

// FlatBackoff waits the same duration after every failure.
func FlatBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// JitterBackoff waits a random duration in [min, max) after every failure.
// There is no growth between attempts.
func JitterBackoff(min, max time.Duration) Backoff {
	return func(int) time.Duration { return RandomDuration(min, max) }
}

// RetryError is returned by WithRetry once every attempt has failed.
type RetryError struct {
	Attempts int
	Last     error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("all %d attempts failed, last error: %v", e.Attempts, e.Last)
}

func (e *RetryError) Unwrap() error { return e.Last }

// WithRetry runs op up to maxAttempts times and stops at the first success.
// onFailure, when set, sees every failed attempt before the backoff sleep.
//
// Usage:
//
//	html, err := utils.WithRetry(ctx, 3, utils.FlatBackoff(2*time.Second), nil,
//	    func(ctx context.Context, attempt int) (string, error) {
//	        return nav.Navigate(ctx, url)
//	    })
func WithRetry[T any](
	ctx context.Context,
	maxAttempts int,
	backoff Backoff,
	onFailure func(attempt int, err error, wait time.Duration),
	op func(ctx context.Context, attempt int) (T, error),
) (T, error) {
	var zero T
	var lastErr error

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := op(ctx, attempt)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			if onFailure != nil {
				onFailure(attempt, err, 0)
			}
			break
		}

		var wait time.Duration
		if backoff != nil {
			wait = backoff(attempt)
		}
		if onFailure != nil {
			onFailure(attempt, err, wait)
		}
		if err := Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, &RetryError{Attempts: maxAttempts, Last: lastErr}
}
