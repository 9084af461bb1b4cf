package llm

import (
	"context"
	"time"
)

// backoffFunc returns the wait before the next attempt; attempt is 0-based
// and counts the attempts already failed.
type backoffFunc func(attempt int) time.Duration

// sleepFunc waits for d or until ctx is done. Tests inject a recording
// implementation so retry paths run without real delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

func expBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retryWithBackoff runs fn up to attempts times, waiting backoff(i) after
// the i-th failure. Returns nil on the first success, the context error if
// the wait is interrupted, and otherwise the last error after exhaustion.
func retryWithBackoff(ctx context.Context, attempts int, backoff backoffFunc, sleep sleepFunc, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt < attempts-1 {
			if err := sleep(ctx, backoff(attempt)); err != nil {
				return err
			}
		}
	}
	return lastErr
}
