package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// RetryAfterError wraps an error with an explicit delay before the next
// attempt. Used when the provider names its own schedule: a quota window
// about to reset, or a statistic still being computed server-side.
type RetryAfterError struct {
	Err   error
	After time.Duration
}

func (e *RetryAfterError) Error() string { return e.Err.Error() }
func (e *RetryAfterError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times.
//
// Errors wrapped with [RetryAfterError] wait exactly the carried delay;
// errors wrapped with [RetryableError] wait the base delay, doubling after
// each failed attempt. Other errors are returned immediately. Returns the
// last error (unwrapped from its retry marker) if all attempts fail, or
// ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var wait time.Duration
		var after *RetryAfterError
		switch {
		case errors.As(err, &after):
			wait = after.After
		case isRetryable(err):
			wait = delay
			delay *= 2
		default:
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return Unwrap(lastErr)
}

// RetryWithBackoff is a convenience wrapper around [Retry] with sensible
// defaults: 3 attempts with 1 second initial delay (doubling each retry).
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

// Unwrap strips a retry marker from err, returning the underlying error.
// Non-marker errors are returned unchanged.
func Unwrap(err error) error {
	var re *RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	var ra *RetryAfterError
	if errors.As(err, &ra) {
		return ra.Err
	}
	return err
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
