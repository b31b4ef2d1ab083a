package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by GetJSON when the key is absent or its entry no
// longer decodes.
var ErrCacheMiss = errors.New("cache miss")

// RetryableError marks a backend failure worth another attempt, such as a
// dropped Redis connection or a timeout.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryAttempts bounds the calls RetryWithBackoff makes.
const retryAttempts = 3

// retryDelay is the wait after the first failure; it doubles after each
// further one.
var retryDelay = 100 * time.Millisecond

// RetryWithBackoff calls fn until it succeeds, fails with an error that is
// not Retryable, or has failed retryAttempts times. The last error is
// returned; a cancelled ctx ends the wait early with ctx.Err().
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
