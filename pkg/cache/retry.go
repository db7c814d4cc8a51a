package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports a remote backend that could not be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// Backoff retries transient failures with a delay that doubles after each
// failed attempt.
type Backoff struct {
	Attempts int
	Delay    time.Duration // before the second attempt
}

// DefaultBackoff is used when connecting to Redis.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. A nil error stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err}
}

// IsTransient reports whether err, or an error it wraps, was marked with
// [Transient].
func IsTransient(err error) bool {
	var te transientError
	return errors.As(err, &te)
}

// Do calls fn until it succeeds, fails with an error not marked
// [Transient], or runs out of attempts. It returns the last error, or the
// context's error when ctx ends while waiting.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for i := range max(b.Attempts, 1) {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
	}
	return err
}
