package cache

import (
	"context"
	"errors"
	"time"
)

// Backoff retries transient backend failures with a doubling delay.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff is used by backends configured without one.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 100 * time.Millisecond}

// Do calls fn until it succeeds, returns an error not marked by
// [Transient], or the attempts run out. The last error is returned.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	if b.Attempts < 1 {
		b = DefaultBackoff
	}
	delay := b.Delay
	var err error
	for i := range b.Attempts {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if i == b.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked by [Transient].
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
