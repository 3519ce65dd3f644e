package helper

import (
	"context"
	"time"
)

// DefaultTimeout bounds calls that were given no positive timeout.
const DefaultTimeout = 30 * time.Second

// WithTimeout runs fn under a deadline derived from ctx.
// It returns as soon as the deadline passes, even if fn ignores its context.
// A non-positive timeout is replaced by DefaultTimeout.
func WithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := fn(ctx)
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
