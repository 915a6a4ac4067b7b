// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// DefaultTimeout bounds every test context
const DefaultTimeout = 5 * time.Second

// Context returns a context that is cancelled when the test ends or after
// DefaultTimeout, whichever comes first
func Context(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	t.Cleanup(cancel)
	return ctx
}

// Sequence returns an attempt function that replays errs in order and then
// succeeds with value. calls counts every invocation.
func Sequence[T any](calls *atomic.Int32, value T, errs ...error) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		n := int(calls.Add(1))
		if n <= len(errs) && errs[n-1] != nil {
			var zero T
			return zero, errs[n-1]
		}
		return value, nil
	}
}

// Always returns an attempt function that fails with err on every call
func Always[T any](calls *atomic.Int32, err error) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		calls.Add(1)
		var zero T
		return zero, err
	}
}
