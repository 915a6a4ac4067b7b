// Package retry provides retry executor implementation
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jzx17/backoffice/pkg/types"
)

// Executor runs calls under a Policy. It holds no per-call state, so one
// Executor can serve any number of concurrent calls; those calls do not
// coordinate or throttle each other.
type Executor struct {
	policy       Policy
	clock        types.Clock
	random       func() float64
	eventHandler EventHandler
	metrics      MetricsCollector
}

// ExecuteFunc is the function type to retry
type ExecuteFunc[T any] func(ctx context.Context) (T, error)

// NewExecutor creates a retry executor
func NewExecutor(policy Policy, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		policy: policy,
		clock:  types.NewRealClock(),
		random: rand.Float64,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Policy returns the executor's policy
func (e *Executor) Policy() Policy {
	return e.policy
}

// Do runs fn under p with a default executor.
func Do[T any](ctx context.Context, p Policy, fn ExecuteFunc[T]) (T, error) {
	return Execute(NewExecutor(p), ctx, fn)
}

// Execute executes a function with retry logic
func Execute[T any](e *Executor, ctx context.Context, fn ExecuteFunc[T]) (T, error) {
	return ExecuteWithName(e, ctx, "default", fn)
}

// ExecuteWithName executes a function with retry logic (with name for metrics and events).
//
// Only rate-limited failures (status 429) are retried, and only while the
// attempt index is below MaxRetries. Every other failure is returned exactly
// as fn returned it. A context that is done before an attempt or during a
// backoff ends the call with an error matching types.ErrCancelled.
func ExecuteWithName[T any](e *Executor, ctx context.Context, name string, fn ExecuteFunc[T]) (T, error) {
	var zero T
	var lastErr error
	start := e.clock.Now()

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return zero, e.cancelled(ctx, name, attempt, lastErr)
		}

		result, err := fn(ctx)
		outcome := Classify(err, attempt, e.policy)
		e.observeAttempt(name, outcome)

		switch outcome {
		case OutcomeSuccess:
			if e.eventHandler != nil && attempt > 0 {
				e.eventHandler.OnRetrySuccess(ctx, name, attempt+1, e.clock.Since(start))
			}
			return result, nil

		case OutcomeTransientRateLimited:
			lastErr = err
			delay := ApplyJitter(PreJitterDelay(e.policy, err, attempt, e.clock.Now()), e.random())
			if e.metrics != nil {
				e.metrics.ObserveBackoff(name, delay)
			}
			if e.eventHandler != nil {
				e.eventHandler.OnRetryScheduled(ctx, name, attempt+1, delay, err)
			}

			select {
			case <-ctx.Done():
				return zero, e.cancelled(ctx, name, attempt+1, lastErr)
			case <-e.clock.After(delay):
			}

		default:
			if e.eventHandler != nil {
				e.eventHandler.OnGiveUp(ctx, name, attempt+1, outcome, err)
			}
			return zero, err
		}
	}
}

// ExecuteAsync executes a function with retry asynchronously
func ExecuteAsync[T any](e *Executor, ctx context.Context, fn ExecuteFunc[T]) <-chan types.Result[T] {
	return ExecuteAsyncWithName(e, ctx, "default", fn)
}

// ExecuteAsyncWithName executes a function with retry asynchronously (with name)
func ExecuteAsyncWithName[T any](e *Executor, ctx context.Context, name string, fn ExecuteFunc[T]) <-chan types.Result[T] {
	resultChan := make(chan types.Result[T], 1)

	go func() {
		defer close(resultChan)

		start := e.clock.Now()
		value, err := ExecuteWithName(e, ctx, name, fn)

		resultChan <- types.Result[T]{
			Value:    value,
			Error:    err,
			Duration: e.clock.Since(start),
		}
	}()

	return resultChan
}

// cancelled builds the error for a context that ended between attempts. The
// last attempt error, if any, is kept alongside the cancellation.
func (e *Executor) cancelled(ctx context.Context, name string, attempts int, lastErr error) error {
	err := errors.Join(fmt.Errorf("%w: %w", types.ErrCancelled, context.Cause(ctx)), lastErr)
	if e.metrics != nil {
		e.metrics.ObserveCancelled(name)
	}
	if e.eventHandler != nil {
		e.eventHandler.OnGiveUp(ctx, name, attempts, OutcomeCancelled, err)
	}
	return err
}

func (e *Executor) observeAttempt(name string, outcome OutcomeKind) {
	if e.metrics != nil {
		e.metrics.ObserveAttempt(name, outcome)
	}
}

// MetricsCollector receives per-attempt outcomes and chosen backoff delays.
// ObserveCancelled marks a call abandoned between attempts; no attempt is
// counted for it.
type MetricsCollector interface {
	ObserveAttempt(operation string, outcome OutcomeKind)
	ObserveBackoff(operation string, delay time.Duration)
	ObserveCancelled(operation string)
}

// ExecutorOption is a configuration option for retry executor
type ExecutorOption func(*Executor)

// WithEventHandler sets the event handler
func WithEventHandler(handler EventHandler) ExecutorOption {
	return func(e *Executor) {
		e.eventHandler = handler
	}
}

// WithMetricsCollector sets the metrics collector
func WithMetricsCollector(collector MetricsCollector) ExecutorOption {
	return func(e *Executor) {
		e.metrics = collector
	}
}

// WithClock sets the clock for time operations
func WithClock(clock types.Clock) ExecutorOption {
	return func(e *Executor) {
		e.clock = clock
	}
}

// WithRandom sets the source of jitter. fn must return values in [0, 1) and
// be safe for concurrent use.
func WithRandom(fn func() float64) ExecutorOption {
	return func(e *Executor) {
		e.random = fn
	}
}
