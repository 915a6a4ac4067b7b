// Package retry wraps a single backend call and retries it when the backend
// answers 429 Too Many Requests.
//
// Key Features:
//
// 1. One policy for every resource wrapper:
//   - MaxRetries (default 4), BaseDelay (default 400ms), MaxDelay (default 8s)
//   - Total attempts never exceed MaxRetries+1
//
// 2. Delay selection:
//   - Retry-After hint first: decimal seconds, or an HTTP-date relative to now
//   - Otherwise min(MaxDelay, round(BaseDelay * 2^attemptIndex))
//   - ±20% uniform jitter, rounded to the millisecond, never below 200ms
//
// 3. Outcomes:
//   - OutcomeTransientRateLimited: 429 with budget left, retried after the delay
//   - OutcomeRateLimitExhausted: 429 on the last attempt, returned unchanged
//   - OutcomeCancelled: caller abort, returned at once
//   - OutcomeOtherFailure: anything else, returned at once
//
// Basic usage example:
//
//	executor := retry.NewExecutor(retry.DefaultPolicy(),
//		retry.WithEventHandler(retry.NewLogEventHandler(logger)))
//
//	invoices, err := retry.ExecuteWithName(executor, ctx, "invoices.list",
//		func(ctx context.Context) ([]model.Invoice, error) {
//			return fetchInvoices(ctx)
//		})
//
// Cancellation:
//
// Cancelling ctx stops the executor before the next attempt or in the middle of
// a backoff. The returned error matches types.ErrCancelled and the context
// error with errors.Is, and also carries the last attempt error.
//
// Idempotency:
//
// Non-idempotent calls (resource creation) are retried on 429 like any other
// call. The executor does not deduplicate; callers that cannot tolerate a
// repeat must not wrap those calls.
//
// Thread safety:
//
// An Executor is immutable after construction. Concurrent calls share no
// counters and do not throttle one another.
package retry
