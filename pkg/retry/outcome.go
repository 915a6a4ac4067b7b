package retry

import "github.com/jzx17/backoffice/pkg/types"

// OutcomeKind is the executor's decision about a finished attempt.
type OutcomeKind int

const (
	// OutcomeSuccess is an attempt that returned no error
	OutcomeSuccess OutcomeKind = iota
	// OutcomeTransientRateLimited is a 429 with retry budget left; it is retried
	OutcomeTransientRateLimited
	// OutcomeRateLimitExhausted is a 429 after the last allowed attempt
	OutcomeRateLimitExhausted
	// OutcomeCancelled is a caller-initiated abort; never retried
	OutcomeCancelled
	// OutcomeOtherFailure is any other error; never retried
	OutcomeOtherFailure
)

// String returns the string representation of the outcome
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransientRateLimited:
		return "rate_limited"
	case OutcomeRateLimitExhausted:
		return "rate_limit_exhausted"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeOtherFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Retryable reports whether the executor retries this outcome
func (k OutcomeKind) Retryable() bool {
	return k == OutcomeTransientRateLimited
}

// Classify decides the outcome of the attempt with the given zero-based index.
// Cancellation is checked first so that a cancelled 429 is never retried.
func Classify(err error, attemptIndex int, p Policy) OutcomeKind {
	switch {
	case err == nil:
		return OutcomeSuccess
	case types.IsCancelled(err):
		return OutcomeCancelled
	case types.StatusCode(err) != types.StatusTooManyRequests:
		return OutcomeOtherFailure
	case attemptIndex < p.MaxRetries:
		return OutcomeTransientRateLimited
	default:
		return OutcomeRateLimitExhausted
	}
}
