// Package retry provides retry mechanism strategies and implementations
package retry

import (
	"fmt"
	"time"
)

// Default policy values.
const (
	DefaultMaxRetries = 4
	DefaultBaseDelay  = 400 * time.Millisecond
	DefaultMaxDelay   = 8000 * time.Millisecond
)

// Policy configures how a rate-limited call is retried. A Policy is a value:
// each Execute reads it and never writes to it.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int `yaml:"max_retries"`

	// BaseDelay is the backoff for attempt index 0 when no hint is given
	BaseDelay time.Duration `yaml:"base_delay"`

	// MaxDelay caps the exponential backoff (not the Retry-After hint)
	MaxDelay time.Duration `yaml:"max_delay"`
}

// DefaultPolicy returns the policy used by the API wrappers
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
}

// NewPolicy creates a policy starting from the defaults
func NewPolicy(opts ...PolicyOption) Policy {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// MaxAttempts returns the total number of attempts the policy allows
func (p Policy) MaxAttempts() int {
	return p.MaxRetries + 1
}

// Validate checks the policy for impossible values
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("retry: max retries must be >= 0, got %d", p.MaxRetries)
	}
	if p.BaseDelay <= 0 {
		return fmt.Errorf("retry: base delay must be positive, got %v", p.BaseDelay)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("retry: max delay %v is below base delay %v", p.MaxDelay, p.BaseDelay)
	}
	return nil
}

// PolicyOption is a configuration option for retry policies
type PolicyOption func(*Policy)

// WithMaxRetries sets the retry budget
func WithMaxRetries(n int) PolicyOption {
	return func(p *Policy) {
		p.MaxRetries = n
	}
}

// WithBaseDelay sets the initial backoff
func WithBaseDelay(d time.Duration) PolicyOption {
	return func(p *Policy) {
		p.BaseDelay = d
	}
}

// WithMaxDelay sets the maximum backoff
func WithMaxDelay(d time.Duration) PolicyOption {
	return func(p *Policy) {
		p.MaxDelay = d
	}
}
