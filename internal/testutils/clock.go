package testutils

import (
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"

	"github.com/jzx17/backoffice/pkg/types"
)

var _ types.Clock = (*FakeClock)(nil)

// FakeClock implements types.Clock on top of a quartz mock. Instead of
// sleeping, After records the requested duration and advances the mock.
type FakeClock struct {
	*quartz.Mock

	mu      sync.Mutex
	waits   []time.Duration
	hold    bool
	waiting chan time.Duration
}

// NewFakeClock creates a fake clock whose waits complete immediately
func NewFakeClock(t testing.TB) *FakeClock {
	return &FakeClock{
		Mock:    quartz.NewMock(t),
		waiting: make(chan time.Duration, 16),
	}
}

// NewHoldingClock creates a fake clock whose waits never complete. Each wait
// is announced on Waiting so a test can act while the caller is suspended.
func NewHoldingClock(t testing.TB) *FakeClock {
	c := NewFakeClock(t)
	c.hold = true
	return c
}

// After records d and returns a channel that fires at once, or never when
// the clock is holding.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	hold := c.hold
	c.mu.Unlock()

	if hold {
		select {
		case c.waiting <- d:
		default:
		}
		return make(chan time.Time)
	}

	c.Mock.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- c.Mock.Now()
	return ch
}

// Now returns the mock's current time
func (c *FakeClock) Now() time.Time {
	return c.Mock.Now()
}

// Since returns the mock time elapsed since t
func (c *FakeClock) Since(t time.Time) time.Duration {
	return c.Mock.Since(t)
}

// Waits returns every duration passed to After, in order
func (c *FakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.waits))
	copy(out, c.waits)
	return out
}

// Waiting announces waits on a holding clock
func (c *FakeClock) Waiting() <-chan time.Duration {
	return c.waiting
}
