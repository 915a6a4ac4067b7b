// Package retry provides backoff algorithm implementations
package retry

import (
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jzx17/backoffice/pkg/types"
)

const (
	// JitterFactor is the half-width of the uniform jitter window
	JitterFactor = 0.2

	// MinDelay is the floor applied after jitter
	MinDelay = 200 * time.Millisecond
)

var secondsPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ParseRetryAfter interprets a Retry-After hint relative to now. A bare
// integer or decimal is a number of seconds; anything else is tried as an
// absolute date. Dates in the past yield zero. ok is false when the hint
// cannot be parsed.
func ParseRetryAfter(hint string, now time.Time) (time.Duration, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return 0, false
	}

	if secondsPattern.MatchString(hint) {
		secs, err := strconv.ParseFloat(hint, 64)
		if err != nil {
			return 0, false
		}
		return msToDuration(secs * 1000), true
	}

	at, ok := parseHTTPTime(hint)
	if !ok {
		return 0, false
	}
	diffMs := float64(at.Sub(now)) / float64(time.Millisecond)
	secs := math.Max(0, math.Ceil(diffMs/1000))
	return msToDuration(secs * 1000), true
}

func parseHTTPTime(s string) (time.Time, bool) {
	if t, err := http.ParseTime(s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// BackoffDelay returns the exponential delay for attemptIndex (starting at 0),
// rounded to the millisecond and capped at the policy maximum.
func BackoffDelay(p Policy, attemptIndex int) time.Duration {
	if attemptIndex < 0 {
		attemptIndex = 0
	}
	baseMs := durationToMs(p.BaseDelay)
	maxMs := durationToMs(p.MaxDelay)
	delayMs := math.Min(maxMs, math.Round(baseMs*math.Pow(2, float64(attemptIndex))))
	return msToDuration(delayMs)
}

// PreJitterDelay picks the delay before jitter: the Retry-After hint carried by
// err when it parses, otherwise the exponential backoff for attemptIndex.
func PreJitterDelay(p Policy, err error, attemptIndex int, now time.Time) time.Duration {
	if hint, ok := types.RetryAfterHint(err); ok {
		if d, ok := ParseRetryAfter(hint, now); ok {
			return d
		}
	}
	return BackoffDelay(p, attemptIndex)
}

// ApplyJitter spreads d uniformly over ±20% using r in [0, 1), then rounds to
// the millisecond and floors the result at MinDelay.
func ApplyJitter(d time.Duration, r float64) time.Duration {
	delayMs := durationToMs(d)
	delayMs += delayMs * (r*2*JitterFactor - JitterFactor)
	delayMs = math.Round(delayMs)
	return max(msToDuration(delayMs), MinDelay)
}

func durationToMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// msToDuration saturates at the largest Duration instead of wrapping negative
func msToDuration(ms float64) time.Duration {
	ns := math.Round(ms * float64(time.Millisecond))
	if ns >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
