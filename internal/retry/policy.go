// Package retry implements the pure backoff/attempt-limit math for retrying
// an activity or a child workflow. No other package of this module calls it;
// history pagination uses its own backoff.ExponentialBackOff. Policy is
// deliberately a plain value: no clock, no
// sleeping, no I/O, so it is trivial to test and to evaluate deterministically
// during replay.
package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is the retry configuration for a single command kind. A zero
// Policy is invalid; use NewPolicy or explicitly set InitialInterval before
// calling Validate.
type Policy struct {
	InitialInterval    time.Duration
	BackoffCoefficient float64
	MaximumAttempts    int64
	MaximumInterval    time.Duration
	NonRetryableTypes  []string
}

// ConfigError marks a retry policy that failed validation; it is surfaced
// synchronously to the caller constructing the policy, never made visible to
// the workflow program.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid retry policy: " + e.Reason
}

// Validate enforces the constraints a Policy must satisfy before it can be
// evaluated: a positive initial interval, a coefficient of at least 1, and
// (when set) a sane attempt/interval ceiling.
func (p Policy) Validate() error {
	if p.InitialInterval <= 0 {
		return &ConfigError{Reason: "initialInterval must be > 0"}
	}
	if p.BackoffCoefficient != 0 && p.BackoffCoefficient < 1 {
		return &ConfigError{Reason: "backoffCoefficient must be >= 1"}
	}
	if p.MaximumAttempts < 0 {
		return &ConfigError{Reason: "maximumAttempts must be >= 1 when set"}
	}
	if p.MaximumInterval < 0 {
		return &ConfigError{Reason: "maximumInterval must be > 0 when set"}
	}
	return nil
}

func (p Policy) coefficient() float64 {
	if p.BackoffCoefficient == 0 {
		return 2.0
	}
	return p.BackoffCoefficient
}

func (p Policy) maxInterval() time.Duration {
	if p.MaximumInterval > 0 {
		return p.MaximumInterval
	}
	return p.InitialInterval * 100
}

// SleepTime returns how long to wait before the given 1-based attempt.
// It is monotone non-decreasing in attempt until it hits the cap, after
// which it is constant.
func (p Policy) SleepTime(attempt int64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	initialMs := float64(p.InitialInterval / time.Millisecond)
	raw := initialMs * math.Pow(p.coefficient(), float64(attempt-1))

	capMs := float64(p.maxInterval() / time.Millisecond)
	if raw > capMs {
		raw = capMs
	}

	return time.Duration(math.Floor(raw)) * time.Millisecond
}

// ShouldStop reports whether a failed attempt of the given errorType should
// not be retried again.
func (p Policy) ShouldStop(errorType string, attempt int64, elapsed time.Duration, sleepTime time.Duration, expiration *time.Duration) bool {
	for _, t := range p.NonRetryableTypes {
		if t == errorType {
			return true
		}
	}

	if p.MaximumAttempts > 0 && attempt >= p.MaximumAttempts {
		return true
	}

	if expiration != nil && elapsed+sleepTime >= *expiration {
		return true
	}

	return false
}

// BackOff adapts Policy onto backoff.BackOff for callers (history pagination,
// a generic retrying RPC client) that want to drive a retry loop through
// cenkalti/backoff rather than calling SleepTime/ShouldStop by hand. It does
// not honor NonRetryableTypes — that decision needs the error itself, which
// callers make by returning backoff.Permanent(err) from their operation.
type backOffAdapter struct {
	policy  Policy
	attempt int64
	start   time.Time
	clock   backoff.Clock
}

func (p Policy) BackOff(clk backoff.Clock) backoff.BackOff {
	if clk == nil {
		clk = backoff.SystemClock
	}
	return &backOffAdapter{policy: p, clock: clk}
}

func (b *backOffAdapter) NextBackOff() time.Duration {
	if b.start.IsZero() {
		b.start = b.clock.Now()
	}

	b.attempt++

	if b.policy.MaximumAttempts > 0 && b.attempt >= b.policy.MaximumAttempts {
		return backoff.Stop
	}

	return b.policy.SleepTime(b.attempt)
}

func (b *backOffAdapter) Reset() {
	b.attempt = 0
	b.start = time.Time{}
}
