// Package replayclock implements the executor's deterministic notion of
// time: Now() returns the timestamp last passed to Advance, which the
// executor sets from each batch's WorkflowTaskStarted event, in replay and
// live batches alike; it does not read wall time. A single active timer fires
// an empty callback purely to make the service schedule a fresh workflow
// task once the workflow can make progress again.
package replayclock

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
)

// Clock wraps a benbjohnson/clock.Clock, which schedules the wake-up timer,
// so tests can drive that timer with a clock.Mock. Now() does not consult
// the wrapped clock.
type Clock struct {
	clock clock.Clock

	currentReplayTime time.Time
	isReplaying       bool
	nextWakeUpTime    int64 // unix millis, 0 = none

	timer *clock.Timer
}

func New(c clock.Clock) *Clock {
	if c == nil {
		c = clock.New()
	}
	return &Clock{clock: c}
}

// Now returns the current replay time.
func (c *Clock) Now() time.Time {
	return c.currentReplayTime
}

// Advance moves the clock forward to t. During replay this must be called
// with each event's recorded timestamp before that event is dispatched,
// never backwards in time.
func (c *Clock) Advance(t time.Time) {
	if t.Before(c.currentReplayTime) {
		t = c.currentReplayTime
	}
	c.currentReplayTime = t
}

func (c *Clock) SetReplaying(replaying bool) {
	c.isReplaying = replaying
}

func (c *Clock) IsReplaying() bool {
	return c.isReplaying
}

func (c *Clock) NextWakeUpTimeMillis() int64 {
	return c.nextWakeUpTime
}

// ReconcileTimer cancels any previously scheduled deterministic timer and,
// if nextWakeUpMillis is non-zero, schedules a new one to fire when that
// time is reached. The callback body is intentionally empty: firing merely
// needs to cause a new workflow task, never to run workflow logic directly.
func (c *Clock) ReconcileTimer(nextWakeUpMillis int64, onFire func()) error {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	c.nextWakeUpTime = nextWakeUpMillis

	if nextWakeUpMillis == 0 {
		return nil
	}

	// nextWakeUpMillis and currentReplayTime are both on the unix-millis axis.
	delay := time.Duration(nextWakeUpMillis-c.currentReplayTime.UnixMilli()) * time.Millisecond

	if delay < 0 {
		return fmt.Errorf("replayclock: negative wake-up delay %s (nextWakeUpTime=%d, now=%d)", delay, nextWakeUpMillis, c.currentReplayTime.UnixMilli())
	}

	if onFire == nil {
		onFire = func() {}
	}

	c.timer = c.clock.AfterFunc(delay, onFire)
	return nil
}

// CancelTimer tears down the active deterministic timer without scheduling
// a replacement.
func (c *Clock) CancelTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.nextWakeUpTime = 0
}
