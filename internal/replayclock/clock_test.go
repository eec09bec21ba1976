package replayclock

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestAdvance_NeverGoesBackwards(t *testing.T) {
	c := New(clock.NewMock())

	t0 := time.Now()
	c.Advance(t0)
	require.True(t, c.Now().Equal(t0))

	c.Advance(t0.Add(-time.Second))
	require.True(t, c.Now().Equal(t0))
}

func TestReconcileTimer_FiresAtWakeUpTime(t *testing.T) {
	mock := clock.NewMock()
	c := New(mock)

	now := mock.Now()
	c.Advance(now)

	fired := make(chan struct{}, 1)
	wakeUp := now.Add(5 * time.Second).UnixMilli()

	require.NoError(t, c.ReconcileTimer(wakeUp, func() { fired <- struct{}{} }))
	require.Equal(t, wakeUp, c.NextWakeUpTimeMillis())

	mock.Add(5 * time.Second)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestReconcileTimer_ZeroCancels(t *testing.T) {
	mock := clock.NewMock()
	c := New(mock)
	c.Advance(mock.Now())

	require.NoError(t, c.ReconcileTimer(mock.Now().Add(time.Second).UnixMilli(), func() {}))
	require.NoError(t, c.ReconcileTimer(0, nil))
	require.Equal(t, int64(0), c.NextWakeUpTimeMillis())
}

func TestReconcileTimer_NegativeDelayFails(t *testing.T) {
	mock := clock.NewMock()
	c := New(mock)
	c.Advance(mock.Now())

	err := c.ReconcileTimer(mock.Now().Add(-time.Second).UnixMilli(), func() {})
	require.Error(t, err)
}
