package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSleepTime_Scenario(t *testing.T) {
	p := Policy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2,
		MaximumInterval:    10 * time.Second,
		MaximumAttempts:    5,
		NonRetryableTypes:  []string{"X"},
	}

	want := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
		10000 * time.Millisecond,
		10000 * time.Millisecond,
	}

	for attempt := 1; attempt <= 6; attempt++ {
		require.Equal(t, want[attempt-1], p.SleepTime(int64(attempt)), "attempt %d", attempt)
	}
}

func TestSleepTime_MonotoneUntilCap(t *testing.T) {
	p := Policy{InitialInterval: 100 * time.Millisecond, BackoffCoefficient: 1.5}

	prev := time.Duration(0)
	for attempt := int64(1); attempt <= 30; attempt++ {
		cur := p.SleepTime(attempt)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestShouldStop_NonRetryableType(t *testing.T) {
	p := Policy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2,
		MaximumInterval:    10 * time.Second,
		MaximumAttempts:    5,
		NonRetryableTypes:  []string{"X"},
	}

	require.True(t, p.ShouldStop("X", 1, 0, time.Second, nil))
}

func TestShouldStop_MaxAttempts(t *testing.T) {
	p := Policy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2,
		MaximumInterval:    10 * time.Second,
		MaximumAttempts:    5,
		NonRetryableTypes:  []string{"X"},
	}

	require.True(t, p.ShouldStop("Y", 5, 99999*time.Millisecond, 10*time.Second, nil))
	require.False(t, p.ShouldStop("Y", 4, 0, time.Second, nil))
}

func TestShouldStop_Expiration(t *testing.T) {
	p := Policy{InitialInterval: time.Second, BackoffCoefficient: 2}

	exp := 5 * time.Second
	require.True(t, p.ShouldStop("Y", 1, 4*time.Second, 2*time.Second, &exp))
	require.False(t, p.ShouldStop("Y", 1, time.Second, time.Second, &exp))
}

func TestValidate(t *testing.T) {
	require.Error(t, Policy{}.Validate())
	require.Error(t, Policy{InitialInterval: time.Second, BackoffCoefficient: 0.5}.Validate())
	require.Error(t, Policy{InitialInterval: time.Second, MaximumAttempts: -1}.Validate())
	require.NoError(t, Policy{InitialInterval: time.Second}.Validate())
}
