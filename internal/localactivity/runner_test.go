package localactivity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/flowdeck/replaycore/internal/activity"
	"github.com/flowdeck/replaycore/internal/args"
	"github.com/flowdeck/replaycore/internal/converter"
	"github.com/flowdeck/replaycore/internal/core"
	"github.com/flowdeck/replaycore/internal/history"
	"github.com/flowdeck/replaycore/internal/tracing"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testInstance() *core.WorkflowInstance {
	return &core.WorkflowInstance{InstanceID: "inst-1", ExecutionID: "exec-1"}
}

func TestRunLive_CompletesWithinBudget(t *testing.T) {
	defer goleak.VerifyNone(t)

	exec := activity.NewExecutor(slog.New(slog.NewTextHandler(io.Discard, nil)), tracing.NewTracer(nil))
	runner := NewRunner(exec, converter.DefaultConverter, clock.New(), 5)

	inputs, err := args.ArgsToInputs(converter.DefaultConverter, 21)
	require.NoError(t, err)

	tasks := []Task{
		{ID: 1, Name: "Double", Fn: func(n int) (int, error) { return n * 2, nil }, Args: inputs},
	}

	completed, pending, force := runner.RunLive(context.Background(), testInstance(), tasks, time.Second)
	require.Len(t, completed, 1)
	require.Empty(t, pending)
	require.False(t, force)
	require.NoError(t, completed[0].Err)

	var got int
	require.NoError(t, converter.DefaultConverter.From(completed[0].Result, &got))
	require.Equal(t, 42, got)
}

func TestRunLive_PropagatesActivityError(t *testing.T) {
	defer goleak.VerifyNone(t)

	exec := activity.NewExecutor(slog.New(slog.NewTextHandler(io.Discard, nil)), tracing.NewTracer(nil))
	runner := NewRunner(exec, converter.DefaultConverter, clock.New(), 5)

	boom := errors.New("boom")
	tasks := []Task{
		{ID: 1, Name: "Fail", Fn: func() error { return boom }},
	}

	completed, _, _ := runner.RunLive(context.Background(), testInstance(), tasks, time.Second)
	require.Len(t, completed, 1)
	require.ErrorContains(t, completed[0].Err, "boom")
}

// TestRunLive_BoundedConcurrencyForcesHeartbeat reproduces the local-activity
// heartbeat scenario: with concurrency bounded below the task count, a
// budget that would comfortably cover them running in parallel is not
// enough to start every task, so RunLive must report the unstarted ones as
// pending and force a new workflow task.
func TestRunLive_BoundedConcurrencyForcesHeartbeat(t *testing.T) {
	exec := activity.NewExecutor(slog.New(slog.NewTextHandler(io.Discard, nil)), tracing.NewTracer(nil))
	mockClock := clock.NewMock()
	runner := NewRunner(exec, converter.DefaultConverter, mockClock, 2)

	var started int32
	block := make(chan struct{})
	slow := func(ctx context.Context) error {
		atomic.AddInt32(&started, 1)
		select {
		case <-block:
		case <-ctx.Done():
		}
		return ctx.Err()
	}

	tasks := []Task{
		{ID: 1, Name: "Slow", Fn: slow},
		{ID: 2, Name: "Slow", Fn: slow},
		{ID: 3, Name: "Slow", Fn: slow},
	}

	type outcome struct {
		completed []Result
		pending   []Task
		force     bool
	}
	outcomeCh := make(chan outcome, 1)
	go func() {
		completed, pending, force := runner.RunLive(context.Background(), testInstance(), tasks, time.Second)
		outcomeCh <- outcome{completed, pending, force}
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&started) == 2 }, time.Second, time.Millisecond)

	mockClock.Add(time.Second)
	close(block)

	res := <-outcomeCh
	require.True(t, res.force)
	require.Len(t, res.pending, 1)
	require.Equal(t, int64(3), res.pending[0].ID)
}

func TestReplay_RestoresFromMarker(t *testing.T) {
	res := Result{TaskID: 7}
	marker, err := EncodeMarker(converter.DefaultConverter, res)
	require.NoError(t, err)

	events := []history.Event{
		history.NewEvent(time.Now(), history.EventType_MarkerRecorded,
			history.MarkerRecordedAttributes{Name: MarkerName, Result: marker},
			history.ScheduleEventID(7)),
	}

	exec := activity.NewExecutor(slog.New(slog.NewTextHandler(io.Discard, nil)), tracing.NewTracer(nil))
	runner := NewRunner(exec, converter.DefaultConverter, clock.New(), 5)

	results, pending, err := runner.Replay(events, []Task{{ID: 7}})
	require.NoError(t, err)
	require.Empty(t, pending)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
}

func TestReplay_LeavesUnmarkedTasksPending(t *testing.T) {
	exec := activity.NewExecutor(slog.New(slog.NewTextHandler(io.Discard, nil)), tracing.NewTracer(nil))
	runner := NewRunner(exec, converter.DefaultConverter, clock.New(), 5)

	results, pending, err := runner.Replay(nil, []Task{{ID: 1}})
	require.NoError(t, err)
	require.Empty(t, results)
	require.Len(t, pending, 1)
}
