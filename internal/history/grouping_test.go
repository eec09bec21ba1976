package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGroupIntoBatches_TimerScenario(t *testing.T) {
	now := time.Now()

	events := []Event{
		NewEvent(now, EventType_WorkflowExecutionStarted, &ExecutionStartedAttributes{Name: "wf"}, EventID(1)),
		NewEvent(now, EventType_WorkflowTaskScheduled, &WorkflowTaskScheduledAttributes{}, EventID(2)),
		NewEvent(now, EventType_WorkflowTaskStarted, &WorkflowTaskStartedAttributes{}, EventID(3)),
		NewEvent(now, EventType_WorkflowTaskCompleted, &WorkflowTaskCompletedAttributes{}, EventID(4)),
		NewEvent(now, EventType_TimerStarted, &TimerStartedAttributes{}, EventID(5), ScheduleEventID(5)),
		NewEvent(now.Add(5*time.Second), EventType_TimerFired, &TimerFiredAttributes{}, EventID(6), ScheduleEventID(5)),
		NewEvent(now.Add(5*time.Second), EventType_WorkflowTaskScheduled, &WorkflowTaskScheduledAttributes{}, EventID(7)),
		NewEvent(now.Add(5*time.Second), EventType_WorkflowTaskStarted, &WorkflowTaskStartedAttributes{}, EventID(8)),
	}

	batches := GroupIntoBatches(events, 0)
	require.Len(t, batches, 2)

	require.False(t, batches[0].IsReplay)
	require.Equal(t, int64(3), batches[0].CurrentStartedEventID)
	require.Len(t, batches[0].Events, 1) // WorkflowExecutionStarted
	require.Len(t, batches[0].CommandEvents, 1) // WorkflowTaskScheduled

	require.Equal(t, int64(8), batches[1].CurrentStartedEventID)
	require.Len(t, batches[1].Events, 1) // TimerFired
	require.Len(t, batches[1].CommandEvents, 3) // WorkflowTaskCompleted, TimerStarted, WorkflowTaskScheduled
}

func TestGroupIntoBatches_IsReplay(t *testing.T) {
	now := time.Now()

	events := []Event{
		NewEvent(now, EventType_WorkflowExecutionStarted, &ExecutionStartedAttributes{}, EventID(1)),
		NewEvent(now, EventType_WorkflowTaskStarted, &WorkflowTaskStartedAttributes{}, EventID(2)),
		NewEvent(now, EventType_WorkflowTaskStarted, &WorkflowTaskStartedAttributes{}, EventID(3)),
	}

	// previousStartedEventID=2 means the first batch (ending at 2) was
	// already processed in an earlier call and must replay; the second
	// (ending at 3) is the live one.
	batches := GroupIntoBatches(events, 2)
	require.Len(t, batches, 2)
	require.True(t, batches[0].IsReplay)
	require.False(t, batches[1].IsReplay)
}

func TestGroupIntoBatches_MarkersSurfacedSeparately(t *testing.T) {
	now := time.Now()

	events := []Event{
		NewEvent(now, EventType_MarkerRecorded, &MarkerRecordedAttributes{Name: "side-effect"}, EventID(1)),
		NewEvent(now, EventType_WorkflowTaskStarted, &WorkflowTaskStartedAttributes{}, EventID(2)),
	}

	batches := GroupIntoBatches(events, 0)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Markers, 1)
	require.Empty(t, batches[0].Events)
}
