package executor

import (
	"context"

	"github.com/flowdeck/replaycore/internal/history"
	"github.com/flowdeck/replaycore/internal/workflowerrors"
)

// dispatchEvent routes one ordinary (non-marker, non-command) history event
// either straight to the workflow program or to the bookkeeper, per the
// event dispatch table.
func (e *Executor) dispatchEvent(ctx context.Context, ev history.Event) error {
	switch ev.Type {
	case history.EventType_WorkflowExecutionStarted:
		attrs := ev.Attributes.(history.ExecutionStartedAttributes)
		return e.program.Start(ctx, ev, attrs.Inputs)

	case history.EventType_WorkflowExecutionSignaled:
		attrs := ev.Attributes.(history.ExecutionSignaledAttributes)
		e.program.HandleSignal(attrs.Name, attrs.Arg, ev.EventID)
		return nil

	case history.EventType_WorkflowExecutionCancelRequested:
		e.cancelRequested = true
		e.program.Cancel(workflowerrors.NewCanceledError("workflow execution cancellation requested"))
		return nil

	case history.EventType_UpsertWorkflowSearchAttributes:
		// Produced by this run, not meaningfully re-consumed on replay.
		return nil

	case history.EventType_TimerFired:
		if ev.ScheduleEventID == history.ForceWorkflowTaskTimerScheduleEventID {
			// Exists only to make the service schedule a new workflow task;
			// see history.ForceWorkflowTaskTimerScheduleEventID.
			return nil
		}
		return e.bk.HandleEvent(ev)

	default:
		return e.bk.HandleEvent(ev)
	}
}

// dispatchMarker buffers a MarkerRecorded event for the local-activity phase
// to consume; markers are surfaced ahead of ordinary events precisely
// because that phase needs them before the event loop runs again.
func (e *Executor) dispatchMarker(ev history.Event) {
	e.currentMarkers = append(e.currentMarkers, ev)
}
