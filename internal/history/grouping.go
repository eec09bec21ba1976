package history

// commandEventTypes are the receipts the service records for a command the
// bookkeeper emitted in a previous task (scheduling/initiation markers), plus
// the workflow-task bookkeeping events. They go to the bookkeeper, not to the
// workflow program; the bookkeeper ignores the ones no state machine handles.
var commandEventTypes = map[EventType]bool{
	EventType_ActivityTaskScheduled:                            true,
	EventType_TimerStarted:                                     true,
	EventType_ChildWorkflowExecutionInitiated:                  true,
	EventType_ChildWorkflowExecutionInitiationFailed:           true,
	EventType_ChildWorkflowExecutionCancelRequested:            true,
	EventType_SignalExternalWorkflowExecutionInitiated:         true,
	EventType_RequestCancelExternalWorkflowExecutionInitiated:  true,
	EventType_WorkflowTaskScheduled:                            true,
	EventType_WorkflowTaskCompleted:                            true,
	EventType_WorkflowTaskFailed:                               true,
	EventType_WorkflowTaskTimedOut:                             true,
}

// TaskBatch is one segment of history delimited by consecutive
// WorkflowTaskStarted events.
type TaskBatch struct {
	PreviousStartedEventID int64
	CurrentStartedEventID  int64

	Events       []Event
	CommandEvents []Event
	Markers      []Event

	IsReplay                bool
	ReplayCurrentTimeMillis int64
}

// GroupIntoBatches partitions a flat, in-order event slice into task
// batches. previousStartedEventID is the id of the last WorkflowTaskStarted
// event the executor had already fully processed before this call; batches
// whose CurrentStartedEventID is less than or equal to it are replay, the
// remainder (normally just the last one) is live.
func GroupIntoBatches(events []Event, previousStartedEventID int64) []TaskBatch {
	var batches []TaskBatch
	replayUpTo := previousStartedEventID

	current := TaskBatch{PreviousStartedEventID: previousStartedEventID}
	haveCurrent := false

	for _, e := range events {
		haveCurrent = true

		switch {
		case e.Type == EventType_MarkerRecorded:
			current.Markers = append(current.Markers, e)

		case e.Type == EventType_WorkflowTaskStarted:
			current.CurrentStartedEventID = e.EventID
			current.ReplayCurrentTimeMillis = e.Timestamp.UnixMilli()
			current.IsReplay = current.CurrentStartedEventID <= replayUpTo

			batches = append(batches, current)

			previousStartedEventID = current.CurrentStartedEventID
			current = TaskBatch{PreviousStartedEventID: previousStartedEventID}
			haveCurrent = false

		case commandEventTypes[e.Type]:
			current.CommandEvents = append(current.CommandEvents, e)

		default:
			current.Events = append(current.Events, e)
		}
	}

	// A trailing partial batch (no closing WorkflowTaskStarted yet) is
	// returned as a batch of its own, with CurrentStartedEventID 0 and
	// IsReplay false.
	if haveCurrent && (len(current.Events) > 0 || len(current.CommandEvents) > 0 || len(current.Markers) > 0) {
		batches = append(batches, current)
	}

	return batches
}
