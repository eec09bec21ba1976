// Package history models the append-only event log a workflow run is
// replayed against, and the machinery (Iterator) that turns a flat event
// stream into the per-workflow-task batches the executor drives.
package history

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type EventType uint

const (
	EventType_Unknown EventType = iota

	EventType_WorkflowExecutionStarted
	EventType_WorkflowExecutionCancelRequested
	EventType_WorkflowExecutionSignaled
	EventType_WorkflowExecutionCompleted
	EventType_WorkflowExecutionFailed
	EventType_WorkflowExecutionCanceled
	EventType_WorkflowExecutionTimedOut
	EventType_WorkflowExecutionContinuedAsNew
	EventType_WorkflowExecutionTerminated

	EventType_WorkflowTaskScheduled
	EventType_WorkflowTaskStarted
	EventType_WorkflowTaskCompleted
	EventType_WorkflowTaskFailed
	EventType_WorkflowTaskTimedOut

	EventType_ActivityTaskScheduled
	EventType_ActivityTaskCancelRequested
	EventType_ActivityTaskStarted
	EventType_ActivityTaskCompleted
	EventType_ActivityTaskFailed
	EventType_ActivityTaskTimedOut
	EventType_ActivityTaskCanceled

	EventType_ChildWorkflowExecutionInitiated
	EventType_ChildWorkflowExecutionInitiationFailed
	EventType_ChildWorkflowExecutionStarted
	EventType_ChildWorkflowExecutionCompleted
	EventType_ChildWorkflowExecutionFailed
	EventType_ChildWorkflowExecutionCanceled
	EventType_ChildWorkflowExecutionTerminated
	EventType_ChildWorkflowExecutionTimedOut
	EventType_ChildWorkflowExecutionCancelRequested

	EventType_SignalExternalWorkflowExecutionInitiated
	EventType_SignalExternalWorkflowExecutionFailed
	EventType_ExternalWorkflowExecutionSignaled

	EventType_RequestCancelExternalWorkflowExecutionInitiated
	EventType_RequestCancelExternalWorkflowExecutionFailed

	EventType_TimerStarted
	EventType_TimerFired
	EventType_TimerCanceled

	EventType_MarkerRecorded

	EventType_UpsertWorkflowSearchAttributes
)

var eventTypeNames = map[EventType]string{
	EventType_WorkflowExecutionStarted:         "WorkflowExecutionStarted",
	EventType_WorkflowExecutionCancelRequested: "WorkflowExecutionCancelRequested",
	EventType_WorkflowExecutionSignaled:        "WorkflowExecutionSignaled",
	EventType_WorkflowExecutionCompleted:       "WorkflowExecutionCompleted",
	EventType_WorkflowExecutionFailed:          "WorkflowExecutionFailed",
	EventType_WorkflowExecutionCanceled:        "WorkflowExecutionCanceled",
	EventType_WorkflowExecutionTimedOut:        "WorkflowExecutionTimedOut",
	EventType_WorkflowExecutionContinuedAsNew:  "WorkflowExecutionContinuedAsNew",
	EventType_WorkflowExecutionTerminated:      "WorkflowExecutionTerminated",

	EventType_WorkflowTaskScheduled: "WorkflowTaskScheduled",
	EventType_WorkflowTaskStarted:   "WorkflowTaskStarted",
	EventType_WorkflowTaskCompleted: "WorkflowTaskCompleted",
	EventType_WorkflowTaskFailed:    "WorkflowTaskFailed",
	EventType_WorkflowTaskTimedOut:  "WorkflowTaskTimedOut",

	EventType_ActivityTaskScheduled:       "ActivityTaskScheduled",
	EventType_ActivityTaskCancelRequested: "ActivityTaskCancelRequested",
	EventType_ActivityTaskStarted:         "ActivityTaskStarted",
	EventType_ActivityTaskCompleted:       "ActivityTaskCompleted",
	EventType_ActivityTaskFailed:          "ActivityTaskFailed",
	EventType_ActivityTaskTimedOut:        "ActivityTaskTimedOut",
	EventType_ActivityTaskCanceled:        "ActivityTaskCanceled",

	EventType_ChildWorkflowExecutionInitiated:        "ChildWorkflowExecutionInitiated",
	EventType_ChildWorkflowExecutionInitiationFailed: "ChildWorkflowExecutionInitiationFailed",
	EventType_ChildWorkflowExecutionStarted:          "ChildWorkflowExecutionStarted",
	EventType_ChildWorkflowExecutionCompleted:        "ChildWorkflowExecutionCompleted",
	EventType_ChildWorkflowExecutionFailed:           "ChildWorkflowExecutionFailed",
	EventType_ChildWorkflowExecutionCanceled:         "ChildWorkflowExecutionCanceled",
	EventType_ChildWorkflowExecutionTerminated:       "ChildWorkflowExecutionTerminated",
	EventType_ChildWorkflowExecutionTimedOut:         "ChildWorkflowExecutionTimedOut",
	EventType_ChildWorkflowExecutionCancelRequested:  "ChildWorkflowExecutionCancelRequested",

	EventType_SignalExternalWorkflowExecutionInitiated: "SignalExternalWorkflowExecutionInitiated",
	EventType_SignalExternalWorkflowExecutionFailed:    "SignalExternalWorkflowExecutionFailed",
	EventType_ExternalWorkflowExecutionSignaled:        "ExternalWorkflowExecutionSignaled",

	EventType_RequestCancelExternalWorkflowExecutionInitiated: "RequestCancelExternalWorkflowExecutionInitiated",
	EventType_RequestCancelExternalWorkflowExecutionFailed:    "RequestCancelExternalWorkflowExecutionFailed",

	EventType_TimerStarted:  "TimerStarted",
	EventType_TimerFired:    "TimerFired",
	EventType_TimerCanceled: "TimerCanceled",

	EventType_MarkerRecorded: "MarkerRecorded",

	EventType_UpsertWorkflowSearchAttributes: "UpsertWorkflowSearchAttributes",
}

func (et EventType) String() string {
	if n, ok := eventTypeNames[et]; ok {
		return n
	}
	return "Unknown"
}

// ForceWorkflowTaskTimerScheduleEventID is the distinguished
// ScheduleEventID a TimerFired event carries when it exists only to make
// the service schedule a fresh workflow task, not to resolve a workflow-
// owned Timer command. This executor's own wake-up mechanism
// (replayclock.Clock.ReconcileTimer) never produces such an event: its
// timer fires an in-process callback and is never recorded to server
// history at all. The constant exists so a caller whose transport layer
// does surface one (e.g. a teacher-style sticky/force-task timer riding
// through the same history stream) can be dropped per spec §4.7 rather
// than routed to the bookkeeper as an unrecognized command.
const ForceWorkflowTaskTimerScheduleEventID int64 = -1

// Event is one entry in a workflow's history. ScheduleEventID correlates a
// completion/failure event back to the command that caused it; it is the
// second half of a command.ID.
type Event struct {
	ID string

	Type EventType

	Timestamp time.Time

	// EventID is the position of this event in the full history, used for
	// previousStartedEventId/lastStartedEventId consistency checks.
	EventID int64

	// ScheduleEventID correlates an initiation/completion/failure event back
	// to the event id of the command that scheduled it.
	ScheduleEventID int64

	Attributes interface{}

	// VisibleAt records the moment a timer-fired event was due, as opposed
	// to when the server got around to recording it. The executor does not
	// read it; events are dispatched in history order.
	VisibleAt *time.Time
}

func (e Event) String() string {
	return e.Type.String() + "#" + strconv.FormatInt(e.EventID, 10)
}

type EventOption func(e *Event)

func ScheduleEventID(id int64) EventOption {
	return func(e *Event) { e.ScheduleEventID = id }
}

func EventID(id int64) EventOption {
	return func(e *Event) { e.EventID = id }
}

func VisibleAt(t time.Time) EventOption {
	return func(e *Event) { e.VisibleAt = &t }
}

func NewEvent(timestamp time.Time, eventType EventType, attributes interface{}, opts ...EventOption) Event {
	e := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Timestamp:  timestamp,
		Attributes: attributes,
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

func NewWorkflowCancellationEvent(timestamp time.Time) Event {
	return NewEvent(timestamp, EventType_WorkflowExecutionCancelRequested, &ExecutionCancelRequestedAttributes{})
}
