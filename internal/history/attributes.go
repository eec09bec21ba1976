package history

import (
	"time"

	"github.com/flowdeck/replaycore/internal/core"
	"github.com/flowdeck/replaycore/internal/payload"
	"github.com/flowdeck/replaycore/internal/tracing"
)

type ExecutionStartedAttributes struct {
	Name         string
	Metadata     core.WorkflowMetadata
	Inputs       []payload.Payload
	TraceContext tracing.Context
}

type ExecutionCancelRequestedAttributes struct{}

type ExecutionSignaledAttributes struct {
	Name string
	Arg  payload.Payload
}

type ExecutionCompletedAttributes struct {
	Result payload.Payload
}

type ExecutionFailedAttributes struct {
	Error string
}

type ExecutionCanceledAttributes struct {
	Result payload.Payload
}

type ExecutionTimedOutAttributes struct{}

type ExecutionContinuedAsNewAttributes struct {
	ContinuedExecutionID string
}

type ExecutionTerminatedAttributes struct {
	Reason string
}

type WorkflowTaskScheduledAttributes struct{}
type WorkflowTaskStartedAttributes struct{}
type WorkflowTaskCompletedAttributes struct{}
type WorkflowTaskFailedAttributes struct {
	Reason string
}
type WorkflowTaskTimedOutAttributes struct{}

type ActivityScheduledAttributes struct {
	Name         string
	Inputs       []payload.Payload
	TraceContext tracing.Context
}

type ActivityCancelRequestedAttributes struct{}

type ActivityStartedAttributes struct {
	Attempt int64
}

type ActivityCompletedAttributes struct {
	Result payload.Payload
}

type ActivityFailedAttributes struct {
	Reason  string
	Details string
}

type ActivityTimedOutAttributes struct{}

type ActivityCanceledAttributes struct{}

type ChildWorkflowExecutionInitiatedAttributes struct {
	SubWorkflowInstance *core.WorkflowInstance
	Name                string
	Metadata             core.WorkflowMetadata
	Inputs               []payload.Payload
	TraceContext         tracing.Context
}

type ChildWorkflowExecutionInitiationFailedAttributes struct {
	Reason string
}

type ChildWorkflowExecutionStartedAttributes struct{}

type ChildWorkflowExecutionCompletedAttributes struct {
	Result payload.Payload
}

type ChildWorkflowExecutionFailedAttributes struct {
	Error string
}

type ChildWorkflowExecutionCanceledAttributes struct{}
type ChildWorkflowExecutionTerminatedAttributes struct{}
type ChildWorkflowExecutionTimedOutAttributes struct{}

type ChildWorkflowExecutionCancelRequestedAttributes struct {
	SubWorkflowInstance *core.WorkflowInstance
}

type SignalExternalWorkflowExecutionInitiatedAttributes struct {
	InstanceID string
	Name       string
	Arg        payload.Payload
}

type SignalExternalWorkflowExecutionFailedAttributes struct {
	Reason string
}

type ExternalWorkflowExecutionSignaledAttributes struct{}

type RequestCancelExternalWorkflowExecutionInitiatedAttributes struct {
	InstanceID string
}

type RequestCancelExternalWorkflowExecutionFailedAttributes struct {
	Reason string
}

type TimerStartedAttributes struct {
	At   time.Time
	Name string
}

type TimerFiredAttributes struct {
	ScheduledAt  time.Time
	At           time.Time
	Name         string
	TraceContext tracing.Context
}

type TimerCanceledAttributes struct{}

type MarkerRecordedAttributes struct {
	Name   string
	Result payload.Payload
}

type UpsertWorkflowSearchAttributesAttributes struct {
	SearchAttributes map[string]payload.Payload
}

// WorkflowEvent is a history event addressed to a specific workflow
// instance, produced as a side-channel output of committing a command (e.g.
// signaling a different instance, or starting a child workflow).
type WorkflowEvent struct {
	WorkflowInstance *core.WorkflowInstance
	HistoryEvent     Event
}

func EventsByWorkflowInstanceID(events []WorkflowEvent) map[string][]WorkflowEvent {
	grouped := make(map[string][]WorkflowEvent)

	for _, we := range events {
		grouped[we.WorkflowInstance.InstanceID] = append(grouped[we.WorkflowInstance.InstanceID], we)
	}

	return grouped
}
