// Package core holds the small set of identity and lifecycle types shared
// across the replay executor: the address of a workflow run and the terminal
// state it can end up in. Nothing here is specific to any one command kind.
package core

// WorkflowInstance addresses one run of a workflow. InstanceID is stable
// across continue-as-new; ExecutionID changes on every fresh run (including
// the one produced by continue-as-new) and disambiguates history belonging
// to the same instance but a different execution.
type WorkflowInstance struct {
	InstanceID  string `json:"instance_id,omitempty"`
	ExecutionID string `json:"execution_id,omitempty"`

	ParentInstanceID string `json:"parent_instance_id,omitempty"`
	ParentEventID    int64  `json:"parent_event_id,omitempty"`
}

func NewWorkflowInstance(instanceID, executionID string) *WorkflowInstance {
	return &WorkflowInstance{
		InstanceID:  instanceID,
		ExecutionID: executionID,
	}
}

func NewSubWorkflowInstance(instanceID, executionID, parentInstanceID string, parentEventID int64) *WorkflowInstance {
	return &WorkflowInstance{
		InstanceID:       instanceID,
		ExecutionID:      executionID,
		ParentInstanceID: parentInstanceID,
		ParentEventID:    parentEventID,
	}
}

// SubWorkflow reports whether this instance was started as a child of another
// workflow run rather than directly by a client.
func (wi *WorkflowInstance) SubWorkflow() bool {
	return wi.ParentInstanceID != ""
}

// WorkflowInstanceState is the terminal disposition of a run as observed by
// the executor; it does not track intermediate per-task progress.
type WorkflowInstanceState int

const (
	WorkflowInstanceStateActive WorkflowInstanceState = iota
	WorkflowInstanceStateContinuedAsNew
	WorkflowInstanceStateFinished
)

func (s WorkflowInstanceState) String() string {
	switch s {
	case WorkflowInstanceStateActive:
		return "Active"
	case WorkflowInstanceStateContinuedAsNew:
		return "ContinuedAsNew"
	case WorkflowInstanceStateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// WorkflowMetadata carries opaque, propagated key/value pairs (e.g. tracing
// baggage) alongside a workflow's input; the executor never inspects values,
// only threads them through start/continue-as-new/child-workflow commands.
type WorkflowMetadata map[string]string

func (wm WorkflowMetadata) Get(key string) string {
	return wm[key]
}

func (wm WorkflowMetadata) Set(key, value string) {
	wm[key] = value
}
