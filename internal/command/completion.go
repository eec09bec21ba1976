package command

import "github.com/flowdeck/replaycore/internal/payload"

// CompleteWorkflowAttributes is the terminal command emitted when a run's
// Program finishes successfully. It addresses TargetKind_SelfWorkflow
// because, unlike every other command kind, there is no further event to
// correlate it back to: the executor that emits it is closed immediately
// after.
type CompleteWorkflowAttributes struct {
	Result payload.Payload
}

// FailWorkflowAttributes is the terminal command for a run that ended with
// an unhandled workflow error (including an observed cancellation).
type FailWorkflowAttributes struct {
	Error string
}

// CancelWorkflowAttributes is the terminal command for a run that observed
// WorkflowExecutionCancelRequested and then unblocked with that same
// cancellation, rather than an unrelated failure. See spec §7: an
// unrequested cancellation still maps to FailWorkflowAttributes.
type CancelWorkflowAttributes struct {
	Details string
}

// ContinueAsNewAttributes is the terminal command for a run that asked to
// restart with fresh history. The executor that emits it treats the run as
// complete; a new instance execution id carries the workflow forward.
type ContinueAsNewAttributes struct {
	Inputs []payload.Payload
	Result payload.Payload
}

// NewCompletionCommand builds the one terminal command a finished run emits.
// It is not tied to any state machine and is never looked up again; the
// executor files it with Bookkeeper.AppendTerminal, which emits it after
// every per-machine command.
func NewCompletionCommand(attrs interface{}) Command {
	return Command{ID: ID{Kind: TargetKind_SelfWorkflow}, Attributes: attrs}
}
