// Package executor orchestrates one workflow task end to end: grouping
// history into batches, driving the injected workflow program through each
// batch, reconciling commands and timers, and answering queries. Everything
// it touches is reached through the narrow interfaces in this file; the
// workflow program's own cooperative dispatcher is an external collaborator.
package executor

import (
	"context"

	"github.com/flowdeck/replaycore/internal/command"
	"github.com/flowdeck/replaycore/internal/history"
	"github.com/flowdeck/replaycore/internal/payload"
)

// Query is one query carried on a poll response, answered after the event
// loop for the task it arrived with has finished running.
type Query struct {
	Name string
	Args payload.Payload
}

// QueryResultStatus distinguishes a query that ran successfully from one
// whose handler returned or panicked with an error.
type QueryResultStatus int

const (
	QueryResultAnswered QueryResultStatus = iota
	QueryResultFailed
)

type QueryResult struct {
	Name         string
	Status       QueryResultStatus
	Result       payload.Payload
	ErrorMessage string
	Stacktrace   string
}

// WorkflowErrorPolicy governs what the executor does when the workflow
// program's event loop returns a non-workflow error (a bug, not a workflow
// failure the program chose to surface as its output).
type WorkflowErrorPolicy int

const (
	// WorkflowErrorPolicyFailWorkflow terminates the run, surfacing the
	// error as the workflow's result.
	WorkflowErrorPolicyFailWorkflow WorkflowErrorPolicy = iota
	// WorkflowErrorPolicyRetryTask leaves the run open and asks the caller
	// to retry the same workflow task, on the assumption the error is
	// transient (e.g. an external dependency the program consulted).
	WorkflowErrorPolicyRetryTask
)

// ProgramOptions are the handful of knobs a workflow program can report
// back to the executor about how it wants to be driven.
type ProgramOptions struct {
	ErrorPolicy WorkflowErrorPolicy
}

// CommandRequest is one command a workflow's event loop wants issued this
// task: a new activity, timer, child workflow, external signal, or a
// cancellation request against an external workflow. ID is the schedule/
// initiating event id the program itself assigned when it created the
// future backing this command (mirroring the teacher's own
// scheduleEventID counter); it is the same id any later event correlates
// back to via ScheduleEventID, and the one a matching CommandCancellation
// or a later PendingCommands entry must reuse.
type CommandRequest struct {
	ID   int64
	Kind command.TargetKind

	// Name is the activity/child-workflow/signal name (Activity, ChildWorkflow,
	// Signal kinds only).
	Name string
	// Args is the activity/child-workflow/signal argument payload (Activity,
	// ChildWorkflow, Signal kinds only).
	Args interface{}
	// At is the timer's fire time (Timer kind only).
	At int64
	// InstanceID is the target workflow instance (Signal, CancelExternal
	// kinds only).
	InstanceID string
}

// CommandCancellation is a previously issued command the workflow wants
// canceled this task. Kind must match the kind PendingCommands originally
// reported ID under.
type CommandCancellation struct {
	ID   int64
	Kind command.TargetKind
}

// Program is the workflow program contract: a cooperative dispatcher that
// the executor drives synchronously, once per batch, while holding its own
// mutex. The dispatcher's internal deterministic primitives (sleep, goroutine
// equivalents) are an external collaborator and are not modeled here.
type Program interface {
	Start(ctx context.Context, startedEvent history.Event, input []payload.Payload) error
	EventLoop(ctx context.Context) (completed bool, err error)
	HandleSignal(name string, arg payload.Payload, eventID int64)
	Cancel(cause error)
	NextWakeUpTime() int64
	Query(q Query) (payload.Payload, error)
	Output() (payload.Payload, error)
	MapUnexpectedPanic(recovered any) error
	MapError(err error) error
	ImplementationOptions() ProgramOptions
	Close()

	// PendingCommands returns the activities, timers, child workflows and
	// external signal/cancel requests issued since the last call that the
	// executor has not yet turned into a command-state-machine (§2's "any
	// new commands are collected"). Mirrors LocalActivityHost.
	// PendingLocalActivities's drain shape.
	PendingCommands() []CommandRequest
	// PendingCancellations returns cancellation requests, issued since the
	// last call, against commands this program previously reported through
	// PendingCommands.
	PendingCancellations() []CommandCancellation
}

// LocalActivityRequest is one local activity a Program wants executed.
type LocalActivityRequest struct {
	ID   int64
	Name string
	Fn   interface{}
	Args []payload.Payload
}

// LocalActivityHost is an optional extension a Program implements when it
// wants to dispatch local activities. The core Program contract above has
// no method for this because spec.md's Program interface doesn't name one;
// the executor type-asserts for this interface and simply skips the
// local-activity phase for programs that don't implement it. See
// DESIGN.md's Open Question decisions for why this is a separate interface
// rather than a Program method.
type LocalActivityHost interface {
	// PendingLocalActivities returns tasks requested since the last call
	// that have not yet been resolved.
	PendingLocalActivities() []LocalActivityRequest
	// ResolveLocalActivity feeds a result back so the next EventLoop call
	// can observe it.
	ResolveLocalActivity(id int64, result payload.Payload, err error)
}
