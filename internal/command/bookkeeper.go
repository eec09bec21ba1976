package command

import (
	"github.com/flowdeck/replaycore/internal/history"
	"github.com/flowdeck/replaycore/internal/workflowerrors"
)

// commandSender is implemented by every concrete kind's CommandSent method;
// it is kept separate from StateMachine because only the bookkeeper's
// notifyCommandSent sweep calls it.
type commandSender interface {
	CommandSent()
}

// Bookkeeper pairs outbound commands with the history events they elicit.
// Machines are kept in the order they were created so GetCommands returns
// commands in the same order the workflow program issued them, which is
// also the order they must appear in the recorded history.
type Bookkeeper struct {
	order   []ID
	byID    map[ID]StateMachine

	lastStartedEventID int64

	terminal []Command
}

func NewBookkeeper() *Bookkeeper {
	return &Bookkeeper{byID: make(map[ID]StateMachine)}
}

func (bk *Bookkeeper) add(m StateMachine) {
	bk.order = append(bk.order, m.ID())
	bk.byID[m.ID()] = m
}

func (bk *Bookkeeper) NewActivity(initiatingEventID int64, name string, args interface{}) *Activity {
	a := NewActivity(ID{Kind: TargetKind_Activity, InitiatingEventID: initiatingEventID}, name, args)
	bk.add(a)
	return a
}

func (bk *Bookkeeper) NewTimer(initiatingEventID int64, at int64) *Timer {
	t := NewTimer(ID{Kind: TargetKind_Timer, InitiatingEventID: initiatingEventID}, at)
	bk.add(t)
	return t
}

func (bk *Bookkeeper) NewChildWorkflow(initiatingEventID int64, name string, args interface{}) *ChildWorkflow {
	c := NewChildWorkflow(ID{Kind: TargetKind_ChildWorkflow, InitiatingEventID: initiatingEventID}, name, args)
	bk.add(c)
	return c
}

func (bk *Bookkeeper) NewSignal(initiatingEventID int64, instanceID, name string, args interface{}) *Signal {
	s := NewSignal(ID{Kind: TargetKind_Signal, InitiatingEventID: initiatingEventID}, instanceID, name, args)
	bk.add(s)
	return s
}

func (bk *Bookkeeper) NewCancelExternal(initiatingEventID int64, instanceID string) *CancelExternal {
	c := NewCancelExternal(ID{Kind: TargetKind_CancelExternal, InitiatingEventID: initiatingEventID}, instanceID)
	bk.add(c)
	return c
}

func (bk *Bookkeeper) NewMarker(initiatingEventID int64, name string, data interface{}) *Marker {
	m := NewMarker(ID{Kind: TargetKind_Marker, InitiatingEventID: initiatingEventID}, name, data)
	bk.add(m)
	return m
}

// Cancel looks up the machine addressed by id and requests cancellation. It
// reports false (and does nothing) if no such machine exists, which is not
// itself a non-determinism error: the workflow program may race a cancel
// against a completion the executor already delivered.
func (bk *Bookkeeper) Cancel(id ID) bool {
	m, ok := bk.byID[id]
	if !ok {
		return false
	}
	return m.Cancel()
}

// GetCommands returns, in issue order, the command every machine currently
// wants sent — the initial schedule command for machines still CREATED, any
// pending cancellation request, followed by the run's terminal command (if
// emitCompletionCommand filed one this task).
func (bk *Bookkeeper) GetCommands() []Command {
	var out []Command
	for _, id := range bk.order {
		m := bk.byID[id]
		if cmd, ok := m.GetCommand(); ok {
			out = append(out, cmd)
		}
	}
	out = append(out, bk.terminal...)
	return out
}

// AppendTerminal files the run's one terminal command (completion, failure
// or continue-as-new), addressed outside the per-kind state machines because
// nothing further will ever correlate an event back to it.
func (bk *Bookkeeper) AppendTerminal(cmd Command) {
	bk.terminal = append(bk.terminal, cmd)
}

// NotifyCommandSent flips every still-CREATED machine to COMMAND_SENT (a
// Marker, which has no COMMAND_SENT state, goes straight to COMPLETED). It is
// called once per replay batch, never for the live batch: a batch is only
// known to have actually reached the service once it shows up as history
// being replayed.
func (bk *Bookkeeper) NotifyCommandSent() {
	for _, id := range bk.order {
		if cs, ok := bk.byID[id].(commandSender); ok {
			cs.CommandSent()
		}
	}
}

// Prune drops every machine that has reached a terminal state and can no
// longer receive events, bounding the bookkeeper's memory to the commands
// still outstanding.
func (bk *Bookkeeper) Prune() {
	kept := bk.order[:0]
	for _, id := range bk.order {
		if bk.byID[id].IsDone() {
			delete(bk.byID, id)
			continue
		}
		kept = append(kept, id)
	}
	bk.order = kept
}

// HandleWorkflowTaskStarted enforces that the batch's previousStartedEventId
// lines up with the last WorkflowTaskStarted this bookkeeper has seen, then
// advances the watermark. A mismatch means the history being replayed
// diverges from the one this build of the workflow would have produced.
func (bk *Bookkeeper) HandleWorkflowTaskStarted(batch history.TaskBatch) error {
	if bk.lastStartedEventID != 0 && batch.PreviousStartedEventID != bk.lastStartedEventID {
		return workflowerrors.NewStartedEventMismatchError(bk.lastStartedEventID, batch.PreviousStartedEventID)
	}
	bk.lastStartedEventID = batch.CurrentStartedEventID
	return nil
}

// HandleEvent routes a single command-event (an event correlated back to a
// command via ScheduleEventID) to the machine that issued it, and applies
// the matching handler. Events with no corresponding machine, or whose kind
// doesn't match the event's target, are reported as non-determinism: the
// history demands a transition no machine this build would create is
// willing to make.
func (bk *Bookkeeper) HandleEvent(event history.Event) error {
	kind, ok := kindForEventType(event.Type)
	if !ok {
		return nil // not a command-correlated event
	}

	id := ID{Kind: kind, InitiatingEventID: event.ScheduleEventID}
	m, ok := bk.byID[id]
	if !ok {
		return workflowerrors.NewUnknownCommandError(event.ScheduleEventID)
	}

	switch target := m.(type) {
	case *Activity:
		switch event.Type {
		case history.EventType_ActivityTaskScheduled:
			target.HandleInitiated()
		case history.EventType_ActivityTaskStarted:
			target.HandleStarted()
		case history.EventType_ActivityTaskCompleted:
			target.HandleCompleted()
		case history.EventType_ActivityTaskFailed:
			target.HandleFailed()
		case history.EventType_ActivityTaskTimedOut:
			target.HandleTimedOut()
		case history.EventType_ActivityTaskCanceled:
			target.HandleCanceledByServer()
		}
	case *Timer:
		switch event.Type {
		case history.EventType_TimerStarted:
			target.HandleInitiated()
		case history.EventType_TimerFired:
			target.HandleFired()
		case history.EventType_TimerCanceled:
			target.HandleCanceledByServer()
		}
	case *ChildWorkflow:
		switch event.Type {
		case history.EventType_ChildWorkflowExecutionInitiated:
			target.HandleInitiated()
		case history.EventType_ChildWorkflowExecutionInitiationFailed:
			target.HandleInitiationFailed()
		case history.EventType_ChildWorkflowExecutionStarted:
			target.HandleStarted()
		case history.EventType_ChildWorkflowExecutionCompleted:
			target.HandleCompleted()
		case history.EventType_ChildWorkflowExecutionFailed:
			target.HandleFailed()
		case history.EventType_ChildWorkflowExecutionTimedOut:
			target.HandleTimedOut()
		case history.EventType_ChildWorkflowExecutionCanceled, history.EventType_ChildWorkflowExecutionTerminated:
			target.HandleCanceledByServer()
		}
	case *Signal:
		switch event.Type {
		case history.EventType_SignalExternalWorkflowExecutionInitiated:
			target.HandleInitiated()
		case history.EventType_ExternalWorkflowExecutionSignaled:
			target.HandleCompleted()
		case history.EventType_SignalExternalWorkflowExecutionFailed:
			target.HandleFailed()
		}
	case *CancelExternal:
		switch event.Type {
		case history.EventType_RequestCancelExternalWorkflowExecutionInitiated:
			target.HandleInitiated()
		case history.EventType_RequestCancelExternalWorkflowExecutionFailed:
			target.HandleCancellationFailed()
		}
	case *Marker:
		// Markers are consumed directly from MarkerRecordedAttributes by the
		// executor, not replayed through this switch; nothing to do here.
	}

	// Terminal machines are reaped by Prune, which also drops their id from
	// bk.order; deleting from bk.byID here without touching bk.order would
	// leave a dangling id that Prune later resolves to a nil StateMachine.
	return nil
}

// kindForEventType maps a command-correlated history event type back to the
// TargetKind of the machine that should receive it. Events that never
// correlate to a command (e.g. WorkflowExecutionSignaled) are absent.
func kindForEventType(t history.EventType) (TargetKind, bool) {
	switch t {
	case history.EventType_ActivityTaskScheduled, history.EventType_ActivityTaskStarted, history.EventType_ActivityTaskCompleted,
		history.EventType_ActivityTaskFailed, history.EventType_ActivityTaskTimedOut,
		history.EventType_ActivityTaskCanceled:
		return TargetKind_Activity, true
	case history.EventType_TimerStarted, history.EventType_TimerFired, history.EventType_TimerCanceled:
		return TargetKind_Timer, true
	case history.EventType_ChildWorkflowExecutionInitiated, history.EventType_ChildWorkflowExecutionInitiationFailed,
		history.EventType_ChildWorkflowExecutionStarted, history.EventType_ChildWorkflowExecutionCompleted,
		history.EventType_ChildWorkflowExecutionFailed, history.EventType_ChildWorkflowExecutionTimedOut,
		history.EventType_ChildWorkflowExecutionCanceled, history.EventType_ChildWorkflowExecutionTerminated:
		return TargetKind_ChildWorkflow, true
	case history.EventType_SignalExternalWorkflowExecutionInitiated, history.EventType_SignalExternalWorkflowExecutionFailed,
		history.EventType_ExternalWorkflowExecutionSignaled:
		return TargetKind_Signal, true
	case history.EventType_RequestCancelExternalWorkflowExecutionInitiated, history.EventType_RequestCancelExternalWorkflowExecutionFailed:
		return TargetKind_CancelExternal, true
	default:
		return TargetKind_Activity, false
	}
}
