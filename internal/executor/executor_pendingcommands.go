package executor

import (
	"github.com/flowdeck/replaycore/internal/command"
)

// drainPendingCommands implements spec §2's "any new commands are
// collected" and §4.4's getCommands() walk: every activity, timer, child
// workflow and external signal/cancel request the program's event loop
// just issued is turned into the matching command-state-machine, and every
// cancellation the program requested against an already-known command is
// applied through the bookkeeper. Called once after every Program.EventLoop
// invocation, live or replaying.
func (e *Executor) drainPendingCommands() {
	for _, req := range e.program.PendingCommands() {
		switch req.Kind {
		case command.TargetKind_Activity:
			e.bk.NewActivity(req.ID, req.Name, req.Args)
		case command.TargetKind_Timer:
			e.bk.NewTimer(req.ID, req.At)
		case command.TargetKind_ChildWorkflow:
			e.bk.NewChildWorkflow(req.ID, req.Name, req.Args)
		case command.TargetKind_Signal:
			e.bk.NewSignal(req.ID, req.InstanceID, req.Name, req.Args)
		case command.TargetKind_CancelExternal:
			e.bk.NewCancelExternal(req.ID, req.InstanceID)
		}
	}

	for _, c := range e.program.PendingCancellations() {
		e.bk.Cancel(command.ID{Kind: c.Kind, InitiatingEventID: c.ID})
	}
}
