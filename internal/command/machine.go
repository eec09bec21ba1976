package command

import (
	"fmt"

	"github.com/flowdeck/replaycore/internal/workflowerrors"
)

// Command is the concrete instruction a machine wants the executor to send
// to the service: its initial command while it is in CREATED, or a
// cancellation request while it is in CANCELLATION_COMMAND_SENT.
type Command struct {
	ID         ID
	Attributes interface{}
}

// StateMachine is the shared protocol every command kind implements.
// Handlers for events that can never legally occur for a given kind (e.g. a
// child-workflow-only event delivered to a Timer machine) are simply never
// invoked by the bookkeeper's event-type dispatch, so kinds do not need to
// implement every method below as a stub; they implement the ones their
// transition table defines.
type StateMachine interface {
	ID() ID
	State() State
	History() []Transition
	IsDone() bool

	// GetCommand returns the concrete command to emit: the initial command
	// while CREATED, or a pending cancellation command (once) while
	// CANCELLATION_COMMAND_SENT.
	GetCommand() (Command, bool)

	// Cancel requests cancellation. ok reports whether cancellation
	// completed immediately (no further event needed).
	Cancel() (ok bool)
}

// transitionTable maps a state and action to the resulting state; an
// absent entry means the pair is undefined and must fail.
type transitionTable map[State]map[Action]State

// base carries the bookkeeping every concrete machine needs: identity,
// current state, the audit log, and the single outbound command (if any)
// the machine currently wants sent.
type base struct {
	id      ID
	state   State
	history []Transition

	pendingCommand  *Command
	commandConsumed bool
}

func newBase(id ID) base {
	return base{id: id, state: State_CREATED}
}

func (b *base) ID() ID    { return b.id }
func (b *base) State() State { return b.state }

// IsDone reports whether the machine will never transition again. Every
// CANCELED_* state is terminal in the same sense COMPLETED is; they are kept
// distinct only so the transition history records which outcome occurred.
func (b *base) IsDone() bool {
	switch b.state {
	case State_COMPLETED, State_CANCELED_BEFORE_INITIATED, State_CANCELED_AFTER_INITIATED, State_CANCELED_AFTER_STARTED:
		return true
	default:
		return false
	}
}
func (b *base) History() []Transition {
	out := make([]Transition, len(b.history))
	copy(out, b.history)
	return out
}

func (b *base) historyStrings() []string {
	out := make([]string, len(b.history))
	for i, t := range b.history {
		out[i] = fmt.Sprintf("%s->%s", t.Action, t.ResultingState)
	}
	return out
}

// apply looks up (b.state, action) in table and transitions to the result,
// or panics with a NonDeterminismError carrying the full history if the
// pair is undefined. Undefined transitions are never recoverable locally:
// they mean either the executor has a bug or the replayed history diverges
// from what this build of the workflow would produce, and continuing to run
// would silently corrupt the command stream.
func (b *base) apply(table transitionTable, action Action) {
	next, ok := table[b.state][action]
	if !ok {
		panic(workflowerrors.NewTransitionError(fmt.Sprintf("%s#%d", b.id.Kind, b.id.InitiatingEventID), b.state.String(), string(action), b.historyStrings()))
	}

	b.state = next
	b.history = append(b.history, Transition{Action: action, ResultingState: next})
}

// canApply reports whether action is defined from the current state,
// without applying it.
func (b *base) canApply(table transitionTable, action Action) bool {
	_, ok := table[b.state][action]
	return ok
}

// setInitialCommand records the command a freshly-created machine wants
// sent once it is collected by the bookkeeper's walk over CREATED machines.
func (b *base) setInitialCommand(attrs interface{}) {
	cmd := Command{ID: b.id, Attributes: attrs}
	b.pendingCommand = &cmd
}

// setCancelCommand records a cancellation-request command to emit exactly
// once. Cancel() sets it directly, rather than waiting for a
// notifyCommandSent sweep; for a cancel issued while the initial command was
// still in flight, the initiation handler sets it once that event arrives.
func (b *base) setCancelCommand(attrs interface{}) {
	cmd := Command{ID: b.id, Attributes: attrs}
	b.pendingCommand = &cmd
	b.commandConsumed = false
}

// getCommand implements the GetCommand half of StateMachine shared by every
// kind: the initial schedule command while CREATED, or a still-unsent
// cancellation command while CANCELLATION_COMMAND_SENT.
func (b *base) getCommand() (Command, bool) {
	switch b.state {
	case State_CREATED:
		if b.pendingCommand != nil {
			return *b.pendingCommand, true
		}
	case State_CANCELLATION_COMMAND_SENT:
		if !b.commandConsumed && b.pendingCommand != nil {
			b.commandConsumed = true
			return *b.pendingCommand, true
		}
	}
	return Command{}, false
}
