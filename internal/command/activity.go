package command

import (
	"fmt"

	"github.com/flowdeck/replaycore/internal/workflowerrors"
)

// ActivityAttributes is the ScheduleActivityTask command payload.
type ActivityAttributes struct {
	Name string
	Args interface{}
}

// RequestCancelActivityAttributes is the RequestCancelActivityTask command
// payload.
type RequestCancelActivityAttributes struct{}

var activityTable = transitionTable{
	State_CREATED: {
		Action_Emit:   State_COMMAND_SENT,
		Action_Cancel: State_CANCELED_BEFORE_INITIATED,
	},
	State_COMMAND_SENT: {
		Action_Initiated: State_INITIATED,
		Action_Cancel:     State_CANCELED_BEFORE_INITIATED,
	},
	State_CANCELED_BEFORE_INITIATED: {
		// The schedule command was already in flight when Cancel() fired; the
		// service still records the initiation once it catches up, and only
		// then can the cancellation request actually be sent.
		Action_Initiated: State_CANCELLATION_COMMAND_SENT,
	},
	State_INITIATED: {
		Action_Started:          State_STARTED,
		Action_Completed:        State_COMPLETED,
		Action_Failed:            State_COMPLETED,
		Action_TimedOut:          State_COMPLETED,
		Action_Cancel:            State_CANCELLATION_COMMAND_SENT,
	},
	State_STARTED: {
		Action_Completed: State_COMPLETED,
		Action_Failed:     State_COMPLETED,
		Action_TimedOut:   State_COMPLETED,
		Action_Cancel:      State_CANCELLATION_COMMAND_SENT,
	},
	State_CANCELLATION_COMMAND_SENT: {
		Action_Completed: State_COMPLETED, // raced a result before the cancel was acked
		Action_Failed:      State_COMPLETED,
		Action_TimedOut:    State_COMPLETED,
	},
}

// Activity is the state machine for a single scheduled activity task.
type Activity struct {
	base
	name              string
	wasStarted        bool
	awaitingCancelAck bool
}

func NewActivity(id ID, name string, args interface{}) *Activity {
	a := &Activity{base: newBase(id), name: name}
	a.setInitialCommand(ActivityAttributes{Name: name, Args: args})
	return a
}

func (a *Activity) GetCommand() (Command, bool) { return a.getCommand() }

func (a *Activity) CommandSent() {
	if a.state == State_CREATED {
		a.apply(activityTable, Action_Emit)
	}
}

// IsDone overrides base.IsDone: an activity canceled while its schedule
// command was still in flight (COMMAND_SENT) is not actually finished yet —
// the service will still deliver ActivityTaskScheduled for it, and only that
// late initiation lets the deferred cancellation request go out. One
// canceled straight from CREATED never had a command sent at all, so there
// is nothing left to initiate and base's terminal answer stands.
func (a *Activity) IsDone() bool {
	if a.state == State_CANCELED_BEFORE_INITIATED && a.awaitingCancelAck {
		return false
	}
	return a.base.IsDone()
}

// HandleInitiated records ActivityTaskScheduled. If this activity was
// canceled after its schedule command had already been sent, the
// cancellation request was deferred until now; emit it.
func (a *Activity) HandleInitiated() {
	before := a.state
	a.apply(activityTable, Action_Initiated)
	if before == State_CANCELED_BEFORE_INITIATED {
		a.setCancelCommand(RequestCancelActivityAttributes{})
	}
}

func (a *Activity) HandleStarted() {
	a.apply(activityTable, Action_Started)
	a.wasStarted = true
}

func (a *Activity) HandleCompleted() { a.apply(activityTable, Action_Completed) }
func (a *Activity) HandleFailed()    { a.apply(activityTable, Action_Failed) }
func (a *Activity) HandleTimedOut()  { a.apply(activityTable, Action_TimedOut) }

// HandleCanceledByServer records ActivityTaskCanceled. Which CANCELED_*
// state it lands in depends on whether the activity had already started
// when Cancel was requested, so it is applied directly rather than through
// the shared table (one action, two legal destinations by history).
func (a *Activity) HandleCanceledByServer() {
	if a.state != State_CANCELLATION_COMMAND_SENT {
		panic(workflowerrors.NewTransitionError(fmt.Sprintf("Activity#%d", a.id.InitiatingEventID), a.state.String(), string(Action_CanceledByServer), a.historyStrings()))
	}
	next := State_CANCELED_AFTER_INITIATED
	if a.wasStarted {
		next = State_CANCELED_AFTER_STARTED
	}
	a.state = next
	a.history = append(a.history, Transition{Action: Action_CanceledByServer, ResultingState: next})
}

// Cancel requests cancellation. An activity whose schedule command was never
// sent (CREATED) completes immediately. One whose command was sent but not
// yet acked (COMMAND_SENT) waits for the initiation event and sends
// RequestCancelActivityTask from there; one already INITIATED or STARTED
// needs RequestCancelActivityTask sent and ActivityTaskCanceled awaited.
func (a *Activity) Cancel() bool {
	before := a.state
	a.apply(activityTable, Action_Cancel)
	if before == State_INITIATED || before == State_STARTED {
		a.setCancelCommand(RequestCancelActivityAttributes{})
		return false
	}
	if before == State_COMMAND_SENT {
		a.awaitingCancelAck = true
		return false
	}
	return true
}

var _ StateMachine = (*Activity)(nil)
