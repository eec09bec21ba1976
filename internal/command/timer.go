package command

// TimerAttributes is the ScheduleTimer command payload.
type TimerAttributes struct {
	At           int64
	CancelReason string
}

// CancelTimerAttributes is the CancelTimer command payload.
type CancelTimerAttributes struct{}

var timerTable = transitionTable{
	State_CREATED: {
		Action_Emit:   State_COMMAND_SENT,
		Action_Cancel: State_CANCELED_BEFORE_INITIATED, // never told the server
	},
	State_COMMAND_SENT: {
		Action_Initiated: State_INITIATED,
		Action_Cancel:    State_CANCELED_BEFORE_INITIATED, // command not yet acked
	},
	State_INITIATED: {
		Action_Completed: State_COMPLETED, // TimerFired
		Action_Cancel:    State_CANCELLATION_COMMAND_SENT,
	},
	State_CANCELLATION_COMMAND_SENT: {
		Action_CanceledByServer: State_CANCELED_AFTER_INITIATED, // TimerCanceled
		Action_Completed:        State_COMPLETED,                // TimerFired raced the cancel
	},
}

// Timer is the state machine for a workflow-owned timer.
type Timer struct {
	base
	at int64
}

func NewTimer(id ID, at int64) *Timer {
	t := &Timer{base: newBase(id), at: at}
	t.setInitialCommand(TimerAttributes{At: at})
	return t
}

func (t *Timer) GetCommand() (Command, bool) { return t.getCommand() }

// CommandSent flips a still-CREATED timer to COMMAND_SENT. Called by the
// bookkeeper's notifyCommandSent sweep, never directly by workflow code.
func (t *Timer) CommandSent() {
	if t.state == State_CREATED {
		t.apply(timerTable, Action_Emit)
	}
}

func (t *Timer) HandleInitiated()        { t.apply(timerTable, Action_Initiated) }
func (t *Timer) HandleFired()            { t.apply(timerTable, Action_Completed) }
func (t *Timer) HandleCanceledByServer() { t.apply(timerTable, Action_CanceledByServer) }

// Cancel requests cancellation. A timer the server never learned about
// completes immediately; one already INITIATED needs a CancelTimer command
// sent and TimerCanceled awaited.
func (t *Timer) Cancel() bool {
	before := t.state
	t.apply(timerTable, Action_Cancel)
	if before == State_INITIATED {
		t.setCancelCommand(CancelTimerAttributes{})
		return false
	}
	return true
}

var _ StateMachine = (*Timer)(nil)
