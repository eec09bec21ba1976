package command

// RequestCancelExternalAttributes is the
// RequestCancelExternalWorkflowExecution command payload for a target that
// is not a child of this workflow.
type RequestCancelExternalAttributes struct {
	InstanceID string
}

var cancelExternalTable = transitionTable{
	State_CREATED: {
		Action_Emit: State_COMMAND_SENT,
	},
	State_COMMAND_SENT: {
		Action_Initiated: State_INITIATED,
		Action_Cancel:    State_CANCELED_BEFORE_INITIATED,
	},
	State_INITIATED: {
		Action_Completed:          State_COMPLETED,
		Action_CancellationFailed: State_COMPLETED,
	},
	State_CANCELED_BEFORE_INITIATED: {
		Action_Completed:          State_COMPLETED,
		Action_CancellationFailed: State_COMPLETED,
	},
}

// CancelExternal is the state machine for a single
// RequestCancelExternalWorkflowExecution request. It mirrors Signal's shape
// (§4.3): once initiated, the request is in flight and cannot itself be
// withdrawn.
type CancelExternal struct {
	base
	canceled bool
}

func NewCancelExternal(id ID, instanceID string) *CancelExternal {
	c := &CancelExternal{base: newBase(id)}
	c.setInitialCommand(RequestCancelExternalAttributes{InstanceID: instanceID})
	return c
}

func (c *CancelExternal) GetCommand() (Command, bool) { return c.getCommand() }

func (c *CancelExternal) CommandSent() {
	if c.state == State_CREATED {
		c.apply(cancelExternalTable, Action_Emit)
	}
}

// HandleInitiated ignores a late confirmation once cancellation has already
// been requested before it arrived, mirroring Signal.HandleInitiated.
func (c *CancelExternal) HandleInitiated() {
	if c.state == State_CANCELED_BEFORE_INITIATED {
		return
	}
	c.apply(cancelExternalTable, Action_Initiated)
}

func (c *CancelExternal) HandleCompleted()          { c.apply(cancelExternalTable, Action_Completed) }
func (c *CancelExternal) HandleCancellationFailed() { c.apply(cancelExternalTable, Action_CancellationFailed) }

// Cancel mirrors Signal.Cancel: immediate completion from CREATED or
// INITIATED, CANCELED_BEFORE_INITIATED from COMMAND_SENT.
func (c *CancelExternal) Cancel() bool {
	c.canceled = true
	switch c.state {
	case State_CREATED, State_INITIATED:
		c.state = State_COMPLETED
		c.history = append(c.history, Transition{Action: Action_Cancel, ResultingState: State_COMPLETED})
		return true
	default:
		c.apply(cancelExternalTable, Action_Cancel)
		return false
	}
}

func (c *CancelExternal) IsDone() bool {
	return c.canceled || c.base.IsDone()
}

var _ StateMachine = (*CancelExternal)(nil)
