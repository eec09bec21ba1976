package command

import (
	"fmt"

	"github.com/flowdeck/replaycore/internal/workflowerrors"
)

// ChildWorkflowAttributes is the StartChildWorkflowExecution command
// payload.
type ChildWorkflowAttributes struct {
	Name string
	Args interface{}
}

// RequestCancelChildWorkflowAttributes is the
// RequestCancelExternalWorkflowExecution command payload issued against a
// child, as opposed to an arbitrary external workflow.
type RequestCancelChildWorkflowAttributes struct{}

var childWorkflowTable = transitionTable{
	State_CREATED: {
		Action_Emit:   State_COMMAND_SENT,
		Action_Cancel: State_CANCELED_BEFORE_INITIATED,
	},
	State_COMMAND_SENT: {
		Action_Initiated:        State_INITIATED,
		Action_InitiationFailed: State_COMPLETED, // e.g. workflow ID already in use
		Action_Cancel:            State_CANCELED_BEFORE_INITIATED,
	},
	State_CANCELED_BEFORE_INITIATED: {
		// The start command was already in flight when Cancel() fired; the
		// service still records the initiation once it catches up, and only
		// then can the cancellation request actually be sent.
		Action_Initiated: State_CANCELLATION_COMMAND_SENT,
	},
	State_INITIATED: {
		Action_Started:    State_STARTED,
		Action_Completed:  State_COMPLETED,
		Action_Failed:      State_COMPLETED,
		Action_TimedOut:    State_COMPLETED,
		Action_Cancel:       State_CANCELLATION_COMMAND_SENT,
	},
	State_STARTED: {
		Action_Completed: State_COMPLETED,
		Action_Failed:     State_COMPLETED,
		Action_TimedOut:   State_COMPLETED,
		Action_Cancel:      State_CANCELLATION_COMMAND_SENT,
	},
	State_CANCELLATION_COMMAND_SENT: {
		Action_Completed: State_COMPLETED,
		Action_Failed:      State_COMPLETED,
		Action_TimedOut:    State_COMPLETED,
	},
}

// ChildWorkflow is the state machine for a single child workflow execution.
type ChildWorkflow struct {
	base
	name              string
	wasStarted        bool
	awaitingCancelAck bool
}

func NewChildWorkflow(id ID, name string, args interface{}) *ChildWorkflow {
	c := &ChildWorkflow{base: newBase(id), name: name}
	c.setInitialCommand(ChildWorkflowAttributes{Name: name, Args: args})
	return c
}

func (c *ChildWorkflow) GetCommand() (Command, bool) { return c.getCommand() }

func (c *ChildWorkflow) CommandSent() {
	if c.state == State_CREATED {
		c.apply(childWorkflowTable, Action_Emit)
	}
}

// IsDone overrides base.IsDone: a child workflow canceled while its start
// command was still in flight (COMMAND_SENT) is not actually finished yet —
// the service will still deliver ChildWorkflowExecutionInitiated for it, and
// only that late initiation lets the deferred cancellation request go out.
// One canceled straight from CREATED never had a command sent at all, so
// base's terminal answer stands.
func (c *ChildWorkflow) IsDone() bool {
	if c.state == State_CANCELED_BEFORE_INITIATED && c.awaitingCancelAck {
		return false
	}
	return c.base.IsDone()
}

// HandleInitiated records ChildWorkflowExecutionInitiated. If this child was
// canceled after its start command had already been sent, the cancellation
// request was deferred until now; emit it.
func (c *ChildWorkflow) HandleInitiated() {
	before := c.state
	c.apply(childWorkflowTable, Action_Initiated)
	if before == State_CANCELED_BEFORE_INITIATED {
		c.setCancelCommand(RequestCancelChildWorkflowAttributes{})
	}
}

func (c *ChildWorkflow) HandleInitiationFailed() { c.apply(childWorkflowTable, Action_InitiationFailed) }

func (c *ChildWorkflow) HandleStarted() {
	c.apply(childWorkflowTable, Action_Started)
	c.wasStarted = true
}

func (c *ChildWorkflow) HandleCompleted() { c.apply(childWorkflowTable, Action_Completed) }
func (c *ChildWorkflow) HandleFailed()    { c.apply(childWorkflowTable, Action_Failed) }
func (c *ChildWorkflow) HandleTimedOut()  { c.apply(childWorkflowTable, Action_TimedOut) }

func (c *ChildWorkflow) HandleCanceledByServer() {
	if c.state != State_CANCELLATION_COMMAND_SENT {
		panic(workflowerrors.NewTransitionError(fmt.Sprintf("ChildWorkflow#%d", c.id.InitiatingEventID), c.state.String(), string(Action_CanceledByServer), c.historyStrings()))
	}
	next := State_CANCELED_AFTER_INITIATED
	if c.wasStarted {
		next = State_CANCELED_AFTER_STARTED
	}
	c.state = next
	c.history = append(c.history, Transition{Action: Action_CanceledByServer, ResultingState: next})
}

// Cancel requests cancellation of the child workflow execution.
func (c *ChildWorkflow) Cancel() bool {
	before := c.state
	c.apply(childWorkflowTable, Action_Cancel)
	if before == State_INITIATED || before == State_STARTED {
		c.setCancelCommand(RequestCancelChildWorkflowAttributes{})
		return false
	}
	if before == State_COMMAND_SENT {
		c.awaitingCancelAck = true
		return false
	}
	return true
}

var _ StateMachine = (*ChildWorkflow)(nil)
