package command

// SignalExternalAttributes is the SignalExternalWorkflowExecution command
// payload.
type SignalExternalAttributes struct {
	InstanceID string
	Name       string
	Args       interface{}
}

var signalTable = transitionTable{
	State_CREATED: {
		Action_Emit: State_COMMAND_SENT,
	},
	State_COMMAND_SENT: {
		Action_Initiated: State_INITIATED,
		Action_Cancel:    State_CANCELED_BEFORE_INITIATED,
		Action_Completed: State_COMPLETED,
	},
	State_INITIATED: {
		Action_Completed: State_COMPLETED,
		Action_Failed:    State_COMPLETED,
	},
	State_CANCELED_BEFORE_INITIATED: {
		Action_Completed: State_COMPLETED,
	},
}

// Signal is the state machine for a single SignalExternalWorkflowExecution
// request. canceled latches true the moment Cancel is called so consumers
// can stop polling it even before the server confirms, independent of
// which terminal state the FSM itself lands in.
type Signal struct {
	base
	canceled bool
}

func NewSignal(id ID, instanceID, name string, args interface{}) *Signal {
	s := &Signal{base: newBase(id)}
	s.setInitialCommand(SignalExternalAttributes{InstanceID: instanceID, Name: name, Args: args})
	return s
}

func (s *Signal) GetCommand() (Command, bool) { return s.getCommand() }

func (s *Signal) CommandSent() {
	if s.state == State_CREATED {
		s.apply(signalTable, Action_Emit)
	}
}

// HandleInitiated advances COMMAND_SENT to INITIATED. A signal already
// CANCELED_BEFORE_INITIATED ignores a subsequent Initiated: the request is
// already headed for cancellation and the late confirmation changes
// nothing about that outcome.
func (s *Signal) HandleInitiated() {
	if s.state == State_CANCELED_BEFORE_INITIATED {
		return
	}
	s.apply(signalTable, Action_Initiated)
}

func (s *Signal) HandleCompleted() { s.apply(signalTable, Action_Completed) }
func (s *Signal) HandleFailed()    { s.apply(signalTable, Action_Failed) }

// Cancel requests cancellation. From CREATED or INITIATED it completes
// immediately: a signal the server never heard about needs no further
// event, and one already in flight and confirmed delivered cannot be
// recalled either way. From COMMAND_SENT it lands in
// CANCELED_BEFORE_INITIATED to await the delivery outcome that is already
// in flight.
func (s *Signal) Cancel() bool {
	s.canceled = true
	switch s.state {
	case State_CREATED, State_INITIATED:
		s.state = State_COMPLETED
		s.history = append(s.history, Transition{Action: Action_Cancel, ResultingState: State_COMPLETED})
		return true
	default:
		s.apply(signalTable, Action_Cancel)
		return false
	}
}

// IsDone reports the base terminal states plus the canceled latch, so
// callers stop waiting on a signal the workflow gave up on even while its
// FSM is still CANCELED_BEFORE_INITIATED awaiting server confirmation.
func (s *Signal) IsDone() bool {
	return s.canceled || s.base.IsDone()
}

var _ StateMachine = (*Signal)(nil)
