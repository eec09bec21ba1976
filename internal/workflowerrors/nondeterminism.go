package workflowerrors

import "fmt"

// NonDeterminismError is raised whenever a command state machine is asked
// to apply an (state, action) pair its transition table doesn't define, or
// the bookkeeper detects a previousStartedEventId/lastStartedEventId
// mismatch. It always carries enough context to diagnose the divergence
// without re-running anything.
type NonDeterminismError struct {
	Message string
	History []string
}

func (e *NonDeterminismError) Error() string {
	return e.Message
}

func (e *NonDeterminismError) Stack() string {
	return stack(e)
}

var _ error = (*NonDeterminismError)(nil)

// NewTransitionError builds a NonDeterminismError for a state machine that
// was asked to apply action while in state, including its full transition
// history for debugging.
func NewTransitionError(machineID string, state string, action string, history []string) *NonDeterminismError {
	return &NonDeterminismError{
		Message: fmt.Sprintf("command %s: undefined transition %q from state %s; history: %v", machineID, action, state, history),
		History: history,
	}
}

// NewStartedEventMismatchError builds the fatal workflow-task error raised
// when a batch's previousStartedEventId does not match the executor's
// lastStartedEventId.
func NewStartedEventMismatchError(expected, got int64) *NonDeterminismError {
	return &NonDeterminismError{
		Message: fmt.Sprintf("non-determinism: expected previousStartedEventId=%d, batch carries %d", expected, got),
	}
}

// NewUnknownCommandError builds the error raised when a command-correlated
// event's ScheduleEventID does not match any machine the bookkeeper knows
// about: the history demands a transition this build of the workflow never
// issued the command for.
func NewUnknownCommandError(scheduleEventID int64) *NonDeterminismError {
	return &NonDeterminismError{
		Message: fmt.Sprintf("non-determinism: no command found for scheduleEventId=%d", scheduleEventID),
	}
}
