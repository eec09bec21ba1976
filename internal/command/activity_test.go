package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActivity_HappyPath(t *testing.T) {
	a := NewActivity(ID{Kind: TargetKind_Activity, InitiatingEventID: 1}, "SendEmail", nil)

	cmd, ok := a.GetCommand()
	require.True(t, ok)
	require.Equal(t, "SendEmail", cmd.Attributes.(ActivityAttributes).Name)

	a.CommandSent()
	require.Equal(t, State_COMMAND_SENT, a.State())

	a.HandleInitiated()
	a.HandleStarted()
	a.HandleCompleted()

	require.Equal(t, State_COMPLETED, a.State())
	require.True(t, a.IsDone())
}

func TestActivity_CancelBeforeInitiated_Immediate(t *testing.T) {
	a := NewActivity(ID{Kind: TargetKind_Activity, InitiatingEventID: 1}, "Noop", nil)

	ok := a.Cancel()
	require.True(t, ok)
	require.Equal(t, State_CANCELED_BEFORE_INITIATED, a.State())
	require.True(t, a.IsDone())
}

func TestActivity_CancelAfterStarted_AwaitsAck(t *testing.T) {
	a := NewActivity(ID{Kind: TargetKind_Activity, InitiatingEventID: 1}, "Noop", nil)
	a.CommandSent()
	a.HandleInitiated()
	a.HandleStarted()

	ok := a.Cancel()
	require.False(t, ok)
	require.Equal(t, State_CANCELLATION_COMMAND_SENT, a.State())

	cmd, has := a.GetCommand()
	require.True(t, has)
	require.IsType(t, RequestCancelActivityAttributes{}, cmd.Attributes)

	// A second read before the ack shouldn't re-emit.
	_, has = a.GetCommand()
	require.False(t, has)

	a.HandleCanceledByServer()
	require.Equal(t, State_CANCELED_AFTER_STARTED, a.State())
}

func TestActivity_CancelFromCommandSent_AwaitsLateInitiation(t *testing.T) {
	a := NewActivity(ID{Kind: TargetKind_Activity, InitiatingEventID: 1}, "Noop", nil)
	a.CommandSent()

	ok := a.Cancel()
	require.False(t, ok)
	require.Equal(t, State_CANCELED_BEFORE_INITIATED, a.State())
	require.False(t, a.IsDone(), "must not be pruned before the late ActivityTaskScheduled arrives")

	_, has := a.GetCommand()
	require.False(t, has, "no cancellation request until the schedule is acked")

	a.HandleInitiated()
	require.Equal(t, State_CANCELLATION_COMMAND_SENT, a.State())
	require.False(t, a.IsDone())

	cmd, has := a.GetCommand()
	require.True(t, has)
	require.IsType(t, RequestCancelActivityAttributes{}, cmd.Attributes)

	a.HandleCanceledByServer()
	require.Equal(t, State_CANCELED_AFTER_INITIATED, a.State())
	require.True(t, a.IsDone())
}

func TestActivity_UndefinedTransitionPanics(t *testing.T) {
	a := NewActivity(ID{Kind: TargetKind_Activity, InitiatingEventID: 1}, "Noop", nil)
	require.Panics(t, func() { a.HandleStarted() }) // CREATED has no "started" transition
}
