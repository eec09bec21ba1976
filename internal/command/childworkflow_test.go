package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChildWorkflow_HappyPath(t *testing.T) {
	c := NewChildWorkflow(ID{Kind: TargetKind_ChildWorkflow, InitiatingEventID: 1}, "SubOrder", nil)

	cmd, ok := c.GetCommand()
	require.True(t, ok)
	require.Equal(t, "SubOrder", cmd.Attributes.(ChildWorkflowAttributes).Name)

	c.CommandSent()
	require.Equal(t, State_COMMAND_SENT, c.State())

	c.HandleInitiated()
	c.HandleStarted()
	c.HandleCompleted()

	require.Equal(t, State_COMPLETED, c.State())
	require.True(t, c.IsDone())
}

func TestChildWorkflow_CancelBeforeInitiated_Immediate(t *testing.T) {
	c := NewChildWorkflow(ID{Kind: TargetKind_ChildWorkflow, InitiatingEventID: 1}, "Noop", nil)

	ok := c.Cancel()
	require.True(t, ok)
	require.Equal(t, State_CANCELED_BEFORE_INITIATED, c.State())
	require.True(t, c.IsDone())
}

func TestChildWorkflow_CancelFromCommandSent_AwaitsLateInitiation(t *testing.T) {
	c := NewChildWorkflow(ID{Kind: TargetKind_ChildWorkflow, InitiatingEventID: 1}, "Noop", nil)
	c.CommandSent()

	ok := c.Cancel()
	require.False(t, ok)
	require.Equal(t, State_CANCELED_BEFORE_INITIATED, c.State())
	require.False(t, c.IsDone(), "must not be pruned before the late ChildWorkflowExecutionInitiated arrives")

	_, has := c.GetCommand()
	require.False(t, has, "no cancellation request until the start is acked")

	c.HandleInitiated()
	require.Equal(t, State_CANCELLATION_COMMAND_SENT, c.State())
	require.False(t, c.IsDone())

	cmd, has := c.GetCommand()
	require.True(t, has)
	require.IsType(t, RequestCancelChildWorkflowAttributes{}, cmd.Attributes)

	c.HandleCanceledByServer()
	require.Equal(t, State_CANCELED_AFTER_INITIATED, c.State())
	require.True(t, c.IsDone())
}

func TestChildWorkflow_CancelAfterStarted_AwaitsAck(t *testing.T) {
	c := NewChildWorkflow(ID{Kind: TargetKind_ChildWorkflow, InitiatingEventID: 1}, "Noop", nil)
	c.CommandSent()
	c.HandleInitiated()
	c.HandleStarted()

	ok := c.Cancel()
	require.False(t, ok)
	require.Equal(t, State_CANCELLATION_COMMAND_SENT, c.State())

	cmd, has := c.GetCommand()
	require.True(t, has)
	require.IsType(t, RequestCancelChildWorkflowAttributes{}, cmd.Attributes)

	c.HandleCanceledByServer()
	require.Equal(t, State_CANCELED_AFTER_STARTED, c.State())
}

func TestChildWorkflow_UndefinedTransitionPanics(t *testing.T) {
	c := NewChildWorkflow(ID{Kind: TargetKind_ChildWorkflow, InitiatingEventID: 1}, "Noop", nil)
	require.Panics(t, func() { c.HandleStarted() }) // CREATED has no "started" transition
}
