package command

import (
	"testing"
	"time"

	"github.com/flowdeck/replaycore/internal/history"
	"github.com/stretchr/testify/require"
)

func TestBookkeeper_OrdersCommandsByIssueOrder(t *testing.T) {
	bk := NewBookkeeper()
	bk.NewTimer(1, 1000)
	bk.NewActivity(2, "First", nil)
	bk.NewActivity(3, "Second", nil)

	cmds := bk.GetCommands()
	require.Len(t, cmds, 3)
	require.IsType(t, TimerAttributes{}, cmds[0].Attributes)
	require.Equal(t, "First", cmds[1].Attributes.(ActivityAttributes).Name)
	require.Equal(t, "Second", cmds[2].Attributes.(ActivityAttributes).Name)
}

func TestBookkeeper_NotifyCommandSentOnlyAffectsCreated(t *testing.T) {
	bk := NewBookkeeper()
	a := bk.NewActivity(1, "A", nil)
	a.CommandSent()
	a.HandleInitiated()

	b := bk.NewActivity(2, "B", nil)

	bk.NotifyCommandSent()
	require.Equal(t, State_INITIATED, a.State())
	require.Equal(t, State_COMMAND_SENT, b.State())
}

func TestBookkeeper_HandleEventRoutesByScheduleEventID(t *testing.T) {
	bk := NewBookkeeper()
	a := bk.NewActivity(5, "A", nil)
	a.CommandSent()

	require.NoError(t, bk.HandleEvent(history.NewEvent(time.Now(), history.EventType_ActivityTaskScheduled,
		history.ActivityScheduledAttributes{}, history.ScheduleEventID(5))))
	require.Equal(t, State_INITIATED, a.State())

	require.NoError(t, bk.HandleEvent(history.NewEvent(time.Now(), history.EventType_ActivityTaskCompleted,
		history.ActivityCompletedAttributes{}, history.ScheduleEventID(5))))
	require.Equal(t, State_COMPLETED, a.State())
}

func TestBookkeeper_HandleEventUnknownScheduleIDIsNonDeterminism(t *testing.T) {
	bk := NewBookkeeper()
	err := bk.HandleEvent(history.NewEvent(time.Now(), history.EventType_ActivityTaskCompleted,
		history.ActivityCompletedAttributes{}, history.ScheduleEventID(99)))
	require.Error(t, err)
}

func TestBookkeeper_WorkflowTaskStartedMismatchIsNonDeterminism(t *testing.T) {
	bk := NewBookkeeper()
	require.NoError(t, bk.HandleWorkflowTaskStarted(history.TaskBatch{PreviousStartedEventID: 0, CurrentStartedEventID: 5}))
	err := bk.HandleWorkflowTaskStarted(history.TaskBatch{PreviousStartedEventID: 99, CurrentStartedEventID: 10})
	require.Error(t, err)
}

func TestBookkeeper_Prune(t *testing.T) {
	bk := NewBookkeeper()
	a := bk.NewActivity(1, "A", nil)
	a.Cancel()
	bk.NewActivity(2, "B", nil)

	bk.Prune()
	require.Len(t, bk.order, 1)
}
