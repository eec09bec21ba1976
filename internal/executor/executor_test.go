package executor_test

import (
	"context"
	"testing"
	"time"

	benbclock "github.com/benbjohnson/clock"
	"github.com/flowdeck/replaycore/internal/activity"
	"github.com/flowdeck/replaycore/internal/command"
	"github.com/flowdeck/replaycore/internal/config"
	"github.com/flowdeck/replaycore/internal/converter"
	"github.com/flowdeck/replaycore/internal/core"
	"github.com/flowdeck/replaycore/internal/executor"
	"github.com/flowdeck/replaycore/internal/history"
	"github.com/flowdeck/replaycore/internal/localactivity"
	"github.com/flowdeck/replaycore/internal/payload"
	"github.com/flowdeck/replaycore/internal/replayclock"
	"github.com/flowdeck/replaycore/internal/replaytest"
	"github.com/flowdeck/replaycore/internal/tracing"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T, program *replaytest.Program) *executor.Executor {
	t.Helper()

	instance := core.NewWorkflowInstance("instance-1", "execution-1")
	bk := command.NewBookkeeper()
	clk := replayclock.New(benbclock.NewMock())
	tracer := tracing.NewTracer(nil)
	laExec := activity.NewExecutor(nil, tracer)
	cfg := config.Default()
	laRunner := localactivity.NewRunner(laExec, converter.DefaultConverter, benbclock.NewMock(), cfg.MaxConcurrentLocalActivityExecutionSize)

	return executor.New(instance, program, bk, clk, tracer, nil, nil, converter.DefaultConverter, laRunner, cfg)
}

func TestHandleWorkflowTask_CompletesWorkflow(t *testing.T) {
	program := replaytest.NewProgram()
	program.EventLoopFunc = func(ctx context.Context) (bool, error) { return true, nil }
	program.OutputFunc = func() (payload.Payload, error) {
		out, err := converter.DefaultConverter.To("done")
		return out, err
	}

	ex := newTestExecutor(t, program)

	b := replaytest.NewBuilder(time.Unix(0, 0))
	b.Task(time.Second, history.NewEvent(time.Unix(0, 0), history.EventType_WorkflowExecutionStarted, history.ExecutionStartedAttributes{Name: "test"}))

	result, err := ex.HandleWorkflowTask(context.Background(), b.Events(), 0, nil)
	require.NoError(t, err)
	require.True(t, result.FinalCommand)
	require.Len(t, result.Commands, 1)

	attrs, ok := result.Commands[0].Attributes.(command.CompleteWorkflowAttributes)
	require.True(t, ok)
	require.False(t, attrs.Result.IsEmpty())
}

func TestHandleWorkflowTask_DispatchesSignal(t *testing.T) {
	program := replaytest.NewProgram()
	program.EventLoopFunc = func(ctx context.Context) (bool, error) { return false, nil }

	ex := newTestExecutor(t, program)

	arg, err := converter.DefaultConverter.To("hello")
	require.NoError(t, err)

	b := replaytest.NewBuilder(time.Unix(0, 0))
	b.Task(time.Second,
		history.NewEvent(time.Unix(0, 0), history.EventType_WorkflowExecutionStarted, history.ExecutionStartedAttributes{Name: "test"}),
		history.NewEvent(time.Unix(0, 0), history.EventType_WorkflowExecutionSignaled, history.ExecutionSignaledAttributes{Name: "sig", Arg: arg}),
	)

	_, err = ex.HandleWorkflowTask(context.Background(), b.Events(), 0, nil)
	require.NoError(t, err)

	require.Len(t, program.Signals, 1)
	require.Equal(t, "sig", program.Signals[0].Name)
}

func TestHandleWorkflowTask_AnswersQueries(t *testing.T) {
	program := replaytest.NewProgram()
	program.EventLoopFunc = func(ctx context.Context) (bool, error) { return false, nil }
	program.QueryFunc = func(q executor.Query) (payload.Payload, error) {
		return converter.DefaultConverter.To(q.Name + "-answer")
	}

	ex := newTestExecutor(t, program)

	b := replaytest.NewBuilder(time.Unix(0, 0))
	b.Task(time.Second, history.NewEvent(time.Unix(0, 0), history.EventType_WorkflowExecutionStarted, history.ExecutionStartedAttributes{Name: "test"}))

	result, err := ex.HandleWorkflowTask(context.Background(), b.Events(), 0, []executor.Query{{Name: "status"}})
	require.NoError(t, err)
	require.Contains(t, result.QueryResults, "status")
	require.Equal(t, executor.QueryResultAnswered, result.QueryResults["status"].Status)
}

func TestHandleWorkflowTask_RejectsTaskAfterClose(t *testing.T) {
	program := replaytest.NewProgram()
	program.EventLoopFunc = func(ctx context.Context) (bool, error) { return true, nil }

	ex := newTestExecutor(t, program)
	ex.Close()

	b := replaytest.NewBuilder(time.Unix(0, 0))
	b.Task(time.Second, history.NewEvent(time.Unix(0, 0), history.EventType_WorkflowExecutionStarted, history.ExecutionStartedAttributes{Name: "test"}))

	_, err := ex.HandleWorkflowTask(context.Background(), b.Events(), 0, nil)
	require.Error(t, err)
}
