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

func addTwo(ctx context.Context, n int) (int, error) {
	return n + 2, nil
}

func TestHandleWorkflowTask_RunsLocalActivityLiveAndEmitsMarker(t *testing.T) {
	program := replaytest.NewProgram()
	firstCall := true
	program.EventLoopFunc = func(ctx context.Context) (bool, error) {
		if firstCall {
			firstCall = false
			arg, err := converter.DefaultConverter.To(5)
			require.NoError(t, err)
			program.QueueLocalActivity(executor.LocalActivityRequest{ID: 1, Name: "addTwo", Fn: addTwo, Args: []payload.Payload{arg}})
		}
		return false, nil
	}

	instance := core.NewWorkflowInstance("instance-1", "execution-1")
	bk := command.NewBookkeeper()
	clk := replayclock.New(benbclock.NewMock())
	tracer := tracing.NewTracer(nil)
	laExec := activity.NewExecutor(nil, tracer)
	cfg := config.Default()
	laRunner := localactivity.NewRunner(laExec, converter.DefaultConverter, benbclock.NewMock(), cfg.MaxConcurrentLocalActivityExecutionSize)

	ex := executor.New(instance, program, bk, clk, tracer, nil, nil, converter.DefaultConverter, laRunner, cfg)

	b := replaytest.NewBuilder(time.Unix(0, 0))
	b.Task(time.Second, history.NewEvent(time.Unix(0, 0), history.EventType_WorkflowExecutionStarted, history.ExecutionStartedAttributes{Name: "test"}))

	result, err := ex.HandleWorkflowTask(context.Background(), b.Events(), 0, nil)
	require.NoError(t, err)

	var sawMarker bool
	for _, cmd := range result.Commands {
		if _, ok := cmd.Attributes.(command.MarkerAttributes); ok {
			sawMarker = true
		}
	}
	require.True(t, sawMarker, "expected a RecordMarker command for the completed local activity")

	resolved, ok := program.ResolvedLocalActivity(1)
	require.True(t, ok)
	require.NoError(t, resolved.Err)
}
