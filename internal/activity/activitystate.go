// Package activity provides the context-scoped state an activity function
// can read while it runs, and the direct, registry-free invocation helper
// local and remote activity runners call into.
package activity

import (
	"context"
	"log/slog"

	"github.com/flowdeck/replaycore/internal/core"
)

type ActivityState struct {
	ActivityID string
	Attempt    int64
	Instance   *core.WorkflowInstance
	Logger     *slog.Logger
}

func NewActivityState(activityID string, attempt int64, instance *core.WorkflowInstance, logger *slog.Logger) *ActivityState {
	return &ActivityState{
		ActivityID: activityID,
		Attempt:    attempt,
		Instance:   instance,
		Logger: logger.With(
			"activity_id", activityID,
			"instance_id", instance.InstanceID,
			"execution_id", instance.ExecutionID,
			"attempt", attempt,
		),
	}
}

type key int

var activityCtxKey key

func WithActivityState(ctx context.Context, as *ActivityState) context.Context {
	return context.WithValue(ctx, activityCtxKey, as)
}

func GetActivityState(ctx context.Context) *ActivityState {
	as, _ := ctx.Value(activityCtxKey).(*ActivityState)
	return as
}
