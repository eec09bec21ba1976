package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/flowdeck/replaycore/internal/args"
	"github.com/flowdeck/replaycore/internal/converter"
	"github.com/flowdeck/replaycore/internal/core"
	"github.com/flowdeck/replaycore/internal/payload"
	"github.com/flowdeck/replaycore/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Executor invokes an activity function directly, by value. There is no
// name-based registry here: whoever schedules the activity (the workflow
// program, via its own bookkeeping) already holds the function it wants
// run and passes it straight through.
type Executor struct {
	logger *slog.Logger
	tracer *tracing.Tracer
}

func NewExecutor(logger *slog.Logger, tracer *tracing.Tracer) Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return Executor{logger: logger, tracer: tracer}
}

// Execute runs fn with inputs decoded via c, inside a span that is a child
// of traceCtx, the context captured when the activity was scheduled.
// replaying is almost always false for an activity actually running: by the
// time it executes, the task that scheduled it is no longer being replayed.
// Local activities pass their own replay flag instead, since those can
// legitimately re-run while replaying.
func (e *Executor) Execute(ctx context.Context, c converter.Converter, fn interface{}, name string, activityID string, attempt int64, instance *core.WorkflowInstance, inputs []payload.Payload, traceCtx tracing.Context, replaying bool) (payload.Payload, error) {
	fnV := reflect.ValueOf(fn)
	if fnV.Kind() != reflect.Func {
		return nil, fmt.Errorf("activity %q: not a function", name)
	}

	argValues, addContext, err := args.InputsToArgs(c, fnV, inputs)
	if err != nil {
		return nil, fmt.Errorf("converting activity inputs: %w", err)
	}

	as := NewActivityState(activityID, attempt, instance, e.logger)
	ctx = WithActivityState(ctx, as)
	ctx = tracing.ExtractSpanContext(ctx, traceCtx)

	ctx, span := e.tracer.Start(ctx, replaying, "ActivityTaskExecution", trace.WithAttributes(
		attribute.String("activity", name),
		attribute.String(tracing.WorkflowInstanceID, instance.InstanceID),
		attribute.String(tracing.ActivityTaskID, activityID),
	))
	defer span.End()

	if addContext {
		argValues[0] = reflect.ValueOf(ctx)
	}

	result, err := call(fnV, argValues)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if result == nil {
		return nil, nil
	}

	out, err := c.To(result)
	if err != nil {
		return nil, fmt.Errorf("converting activity result: %w", err)
	}

	return out, nil
}

// call invokes fn, translating its (<result>, error) or (error) return
// shape into a single result/error pair, and recovering a panic into an
// error so one bad activity can't take down the process running it.
func call(fn reflect.Value, args []reflect.Value) (result interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("activity panicked: %v", p)
		}
	}()

	r := fn.Call(args)
	if len(r) < 1 || len(r) > 2 {
		return nil, errors.New("activity must return (error) or (<result>, error)")
	}

	errResult := r[len(r)-1]
	var callErr error
	if !errResult.IsNil() {
		e, ok := errResult.Interface().(error)
		if !ok {
			return nil, fmt.Errorf("activity error return does not satisfy error (%v)", errResult)
		}
		callErr = e
	}

	if len(r) == 2 {
		result = r[0].Interface()
	}

	return result, callErr
}
