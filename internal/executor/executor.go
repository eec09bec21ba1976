package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flowdeck/replaycore/internal/command"
	"github.com/flowdeck/replaycore/internal/config"
	"github.com/flowdeck/replaycore/internal/converter"
	"github.com/flowdeck/replaycore/internal/core"
	"github.com/flowdeck/replaycore/internal/history"
	"github.com/flowdeck/replaycore/internal/localactivity"
	"github.com/flowdeck/replaycore/internal/metrickeys"
	"github.com/flowdeck/replaycore/internal/metrics"
	"github.com/flowdeck/replaycore/internal/replayclock"
	"github.com/flowdeck/replaycore/internal/tracing"
	"github.com/flowdeck/replaycore/internal/workflowerrors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// WorkflowTaskResult is the outcome of handling one workflow task: the
// commands the program wants sent next, any query results the poll request
// asked for, whether the caller should immediately issue a new task, and
// whether this was the run's final command.
type WorkflowTaskResult struct {
	Commands                   []command.Command
	QueryResults               map[string]QueryResult
	ForceCreateNewWorkflowTask bool
	FinalCommand               bool
}

// Executor drives one cached workflow run's Program through successive
// workflow tasks. One Executor instance belongs to exactly one run for its
// entire cached lifetime; it is never shared across runs.
type Executor struct {
	mu sync.Mutex

	instance  *core.WorkflowInstance
	program   Program
	bk        *command.Bookkeeper
	clk       *replayclock.Clock
	tracer    *tracing.Tracer
	metrics   metrics.Client
	logger    *slog.Logger
	converter converter.Converter
	laRunner  *localactivity.Runner
	cfg       config.Config

	pendingLA       map[int64]localactivity.Task
	currentMarkers  []history.Event
	cancelRequested bool
	closed          bool
}

func New(instance *core.WorkflowInstance, program Program, bk *command.Bookkeeper, clk *replayclock.Clock, tracer *tracing.Tracer, m metrics.Client, logger *slog.Logger, c converter.Converter, laRunner *localactivity.Runner, cfg config.Config) *Executor {
	if m == nil {
		m = metrics.NewNoopClient()
	}
	if tracer == nil {
		tracer = tracing.NewTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		instance:  instance,
		program:   program,
		bk:        bk,
		clk:       clk,
		tracer:    tracer,
		metrics:   m,
		logger:    NewReplayLogger(clk, logger),
		converter: c,
		laRunner:  laRunner,
		cfg:       cfg,
		pendingLA: make(map[int64]localactivity.Task),
	}
}

// HandleWorkflowTask runs the full per-task pipeline from spec §4.7 over the
// batches history.GroupIntoBatches produces and returns the commands and
// query answers to send back. A NonDeterminismError panic raised by an
// undefined state-machine transition is recovered and handled by
// handleTaskError like any other non-determinism error.
func (e *Executor) HandleWorkflowTask(ctx context.Context, events []history.Event, previousStartedEventID int64, queries []Query) (result WorkflowTaskResult, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			var ndErr *workflowerrors.NonDeterminismError
			if !ok || !errors.As(perr, &ndErr) {
				panic(r)
			}
			result, err = e.handleTaskError(perr)
		}
	}()

	if e.closed {
		return WorkflowTaskResult{}, fmt.Errorf("executor: run %s is already closed", e.instance.InstanceID)
	}

	start := e.clk.Now()
	ctx, taskSpan := e.tracer.Start(ctx, false, "WorkflowTask", trace.WithAttributes(
		attribute.String(tracing.WorkflowInstanceID, e.instance.InstanceID),
	))
	defer taskSpan.End()

	batches := history.GroupIntoBatches(events, previousStartedEventID)

	var finalCommand bool
	var forceNew bool
	for _, batch := range batches {
		if err := e.handleBatch(ctx, batch); err != nil {
			return e.handleTaskError(err)
		}
		if e.program != nil {
			if _, err := e.program.EventLoop(ctx); err != nil {
				return e.handleTaskError(err)
			}
			e.drainPendingCommands()
		}
		if e.runLocalActivityPhase(ctx, batch.IsReplay) {
			forceNew = true
		}
	}

	completed := false
	if e.program != nil {
		var err error
		completed, err = e.program.EventLoop(ctx)
		if err != nil {
			return e.handleTaskError(err)
		}
		e.drainPendingCommands()
	}

	if !completed && e.runLocalActivityPhase(ctx, false) {
		forceNew = true
	}

	if completed {
		finalCommand = e.emitCompletionCommand()
	} else if err := e.clk.ReconcileTimer(e.program.NextWakeUpTime(), func() {}); err != nil {
		return WorkflowTaskResult{}, fmt.Errorf("reconciling wake-up timer: %w", err)
	}

	e.bk.Prune()

	results := e.answerQueries(queries)

	e.metrics.Timing(metrickeys.WorkflowTaskProcessed, nil, e.clk.Now().Sub(start))

	if completed {
		e.logger.Info("workflow run finished", "instance_id", e.instance.InstanceID)
		e.closeLocked()
	}

	return WorkflowTaskResult{
		Commands:                   e.bk.GetCommands(),
		QueryResults:               results,
		ForceCreateNewWorkflowTask: forceNew,
		FinalCommand:               finalCommand,
	}, nil
}

// handleBatch implements steps 3a-3i of spec §4.7 for a single task batch.
func (e *Executor) handleBatch(ctx context.Context, batch history.TaskBatch) error {
	e.clk.SetReplaying(batch.IsReplay)
	e.clk.Advance(time.UnixMilli(batch.ReplayCurrentTimeMillis))

	if err := e.bk.HandleWorkflowTaskStarted(batch); err != nil {
		return err
	}

	e.currentMarkers = nil
	for _, marker := range batch.Markers {
		e.dispatchMarker(marker)
	}

	for _, ev := range batch.Events {
		if err := e.dispatchEvent(ctx, ev); err != nil {
			return err
		}
	}

	if batch.IsReplay {
		e.bk.NotifyCommandSent()
	}

	for _, ev := range batch.CommandEvents {
		if err := e.bk.HandleEvent(ev); err != nil {
			return err
		}
	}

	// Spec's step (i), "re-notify the started event to reset per-batch
	// transient state", has nothing to do in this Bookkeeper: the only
	// state HandleWorkflowTaskStarted touches is lastStartedEventID, which
	// is already correct after the call above.
	return nil
}

// handleTaskError implements spec §7's WorkflowErrorPolicy branch for an
// error surfacing either from the bookkeeper/batch dispatch (a
// non-determinism violation, e.g. an undefined state-machine transition or a
// previousStartedEventId mismatch) or from the program's EventLoop. Under
// WorkflowErrorPolicyRetryTask the workflow task itself fails so the caller
// retries it, incrementing WorkflowTaskNoCompletion; otherwise the error
// maps to a workflow failure and the run completes via the same
// FailWorkflowExecution command path emitCompletionCommand uses when the
// program itself reports a failed Output().
func (e *Executor) handleTaskError(err error) (WorkflowTaskResult, error) {
	var ndErr *workflowerrors.NonDeterminismError
	isND := errors.As(err, &ndErr)

	if isND {
		e.logger.Error("non-determinism detected", "instance_id", e.instance.InstanceID, "error", err)
		e.metrics.Counter(metrickeys.WorkflowTaskNonDeterminism, nil, 1)
	} else {
		e.logger.Error("workflow program error", "instance_id", e.instance.InstanceID, "error", err)
	}

	if e.program == nil {
		return WorkflowTaskResult{}, err
	}

	if e.program.ImplementationOptions().ErrorPolicy == WorkflowErrorPolicyRetryTask {
		e.metrics.Counter(metrickeys.WorkflowTaskNoCompletion, nil, 1)
		return WorkflowTaskResult{}, err
	}

	mapped := err
	if !isND {
		mapped = e.program.MapError(err)
	}

	e.bk.AppendTerminal(command.NewCompletionCommand(command.FailWorkflowAttributes{
		Error: formatWorkflowError(mapped),
	}))
	e.bk.Prune()
	e.closeLocked()

	return WorkflowTaskResult{
		Commands:     e.bk.GetCommands(),
		FinalCommand: true,
	}, nil
}

// Program returns the workflow program this Executor drives, for callers
// that need to reach an extension interface (LocalActivityHost) directly
// rather than through a method this Executor exposes itself.
func (e *Executor) Program() Program {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.program
}

func (e *Executor) closeLocked() {
	if e.closed {
		return
	}
	if e.program != nil {
		e.program.Close()
	}
	e.closed = true
}

// Close releases the run's program, making this Executor unusable. It is
// safe to call more than once.
func (e *Executor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeLocked()
}
