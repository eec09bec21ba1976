// Package replaycore is the public facade over the workflow replay
// executor: one cached internal executor per workflow run, driven by
// whatever history a caller's own polling loop supplies. Everything the
// executor actually does lives in internal/executor; this package only
// wires dependencies together and maps the per-run cache onto them.
package replaycore

import (
	"context"
	"log/slog"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowdeck/replaycore/internal/activity"
	"github.com/flowdeck/replaycore/internal/cache"
	"github.com/flowdeck/replaycore/internal/command"
	"github.com/flowdeck/replaycore/internal/config"
	"github.com/flowdeck/replaycore/internal/converter"
	"github.com/flowdeck/replaycore/internal/core"
	"github.com/flowdeck/replaycore/internal/executor"
	"github.com/flowdeck/replaycore/internal/history"
	"github.com/flowdeck/replaycore/internal/localactivity"
	"github.com/flowdeck/replaycore/internal/metrics"
	"github.com/flowdeck/replaycore/internal/payload"
	"github.com/flowdeck/replaycore/internal/replayclock"
	"github.com/flowdeck/replaycore/internal/tracing"
)

// Program is the workflow program contract a caller's cooperative
// dispatcher implements. See internal/executor.Program for the full
// contract this type aliases.
type Program = executor.Program

// LocalActivityHost is the optional extension a Program implements to
// dispatch local activities through this Executor's own budget-bounded
// runner. LocalActivityCompletionSink also delivers results only to a
// Program that implements it.
type LocalActivityHost = executor.LocalActivityHost

// LocalActivityRequest is one local activity a Program wants run.
type LocalActivityRequest = executor.LocalActivityRequest

// CommandRequest and CommandCancellation are the activities, timers, child
// workflows and external signal/cancel requests a Program's event loop
// reports back through PendingCommands/PendingCancellations.
type (
	CommandRequest      = executor.CommandRequest
	CommandCancellation = executor.CommandCancellation
)

// Query, QueryResult and WorkflowTaskResult mirror internal/executor's
// types so callers never need to import internal packages directly.
type (
	Query              = executor.Query
	QueryResult        = executor.QueryResult
	WorkflowTaskResult = executor.WorkflowTaskResult
	ProgramOptions     = executor.ProgramOptions
	WorkflowErrorPolicy = executor.WorkflowErrorPolicy
)

const (
	WorkflowErrorPolicyFailWorkflow = executor.WorkflowErrorPolicyFailWorkflow
	WorkflowErrorPolicyRetryTask    = executor.WorkflowErrorPolicyRetryTask
)

// Config is the executor's tuning knobs; see internal/config.Config.
type Config = config.Config

// DefaultConfig returns Config populated with this module's defaults.
func DefaultConfig() Config { return config.Default() }

// ProgramFactory builds the Program driving one workflow run. It is called
// at most once per instance+execution id: the result is cached alongside
// the rest of that run's executor state until the run finishes or is
// evicted.
type ProgramFactory func(instance *core.WorkflowInstance) Program

// Executor is the top-level entry point, one per worker process, fanning
// out to a per-run cached internal/executor.Executor keyed by instance.
type Executor struct {
	fetcher    history.PageFetcher
	newProgram ProgramFactory
	cfg        config.Config

	cache cache.ExecutorCache

	tracer    *tracing.Tracer
	metrics   metrics.Client
	logger    *slog.Logger
	converter converter.Converter

	rtClock clock.Clock
	laExec  activity.Executor
}

// New builds an Executor. tracer, m, logger and c may be nil; each falls
// back to a no-op or stdlib default, matching the teacher's own pattern of
// optional ambient-stack dependencies.
func New(fetcher history.PageFetcher, newProgram ProgramFactory, cfg config.Config, tracer trace.Tracer, m metrics.Client, logger *slog.Logger, c converter.Converter) *Executor {
	if c == nil {
		c = converter.DefaultConverter
	}
	if m == nil {
		m = metrics.NewNoopClient()
	}
	if logger == nil {
		logger = slog.Default()
	}

	t := tracing.NewTracer(tracer)

	return &Executor{
		fetcher:    fetcher,
		newProgram: newProgram,
		cfg:        cfg,
		cache:      cache.New(cfg.ExecutorCacheSize, cfg.ExecutorCacheTTL),
		tracer:     t,
		metrics:    m,
		logger:     logger,
		converter:  c,
		rtClock:    clock.New(),
		laExec:     activity.NewExecutor(logger, t),
	}
}

// StartEviction runs the executor cache's background eviction sweep until
// ctx is canceled. Call it once from the worker's own lifecycle, in its own
// goroutine.
func (e *Executor) StartEviction(ctx context.Context) {
	e.cache.StartEviction(ctx)
}

// cachedExecutor adapts *internal/executor.Executor to cache.Entry: the
// cache's eviction hook expects Close() error, the inner type's Close takes
// no return value because it can't fail.
type cachedExecutor struct {
	*executor.Executor
}

func (c *cachedExecutor) Close() error {
	c.Executor.Close()
	return nil
}

func (e *Executor) getOrCreate(ctx context.Context, instance *core.WorkflowInstance) (*executor.Executor, error) {
	if entry, ok, err := e.cache.Get(ctx, instance); err != nil {
		return nil, err
	} else if ok {
		return entry.(*cachedExecutor).Executor, nil
	}

	program := e.newProgram(instance)
	bk := command.NewBookkeeper()
	clk := replayclock.New(clock.New())
	laRunner := localactivity.NewRunner(e.laExec, e.converter, e.rtClock, e.cfg.MaxConcurrentLocalActivityExecutionSize)

	ex := executor.New(instance, program, bk, clk, e.tracer, e.metrics, e.logger, e.converter, laRunner, e.cfg)

	if err := e.cache.Store(ctx, instance, &cachedExecutor{ex}); err != nil {
		return nil, err
	}

	return ex, nil
}

// HandleWorkflowTask fetches the remaining history pages for this task (the
// caller already holds the first page from its poll response), feeds the
// full event stream into the per-run cached Executor, and returns the
// commands and query answers to send back to the service.
func (e *Executor) HandleWorkflowTask(ctx context.Context, instance *core.WorkflowInstance, firstPage history.Page, previousStartedEventID int64, queries []Query) (WorkflowTaskResult, error) {
	ex, err := e.getOrCreate(ctx, instance)
	if err != nil {
		return WorkflowTaskResult{}, err
	}

	it := history.NewIterator(e.fetcher, *instance, e.rtClock)
	deadline := e.rtClock.Now().Add(e.cfg.WorkflowTaskTimeout)

	events, err := it.FetchEvents(ctx, firstPage, deadline)
	if err != nil {
		return WorkflowTaskResult{}, err
	}

	return ex.HandleWorkflowTask(ctx, events, previousStartedEventID, queries)
}

// HandleQueryWorkflowTask answers queries against a run's cached Executor
// without driving any new history through it, for a poll that carries only
// queries and no new events.
func (e *Executor) HandleQueryWorkflowTask(ctx context.Context, instance *core.WorkflowInstance, queries []Query) (WorkflowTaskResult, error) {
	ex, err := e.getOrCreate(ctx, instance)
	if err != nil {
		return WorkflowTaskResult{}, err
	}

	return ex.HandleWorkflowTask(ctx, nil, 0, queries)
}

// Close evicts and closes the cached Executor for instance, if one exists.
// It is a no-op if no run is currently cached for that instance.
func (e *Executor) Close(ctx context.Context, instance *core.WorkflowInstance) error {
	return e.cache.Evict(ctx, instance)
}

// LocalActivityCompletionSink feeds a local activity's result into a run's
// cached Executor directly, for a Program whose local activities are
// dispatched and executed somewhere other than this Executor's own
// budget-bounded LocalActivityHost phase. The run's Program must still
// implement LocalActivityHost; for any other Program the result is dropped
// and nil is returned.
func (e *Executor) LocalActivityCompletionSink(ctx context.Context, instance *core.WorkflowInstance, id int64, result payload.Payload, err error) error {
	ex, getErr := e.getOrCreate(ctx, instance)
	if getErr != nil {
		return getErr
	}

	return ex.ResolveLocalActivityCompletion(id, result, err)
}
