// Package localactivity runs activities in-process during a workflow task
// instead of scheduling them on a remote worker. Their outcome is recorded
// as a MarkerRecorded event so replay can restore the result without
// re-running the function.
package localactivity

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/flowdeck/replaycore/internal/activity"
	"github.com/flowdeck/replaycore/internal/converter"
	"github.com/flowdeck/replaycore/internal/core"
	"github.com/flowdeck/replaycore/internal/history"
	"github.com/flowdeck/replaycore/internal/payload"
	"github.com/flowdeck/replaycore/internal/tracing"
	"golang.org/x/sync/errgroup"
)

// MarkerName is the RecordMarker name local activity results are filed
// under; Replay looks for markers with this name to restore outcomes.
const MarkerName = "_localActivity"

// Task is one local activity the workflow program wants run. ID is the
// initiating event id of the RecordMarker command that will carry its
// result, used to correlate a replayed marker back to the call site.
type Task struct {
	ID         int64
	Name       string
	Fn         interface{}
	Args       []payload.Payload
	Attempt    int64
	TraceCtx   tracing.Context
}

// Result is the outcome of running (or replaying) one Task.
type Result struct {
	TaskID int64
	Result payload.Payload
	Err    error
}

// markerPayload is what gets serialized into a local activity's
// MarkerRecordedAttributes.Result.
type markerPayload struct {
	Result  payload.Payload
	ErrText string
}

// Runner executes local activities either by replaying their recorded
// marker or by actually invoking the function, bounded by a soft deadline
// and a maximum dispatch concurrency.
type Runner struct {
	executor      activity.Executor
	converter     converter.Converter
	clock         clock.Clock
	maxConcurrent int
}

func NewRunner(executor activity.Executor, c converter.Converter, clk clock.Clock, maxConcurrent int) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Runner{executor: executor, converter: c, clock: clk, maxConcurrent: maxConcurrent}
}

// Replay restores results for tasks whose marker is already present in
// markers, without executing anything. It never forces a new workflow task:
// the information needed is already in history.
func (r *Runner) Replay(markers []history.Event, tasks []Task) ([]Result, []Task, error) {
	byID := make(map[int64]history.Event, len(markers))
	for _, m := range markers {
		attrs, ok := m.Attributes.(history.MarkerRecordedAttributes)
		if !ok || attrs.Name != MarkerName {
			continue
		}
		byID[m.ScheduleEventID] = m
	}

	var results []Result
	var pending []Task
	for _, t := range tasks {
		ev, ok := byID[t.ID]
		if !ok {
			pending = append(pending, t)
			continue
		}

		attrs := ev.Attributes.(history.MarkerRecordedAttributes)
		var mp markerPayload
		if err := r.converter.From(attrs.Result, &mp); err != nil {
			return nil, nil, fmt.Errorf("decoding local activity marker %d: %w", t.ID, err)
		}

		res := Result{TaskID: t.ID, Result: mp.Result}
		if mp.ErrText != "" {
			res.Err = fmt.Errorf("%s", mp.ErrText)
		}
		results = append(results, res)
	}

	return results, pending, nil
}

// RunLive dispatches tasks bounded by maxConcurrent (so five 3s activities
// don't all race to completion in parallel and hide a budget that can't
// actually cover them) and bounded by budget, measured off the injected
// clock rather than real wall-clock time so a mock clock in tests drives
// this deadline exactly like it drives everything else in a replay. It
// returns whatever completed within the budget, the tasks that didn't get a
// chance to finish, and whether the caller should force a new workflow task
// (heartbeat) because the budget ran out with work still outstanding.
func (r *Runner) RunLive(ctx context.Context, instance *core.WorkflowInstance, tasks []Task, budget time.Duration) ([]Result, []Task, bool) {
	if len(tasks) == 0 {
		return nil, nil, false
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(r.maxConcurrent)

	results := make([]Result, len(tasks))
	done := make([]bool, len(tasks))

	waitDone := make(chan struct{})
	go func() {
		for i, t := range tasks {
			i, t := i, t
			// Go blocks the dispatch loop once maxConcurrent tasks are
			// already running, which is exactly the bounded-start behavior
			// this method needs; the timer below still fires on schedule
			// because it races this whole goroutine, not the caller.
			g.Go(func() error {
				// A slot can free up because the budget expired and cancel
				// was already called; such a task never actually started
				// and belongs in pending, not completed.
				if gctx.Err() != nil {
					return nil
				}
				out, err := r.executor.Execute(gctx, r.converter, t.Fn, t.Name, fmt.Sprintf("%d", t.ID), t.Attempt, instance, t.Args, t.TraceCtx, false)
				results[i] = Result{TaskID: t.ID, Result: out, Err: err}
				done[i] = true
				return nil
			})
		}
		_ = g.Wait()
		close(waitDone)
	}()

	timer := r.clock.Timer(budget)
	defer timer.Stop()

	timedOut := false
	select {
	case <-waitDone:
	case <-timer.C:
		timedOut = true
		cancel()
		<-waitDone
	}

	var completed []Result
	var pending []Task
	for i, t := range tasks {
		if done[i] {
			completed = append(completed, results[i])
		} else {
			pending = append(pending, t)
		}
	}

	forceNewTask := timedOut || len(pending) > 0

	return completed, pending, forceNewTask
}

// EncodeMarker builds the RecordMarker attributes for a completed local
// activity result so the bookkeeper can emit it as a normal command.
func EncodeMarker(c converter.Converter, res Result) (payload.Payload, error) {
	mp := markerPayload{Result: res.Result}
	if res.Err != nil {
		mp.ErrText = res.Err.Error()
	}
	return c.To(mp)
}
