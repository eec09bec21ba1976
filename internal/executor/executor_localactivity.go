package executor

import (
	"context"
	"fmt"

	"github.com/flowdeck/replaycore/internal/localactivity"
	"github.com/flowdeck/replaycore/internal/metrickeys"
	"github.com/flowdeck/replaycore/internal/metrics"
	"github.com/flowdeck/replaycore/internal/payload"
)

// runLocalActivityPhase implements spec §4.7 step (e) for one batch. In a
// replay batch it resolves the pending local activities whose marker showed
// up in this batch and keeps the rest pending without running them; in a
// live batch it runs every pending local activity, bounded by the configured
// budget. It reports whether the caller should force a new workflow task
// because live work didn't finish within budget.
func (e *Executor) runLocalActivityPhase(ctx context.Context, replaying bool) bool {
	host, ok := e.program.(LocalActivityHost)
	if !ok {
		return false
	}

	for _, req := range host.PendingLocalActivities() {
		e.pendingLA[req.ID] = localactivity.Task{
			ID:      req.ID,
			Name:    req.Name,
			Fn:      req.Fn,
			Args:    req.Args,
			Attempt: 1,
		}
		e.metrics.Counter(metrickeys.LocalActivityScheduled, metrics.Tags{metrickeys.ActivityName: req.Name}, 1)
	}

	if len(e.pendingLA) == 0 {
		return false
	}

	tasks := make([]localactivity.Task, 0, len(e.pendingLA))
	for _, t := range e.pendingLA {
		tasks = append(tasks, t)
	}

	if replaying {
		results, pending, err := e.laRunner.Replay(e.currentMarkers, tasks)
		if err != nil {
			return false
		}
		e.resolveLocalActivities(host, results)
		e.rememberPending(pending)
		return false
	}

	results, pending, forceNewTask := e.laRunner.RunLive(ctx, e.instance, tasks, e.cfg.LocalActivityBudget())
	if forceNewTask {
		e.metrics.Counter(metrickeys.LocalActivityHeartbeatForced, nil, 1)
	}

	for _, res := range results {
		p, err := localactivity.EncodeMarker(e.converter, res)
		if err != nil {
			continue
		}
		e.bk.NewMarker(res.TaskID, localactivity.MarkerName, p)
	}

	e.resolveLocalActivities(host, results)
	e.rememberPending(pending)

	return forceNewTask
}

// ResolveLocalActivityCompletion feeds a local activity's out-of-band result
// into this run, for a Program that dispatches local activities somewhere
// other than this Executor's own budget-bounded phase above (spec §4.6). It
// takes the same mutex HandleWorkflowTask does and records the outcome as a
// marker exactly like the live phase does, so a later replay observes the
// same completion instead of re-running the activity. The Program must
// implement LocalActivityHost; for any other Program the call records
// nothing and returns nil.
func (e *Executor) ResolveLocalActivityCompletion(id int64, result payload.Payload, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("executor: run %s is already closed", e.instance.InstanceID)
	}

	host, ok := e.program.(LocalActivityHost)
	if !ok {
		return nil
	}

	res := localactivity.Result{TaskID: id, Result: result, Err: err}
	if p, encErr := localactivity.EncodeMarker(e.converter, res); encErr == nil {
		e.bk.NewMarker(id, localactivity.MarkerName, p)
	}

	e.resolveLocalActivities(host, []localactivity.Result{res})

	return nil
}

func (e *Executor) resolveLocalActivities(host LocalActivityHost, results []localactivity.Result) {
	for _, res := range results {
		host.ResolveLocalActivity(res.TaskID, res.Result, res.Err)
		delete(e.pendingLA, res.TaskID)
		e.metrics.Counter(metrickeys.LocalActivityProcessed, nil, 1)
	}
}

func (e *Executor) rememberPending(pending []localactivity.Task) {
	for _, t := range pending {
		e.pendingLA[t.ID] = t
	}
}
