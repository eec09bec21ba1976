// Package replaytest provides a minimal fake workflow program and a small
// history-builder so internal/executor's own tests can drive HandleWorkflowTask
// end to end without a real cooperative dispatcher. It is test scaffolding
// only: the dispatcher's deterministic primitives it would otherwise call
// into (sleep, goroutine equivalents) are out of scope, as is any of the real
// program's replay logic — scripts here just record what happened and return
// canned answers.
package replaytest

import (
	"context"
	"sync"

	"github.com/flowdeck/replaycore/internal/executor"
	"github.com/flowdeck/replaycore/internal/history"
	"github.com/flowdeck/replaycore/internal/payload"
)

// Program is a scriptable fake of internal/executor.Program. Each exported
// field is a hook a test can set; Program supplies a sane no-op default for
// any hook left nil.
type Program struct {
	mu sync.Mutex

	StartFunc        func(ctx context.Context, startedEvent history.Event, input []payload.Payload) error
	EventLoopFunc    func(ctx context.Context) (bool, error)
	QueryFunc        func(q executor.Query) (payload.Payload, error)
	OutputFunc       func() (payload.Payload, error)
	NextWakeUpFunc   func() int64
	ErrorPolicy      executor.WorkflowErrorPolicy

	Signals    []SignalCall
	CancelCause error
	Closed      bool

	pendingLA []executor.LocalActivityRequest
	resolved  map[int64]LocalActivityResult

	pendingCmds    []executor.CommandRequest
	pendingCancels []executor.CommandCancellation
}

type SignalCall struct {
	Name    string
	Arg     payload.Payload
	EventID int64
}

type LocalActivityResult struct {
	Result payload.Payload
	Err    error
}

func NewProgram() *Program {
	return &Program{resolved: make(map[int64]LocalActivityResult)}
}

func (p *Program) Start(ctx context.Context, startedEvent history.Event, input []payload.Payload) error {
	if p.StartFunc != nil {
		return p.StartFunc(ctx, startedEvent, input)
	}
	return nil
}

func (p *Program) EventLoop(ctx context.Context) (bool, error) {
	if p.EventLoopFunc != nil {
		return p.EventLoopFunc(ctx)
	}
	return true, nil
}

func (p *Program) HandleSignal(name string, arg payload.Payload, eventID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Signals = append(p.Signals, SignalCall{Name: name, Arg: arg, EventID: eventID})
}

func (p *Program) Cancel(cause error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CancelCause = cause
}

func (p *Program) NextWakeUpTime() int64 {
	if p.NextWakeUpFunc != nil {
		return p.NextWakeUpFunc()
	}
	return 0
}

func (p *Program) Query(q executor.Query) (payload.Payload, error) {
	if p.QueryFunc != nil {
		return p.QueryFunc(q)
	}
	return nil, nil
}

func (p *Program) Output() (payload.Payload, error) {
	if p.OutputFunc != nil {
		return p.OutputFunc()
	}
	return nil, nil
}

func (p *Program) MapUnexpectedPanic(recovered any) error {
	return &panicError{recovered: recovered}
}

func (p *Program) MapError(err error) error {
	return err
}

func (p *Program) ImplementationOptions() executor.ProgramOptions {
	return executor.ProgramOptions{ErrorPolicy: p.ErrorPolicy}
}

func (p *Program) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
}

// QueueLocalActivity makes req show up on the next PendingLocalActivities call.
func (p *Program) QueueLocalActivity(req executor.LocalActivityRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingLA = append(p.pendingLA, req)
}

func (p *Program) PendingLocalActivities() []executor.LocalActivityRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.pendingLA
	p.pendingLA = nil
	return out
}

func (p *Program) ResolveLocalActivity(id int64, result payload.Payload, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolved[id] = LocalActivityResult{Result: result, Err: err}
}

// ResolvedLocalActivity reports what the executor fed back for id, if any.
func (p *Program) ResolvedLocalActivity(id int64) (LocalActivityResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.resolved[id]
	return r, ok
}

// QueueCommand makes req show up on the next PendingCommands call, the way
// a real dispatcher would after workflow code schedules an activity, timer,
// child workflow or external signal/cancel.
func (p *Program) QueueCommand(req executor.CommandRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingCmds = append(p.pendingCmds, req)
}

func (p *Program) PendingCommands() []executor.CommandRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.pendingCmds
	p.pendingCmds = nil
	return out
}

// QueueCancellation makes c show up on the next PendingCancellations call.
func (p *Program) QueueCancellation(c executor.CommandCancellation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingCancels = append(p.pendingCancels, c)
}

func (p *Program) PendingCancellations() []executor.CommandCancellation {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.pendingCancels
	p.pendingCancels = nil
	return out
}

type panicError struct {
	recovered any
}

func (e *panicError) Error() string { return "panic in query handler" }

var _ executor.Program = (*Program)(nil)
var _ executor.LocalActivityHost = (*Program)(nil)
