package replaytest

import (
	"time"

	"github.com/flowdeck/replaycore/internal/history"
)

// Builder assembles a flat history event slice one task at a time. Each
// Task call appends the events for one workflow task, including the
// trailing WorkflowTaskStarted that GroupIntoBatches splits batches on, so
// tests can describe a run the way a human reading raw history would: task
// by task, rather than precomputing event ids by hand.
type Builder struct {
	events  []history.Event
	nextID  int64
	clockAt time.Time
}

func NewBuilder(start time.Time) *Builder {
	return &Builder{nextID: 1, clockAt: start}
}

// Task appends one batch's worth of events (whatever evs supplies) followed
// by a WorkflowTaskStarted, advancing the builder's simulated clock by
// advance before stamping the WorkflowTaskStarted's timestamp.
func (b *Builder) Task(advance time.Duration, evs ...history.Event) *Builder {
	for _, e := range evs {
		e.EventID = b.nextID
		b.nextID++
		b.events = append(b.events, e)
	}

	b.clockAt = b.clockAt.Add(advance)
	started := history.NewEvent(b.clockAt, history.EventType_WorkflowTaskStarted, nil, history.EventID(b.nextID))
	b.nextID++
	b.events = append(b.events, started)

	return b
}

func (b *Builder) Events() []history.Event {
	out := make([]history.Event, len(b.events))
	copy(out, b.events)
	return out
}

// LastStartedEventID returns the event id of the most recently appended
// WorkflowTaskStarted, the previousStartedEventId a caller replaying this
// history up to here would pass on the next HandleWorkflowTask call.
func (b *Builder) LastStartedEventID() int64 {
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].Type == history.EventType_WorkflowTaskStarted {
			return b.events[i].EventID
		}
	}
	return 0
}
