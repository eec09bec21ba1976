// Package tracing instruments workflow tasks and commands with OpenTelemetry
// spans. A workflow task is replayed many times over its lifetime but must
// only be exported once: Span.End is a no-op while the executor is
// replaying, mirroring the once-live-then-forever-replayed shape of a
// workflow task itself.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	WorkflowInstanceID = "workflow.instance_id"
	WorkflowName       = "workflow.name"

	WorkflowTaskID     = "workflow_task.id"
	WorkflowTaskEvents = "workflow_task.events"

	ActivityTaskID = "activity_task.id"

	ScheduleEventID = "schedule_event_id"
)

// Tracer wraps an otel tracer with the replay-suppression behavior the
// executor needs: spans opened on a replay batch are never ended, so they
// are never exported; spans opened on the live batch are ended and exported
// normally.
type Tracer struct {
	tracer trace.Tracer
}

func NewTracer(tracer trace.Tracer) *Tracer {
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("replaycore")
	}
	return &Tracer{tracer: tracer}
}

// Start begins a span. replaying must reflect the executor's current batch
// flag at call time; it is latched into the returned Span so that End()
// makes the correct decision regardless of whether the flag changes later in
// the task.
func (t *Tracer) Start(ctx context.Context, replaying bool, name string, opts ...trace.SpanStartOption) (context.Context, *Span) {
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, &Span{span: span, replaying: replaying}
}

// Span is a thin wrapper that remembers whether it was opened during replay.
type Span struct {
	span      trace.Span
	replaying bool
}

// End closes the span, unless it was opened while replaying, in which case
// the span was already reported live in an earlier pass over this history
// and a second export would be a duplicate.
func (s *Span) End() {
	if s == nil || s.span == nil {
		return
	}
	if !s.replaying {
		s.span.End()
	}
}

func (s *Span) RecordError(err error) {
	if s == nil || s.span == nil || err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *Span) Raw() trace.Span {
	if s == nil {
		return nil
	}
	return s.span
}

// WithSpanError marks span as failed and returns err unchanged, so call
// sites can wrap an error-returning expression inline.
func WithSpanError(span trace.Span, err error) error {
	if err != nil && span != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Context is a propagation carrier: the trace context of the span active
// when a command was committed, serialized so it can ride along inside a
// history event (e.g. a TimerFired or ActivityScheduled attribute) and be
// restored as the parent of the span opened when that event is dispatched
// live, even though dispatch may happen in a different process or much
// later in time.
type Context map[string]string

func (c Context) Get(key string) string       { return c[key] }
func (c Context) Set(key, value string)        { c[key] = value }
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

var propagator propagation.TraceContext

// InjectSpanContext serializes the span active in ctx into a Context
// carrier suitable for storing on a command's attributes.
func InjectSpanContext(ctx context.Context) Context {
	carrier := make(Context)
	propagator.Inject(ctx, carrier)
	return carrier
}

// ExtractSpanContext restores a previously injected carrier onto ctx so a
// new span can be started as its child.
func ExtractSpanContext(ctx context.Context, tc Context) context.Context {
	return propagator.Extract(ctx, tc)
}

var _ propagation.TextMapCarrier = Context{}
