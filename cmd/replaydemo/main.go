// Command replaydemo drives replaycore.Executor over a small canned history
// once, with a real OpenTelemetry span pipeline attached, so the exporter
// wiring named in the domain stack has somewhere to run outside of tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/flowdeck/replaycore"
	"github.com/flowdeck/replaycore/internal/core"
	"github.com/flowdeck/replaycore/internal/history"
	"github.com/flowdeck/replaycore/internal/payload"
)

var exporterFlag = flag.String("exporter", "stdout", "Span exporter to use. Supported exporters are:\n- stdout\n- otlp\n")
var otlpEndpoint = flag.String("otlp-endpoint", "localhost:4318", "OTLP/HTTP collector endpoint, used when -exporter=otlp")

func main() {
	flag.Parse()

	ctx := context.Background()

	exporter, shutdown, err := newSpanExporter(ctx, *exporterFlag, *otlpEndpoint)
	if err != nil {
		log.Fatalf("replaydemo: %v", err)
	}
	defer shutdown(ctx)

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("replaydemo: tracer provider shutdown: %v", err)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	newProgram := func(*core.WorkflowInstance) replaycore.Program { return &demoProgram{} }

	ex := replaycore.New(nil, newProgram, replaycore.DefaultConfig(), tp.Tracer("replaydemo"), nil, logger, nil)

	instance := core.NewWorkflowInstance("replaydemo-1", "execution-1")

	now := time.Now()
	events := []history.Event{
		history.NewEvent(now, history.EventType_WorkflowExecutionStarted, history.ExecutionStartedAttributes{Name: "DemoWorkflow"}, history.EventID(1)),
		history.NewEvent(now.Add(time.Second), history.EventType_WorkflowTaskStarted, nil, history.EventID(2)),
	}

	firstPage := history.Page{Events: events, HasMore: false}

	result, err := ex.HandleWorkflowTask(ctx, instance, firstPage, 0, nil)
	if err != nil {
		log.Fatalf("replaydemo: workflow task failed: %v", err)
	}

	for _, cmd := range result.Commands {
		fmt.Printf("command: %T %+v\n", cmd.Attributes, cmd.Attributes)
	}
}

// demoProgram is the smallest possible replaycore.Program: it completes on
// the first event loop pass, purely so this binary has a workflow task to
// run and a span to export.
type demoProgram struct{}

func (demoProgram) Start(ctx context.Context, startedEvent history.Event, input []payload.Payload) error {
	return nil
}

func (demoProgram) EventLoop(ctx context.Context) (bool, error)                  { return true, nil }
func (demoProgram) HandleSignal(name string, arg payload.Payload, eventID int64) {}
func (demoProgram) Cancel(cause error)                                          {}
func (demoProgram) NextWakeUpTime() int64                                        { return 0 }
func (demoProgram) Query(q replaycore.Query) (payload.Payload, error)            { return nil, nil }
func (demoProgram) Output() (payload.Payload, error) {
	return payload.Payload("demo run complete"), nil
}
func (demoProgram) MapUnexpectedPanic(recovered any) error { return fmt.Errorf("panic: %v", recovered) }
func (demoProgram) MapError(err error) error               { return err }
func (demoProgram) ImplementationOptions() replaycore.ProgramOptions {
	return replaycore.ProgramOptions{}
}
func (demoProgram) Close() {}

func (demoProgram) PendingCommands() []replaycore.CommandRequest           { return nil }
func (demoProgram) PendingCancellations() []replaycore.CommandCancellation { return nil }

func newSpanExporter(ctx context.Context, kind, otlpEndpoint string) (sdktrace.SpanExporter, func(context.Context), error) {
	switch kind {
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("building stdout exporter: %w", err)
		}
		return exp, func(context.Context) {}, nil

	case "otlp":
		client := otlptracehttp.NewClient(otlptracehttp.WithEndpoint(otlpEndpoint), otlptracehttp.WithInsecure())
		exp, err := otlptrace.New(ctx, client)
		if err != nil {
			return nil, nil, fmt.Errorf("building otlp exporter: %w", err)
		}
		return exp, func(shutdownCtx context.Context) { _ = exp.Shutdown(shutdownCtx) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown exporter %q", kind)
	}
}
