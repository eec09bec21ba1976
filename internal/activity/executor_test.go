package activity

import (
	"context"
	"log/slog"
	"testing"

	"github.com/flowdeck/replaycore/internal/converter"
	"github.com/flowdeck/replaycore/internal/core"
	"github.com/flowdeck/replaycore/internal/payload"
	"github.com/flowdeck/replaycore/internal/tracing"
	"github.com/stretchr/testify/require"
)

func TestExecutor_ExecuteActivity(t *testing.T) {
	tests := []struct {
		name     string
		activity string
		fn       interface{}
		result   func(t *testing.T, result payload.Payload, err error)
	}{
		{
			name:     "not a function",
			activity: "unknown",
			fn:       nil,
			result: func(t *testing.T, result payload.Payload, err error) {
				require.Nil(t, result)
				require.Error(t, err)
				require.EqualError(t, err, `activity "unknown": not a function`)
			},
		},
		{
			name:     "mismatched argument count",
			activity: "add",
			fn:       func(context.Context, int, int) error { return nil },
			result: func(t *testing.T, result payload.Payload, err error) {
				require.Nil(t, result)
				require.Error(t, err)
				require.EqualError(t, err, "converting activity inputs: mismatched argument count: expected 2, got 0")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(slog.Default(), tracing.NewTracer(nil))
			got, err := e.Execute(context.Background(), converter.DefaultConverter, tt.fn, tt.activity, "1", 1,
				core.NewWorkflowInstance("instanceID", "executionID"), nil, nil, false)
			tt.result(t, got, err)
		})
	}
}
