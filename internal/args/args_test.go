package args

import (
	"context"
	"reflect"
	"testing"

	"github.com/flowdeck/replaycore/internal/converter"
	"github.com/flowdeck/replaycore/internal/payload"
	"github.com/stretchr/testify/require"
)

func TestInputsToArgs(t *testing.T) {
	type args struct {
		fn     interface{}
		inputs []interface{}
	}
	tests := []struct {
		name       string
		args       args
		addContext bool
		wantErr    bool
		err        string
	}{
		{
			name: "just context",
			args: args{
				fn:     func(context.Context) error { return nil },
				inputs: []interface{}{},
			},
			addContext: true,
		},
		{
			name: "arguments with context",
			args: args{
				fn:     func(context.Context, int, string) error { return nil },
				inputs: []interface{}{42, ""},
			},
			addContext: true,
		},
		{
			name: "no context",
			args: args{
				fn:     func(int, string) error { return nil },
				inputs: []interface{}{42, "foo"},
			},
		},
		{
			name: "mismatched argument count - too many",
			args: args{
				fn:     func(int, string) error { return nil },
				inputs: []interface{}{42, "", 13},
			},
			wantErr: true,
			err:     "mismatched argument count: expected 2, got 3",
		},
		{
			name: "mismatched argument count - too few",
			args: args{
				fn:     func(int, string) error { return nil },
				inputs: []interface{}{42},
			},
			wantErr: true,
			err:     "mismatched argument count: expected 2, got 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := make([]payload.Payload, 0)
			for _, input := range tt.args.inputs {
				p, err := converter.DefaultConverter.To(input)
				require.NoError(t, err)

				inputs = append(inputs, p)
			}

			_, addContext, err := InputsToArgs(converter.DefaultConverter, reflect.ValueOf(tt.args.fn), inputs)
			if tt.wantErr {
				require.Error(t, err)
				require.Equal(t, tt.err, err.Error())
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.addContext, addContext)
		})
	}
}
