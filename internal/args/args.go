package args

import (
	"context"
	"fmt"
	"reflect"

	"github.com/flowdeck/replaycore/internal/converter"
	"github.com/flowdeck/replaycore/internal/payload"
)

// ArgsToInputs converts a variadic argument list into the Payload slice a
// ScheduleActivity/ScheduleChildWorkflow command stores.
func ArgsToInputs(c converter.Converter, args ...interface{}) ([]payload.Payload, error) {
	inputs := make([]payload.Payload, 0, len(args))

	for _, arg := range args {
		input, err := c.To(arg)
		if err != nil {
			return nil, fmt.Errorf("converting args to inputs: %w", err)
		}
		inputs = append(inputs, input)
	}

	return inputs, nil
}

// InputsToArgs builds the reflect.Value argument list for invoking fn, which
// may optionally declare a context.Context as its first parameter.
func InputsToArgs(c converter.Converter, fn reflect.Value, inputs []payload.Payload) ([]reflect.Value, bool, error) {
	addContext := false

	fnT := fn.Type()

	numArgs := fnT.NumIn()
	out := make([]reflect.Value, numArgs)

	input := 0
	for i := 0; i < numArgs; i++ {
		argT := fnT.In(i)

		if i == 0 && isContext(argT) {
			addContext = true
			continue
		}

		arg := reflect.New(argT).Interface()
		if input >= len(inputs) {
			expected := numArgs
			if addContext {
				expected--
			}
			return nil, false, fmt.Errorf("mismatched argument count: expected %d, got %d", expected, len(inputs))
		}

		if err := c.From(inputs[input], arg); err != nil {
			return nil, false, fmt.Errorf("converting inputs: %w", err)
		}

		out[i] = reflect.ValueOf(arg).Elem()
		input++
	}

	if input < len(inputs) {
		expected := numArgs
		if addContext {
			expected--
		}
		return nil, false, fmt.Errorf("mismatched argument count: expected %d, got %d", expected, len(inputs))
	}

	return out, addContext, nil
}

func isContext(inType reflect.Type) bool {
	contextElem := reflect.TypeOf((*context.Context)(nil)).Elem()
	return inType != nil && inType.Implements(contextElem)
}
