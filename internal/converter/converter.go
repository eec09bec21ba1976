package converter

import (
	"context"
	"errors"
	"reflect"

	"github.com/flowdeck/replaycore/internal/payload"
)

// Converter turns Go values into Payloads and back. The executor depends
// only on this interface; the concrete codec (JSON here, protobuf or
// anything else in a real deployment) is swappable.
type Converter interface {
	To(v interface{}) (payload.Payload, error)
	From(data payload.Payload, v interface{}) error
}

var DefaultConverter Converter = &jsonConverter{}

// AssignValue copies v into vptr, going through c only when v isn't already
// a Payload destined for a Payload-typed target.
func AssignValue(c Converter, v interface{}, vptr interface{}) error {
	vvptr := reflect.ValueOf(vptr)

	if vvptr.Kind() != reflect.Ptr {
		return errors.New("vptr needs to be a pointer")
	}

	if v == nil {
		vvptr.Elem().Set(reflect.Zero(vvptr.Elem().Type()))
		return nil
	}

	if vp, ok := v.(payload.Payload); ok {
		if vp.IsEmpty() {
			vvptr.Elem().Set(reflect.Zero(vvptr.Elem().Type()))
			return nil
		}

		if plptr, ok := vptr.(*payload.Payload); ok {
			*plptr = vp
			return nil
		}

		return c.From(vp, vptr)
	}

	vvptr.Elem().Set(reflect.ValueOf(v))
	return nil
}

type converterKey struct{}

func WithConverter(ctx context.Context, converter Converter) context.Context {
	return context.WithValue(ctx, converterKey{}, converter)
}

func GetConverter(ctx context.Context) Converter {
	if c, ok := ctx.Value(converterKey{}).(Converter); ok {
		return c
	}
	return DefaultConverter
}
