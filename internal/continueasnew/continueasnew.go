// Package continueasnew defines the sentinel error a workflow program
// returns from Output() to signal that it wants to restart as a fresh
// execution with new input, carrying forward its instance id but not its
// history.
package continueasnew

import (
	"github.com/flowdeck/replaycore/internal/core"
	"github.com/flowdeck/replaycore/internal/payload"
)

type Error struct {
	Metadata core.WorkflowMetadata
	Inputs   []payload.Payload
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	return "ContinueAsNew"
}

func NewError(metadata core.WorkflowMetadata, inputs []payload.Payload) error {
	return &Error{
		Metadata: metadata,
		Inputs:   inputs,
	}
}

// As reports whether err is a continue-as-new request, unwrapping it if so.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
