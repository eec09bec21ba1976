package executor

import (
	"github.com/flowdeck/replaycore/internal/command"
	"github.com/flowdeck/replaycore/internal/continueasnew"
	"github.com/flowdeck/replaycore/internal/workflowerrors"
)

// emitCompletionCommand is called once the program's event loop has reported
// the run finished. It asks the program for its final output, classifies the
// outcome, and appends the one terminal command the caller needs to send. It
// reports whether the run's history actually ends here: a continue-as-new
// request also finishes this execution, so it counts as final too.
func (e *Executor) emitCompletionCommand() bool {
	result, err := e.program.Output()

	if can, ok := continueasnew.As(err); ok {
		e.bk.AppendTerminal(command.NewCompletionCommand(command.ContinueAsNewAttributes{
			Inputs: can.Inputs,
			Result: result,
		}))
		return true
	}

	if err != nil {
		if workflowerrors.IsCanceled(err) && e.cancelRequested {
			e.bk.AppendTerminal(command.NewCompletionCommand(command.CancelWorkflowAttributes{
				Details: err.Error(),
			}))
			return true
		}

		e.bk.AppendTerminal(command.NewCompletionCommand(command.FailWorkflowAttributes{
			Error: formatWorkflowError(err),
		}))
		return true
	}

	e.bk.AppendTerminal(command.NewCompletionCommand(command.CompleteWorkflowAttributes{
		Result: result,
	}))
	return true
}

// formatWorkflowError renders a workflow-authored error for
// FailWorkflowAttributes. An unrequested cancellation (Program.Output
// returned a canceled error the executor never asked for) still lands here,
// per spec §7: only a *requested* cancellation completes as a distinct
// cancel-workflow command.
func formatWorkflowError(err error) string {
	if workflowerrors.IsCanceled(err) {
		return err.Error()
	}
	return workflowerrors.FromError(err).Message
}
