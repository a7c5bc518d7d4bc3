package toolchain

import (
	"errors"

	builderr "github.com/wippyai/uringgen/errors"
)

// Classify converts a Runner error into a structured build error for phase.
// A cancelled run becomes KindCanceled whether or not the tool started. A
// tool that could not be started becomes KindToolMissing; a tool that ran
// and failed becomes KindToolFailed carrying its stderr verbatim.
func Classify(phase builderr.Phase, err error, detail string) error {
	if err == nil {
		return nil
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		return builderr.Wrap(phase, builderr.KindToolFailed, err, detail)
	}
	if toolErr.Canceled() {
		return builderr.New(phase, builderr.KindCanceled).
			Tool(toolErr.Command.Name).
			Detail("%s: %v", detail, toolErr.Err).
			Cause(toolErr.Err).
			Build()
	}
	if toolErr.NotFound() {
		return builderr.ToolMissing(phase, toolErr.Command.Name, toolErr.Err)
	}
	e := builderr.ToolFailed(phase, toolErr.Command.Name, toolErr.ExitCode, toolErr.Stderr, detail)
	if toolErr.ExitCode < 0 {
		e.Cause = toolErr.Err
	}
	return e
}
