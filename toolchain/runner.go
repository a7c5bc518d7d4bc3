package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Command describes one tool invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// String renders the command line for logs and diagnostics.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Output is the captured result of a successful invocation.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// Runner runs a command to completion.
//
// Run returns the captured output when the tool exits with status zero and a
// *ToolError for every other outcome.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Output, error)
}

// ToolError describes a failed invocation.
type ToolError struct {
	Err     error
	Command Command
	Stderr  []byte
	// ExitCode is -1 when the process did not exit normally.
	ExitCode int
	// Started is false when the tool could not be located or started.
	Started bool
}

func (e *ToolError) Error() string {
	if !e.Started || e.ExitCode < 0 {
		return fmt.Sprintf("%s: %v", e.Command.Name, e.Err)
	}
	return fmt.Sprintf("%s: exit status %d", e.Command.Name, e.ExitCode)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the tool could not be located or started.
func (e *ToolError) NotFound() bool {
	return !e.Started && !e.Canceled()
}

// Canceled reports whether the run was stopped by its context.
func (e *ToolError) Canceled() bool {
	return errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded)
}

// ExecRunner runs commands as child processes of the current process.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts the command, waits for it and inspects its exit status.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Output, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Env != nil {
		cmd.Env = c.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	Logger().Debug("run tool", zap.String("tool", c.Name), zap.Strings("args", c.Args), zap.String("dir", c.Dir))

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		Logger().Debug("tool not started", zap.String("tool", c.Name), zap.Error(err))
		return nil, &ToolError{Command: c, ExitCode: -1, Err: err}
	}

	err := cmd.Wait()
	if err == nil {
		Logger().Debug("tool finished",
			zap.String("tool", c.Name),
			zap.Duration("elapsed", time.Since(start)))
		return &Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
	}

	toolErr := &ToolError{Command: c, Stderr: stderr.Bytes(), ExitCode: -1, Started: true, Err: err}
	var exitErr *exec.ExitError
	if ctx.Err() != nil {
		toolErr.Err = ctx.Err()
	} else if errors.As(err, &exitErr) {
		toolErr.ExitCode = exitErr.ExitCode()
	}
	Logger().Debug("tool failed",
		zap.String("tool", c.Name),
		zap.Int("exit_code", toolErr.ExitCode),
		zap.Error(err))
	return nil, toolErr
}
