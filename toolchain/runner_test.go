package toolchain

import (
	"context"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	builderr "github.com/wippyai/uringgen/errors"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_Success(t *testing.T) {
	requireShell(t)

	out, err := NewExecRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "printf out; printf err >&2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "out", string(out.Stdout))
	assert.Equal(t, "err", string(out.Stderr))
}

func TestExecRunner_NonzeroExit(t *testing.T) {
	requireShell(t)

	_, err := NewExecRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo 'fatal error: liburing.h: No such file' >&2; exit 3"},
	})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.True(t, toolErr.Started)
	assert.False(t, toolErr.NotFound())
	assert.Equal(t, 3, toolErr.ExitCode)
	assert.Equal(t, "fatal error: liburing.h: No such file\n", string(toolErr.Stderr))
	assert.Contains(t, toolErr.Error(), "exit status 3")
}

func TestExecRunner_NotFound(t *testing.T) {
	_, err := NewExecRunner().Run(context.Background(), Command{Name: "uringgen-no-such-tool"})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.True(t, toolErr.NotFound())
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestExecRunner_Cancelled(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewExecRunner().Run(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 5"}})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.True(t, toolErr.Canceled())
	assert.False(t, toolErr.NotFound(), "a cancelled start is not a missing tool")

	classified := Classify(builderr.PhaseCompile, err, "compile wrappers")
	assert.ErrorIs(t, classified, &builderr.Error{Phase: builderr.PhaseCompile, Kind: builderr.KindCanceled})
	assert.NotContains(t, classified.Error(), "not found")
	assert.ErrorIs(t, classified, context.Canceled)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind builderr.Kind
	}{
		{
			name: "missing tool",
			err:  &ToolError{Command: Command{Name: "clang"}, ExitCode: -1, Err: exec.ErrNotFound},
			kind: builderr.KindToolMissing,
		},
		{
			name: "failed tool",
			err:  &ToolError{Command: Command{Name: "clang"}, ExitCode: 1, Started: true, Stderr: []byte("error: x")},
			kind: builderr.KindToolFailed,
		},
		{
			name: "cancelled before start",
			err:  &ToolError{Command: Command{Name: "clang"}, ExitCode: -1, Err: context.Canceled},
			kind: builderr.KindCanceled,
		},
		{
			name: "deadline while running",
			err:  &ToolError{Command: Command{Name: "clang"}, ExitCode: -1, Started: true, Err: context.DeadlineExceeded},
			kind: builderr.KindCanceled,
		},
		{
			name: "foreign error",
			err:  assert.AnError,
			kind: builderr.KindToolFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(builderr.PhaseCompile, tt.err, "could not compile object file")
			require.Error(t, err)
			assert.ErrorIs(t, err, &builderr.Error{Phase: builderr.PhaseCompile, Kind: tt.kind})
		})
	}

	assert.NoError(t, Classify(builderr.PhaseCompile, nil, ""))

	err := Classify(builderr.PhaseArchive, &ToolError{
		Command:  Command{Name: "ar"},
		ExitCode: 1,
		Started:  true,
		Stderr:   []byte("ar: bad archive\n"),
	}, "could not emit library file")
	assert.Contains(t, err.Error(), "ar: bad archive\n")
	assert.Contains(t, err.Error(), "[archive]")
}
