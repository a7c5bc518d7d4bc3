// Package toolchaintest provides a scripted toolchain.Runner for tests.
//
// Handlers are registered per tool name. A tool without a handler behaves
// like a binary missing from PATH, which lets tests exercise the
// tool-missing paths of every stage.
package toolchaintest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/wippyai/uringgen/toolchain"
)

// Handler answers one invocation.
type Handler func(ctx context.Context, cmd toolchain.Command) (*toolchain.Output, error)

// Runner records every command and dispatches it to the handler of its tool.
type Runner struct {
	handlers map[string]Handler
	calls    []toolchain.Command
	mu       sync.Mutex
}

// New returns a Runner without handlers.
func New() *Runner {
	return &Runner{handlers: make(map[string]Handler)}
}

// Handle registers h for the tool name.
func (r *Runner) Handle(tool string, h Handler) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[tool] = h
	return r
}

// Run implements toolchain.Runner.
func (r *Runner) Run(ctx context.Context, cmd toolchain.Command) (*toolchain.Output, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	h, ok := r.handlers[cmd.Name]
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &toolchain.ToolError{Command: cmd, ExitCode: -1, Err: err}
	}
	if !ok {
		return Missing()(ctx, cmd)
	}
	return h(ctx, cmd)
}

// Calls returns every recorded command in order.
func (r *Runner) Calls() []toolchain.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]toolchain.Command(nil), r.calls...)
}

// CallsTo returns the recorded commands of one tool.
func (r *Runner) CallsTo(tool string) []toolchain.Command {
	var out []toolchain.Command
	for _, c := range r.Calls() {
		if c.Name == tool {
			out = append(out, c)
		}
	}
	return out
}

// Tools returns the tool name of every recorded command in order.
func (r *Runner) Tools() []string {
	var out []string
	for _, c := range r.Calls() {
		out = append(out, c.Name)
	}
	return out
}

// Succeed answers with the given stdout and exit status zero.
func Succeed(stdout string) Handler {
	return func(context.Context, toolchain.Command) (*toolchain.Output, error) {
		return &toolchain.Output{Stdout: []byte(stdout)}, nil
	}
}

// Fail answers with a nonzero exit status and the given stderr.
func Fail(exitCode int, stderr string) Handler {
	return func(ctx context.Context, cmd toolchain.Command) (*toolchain.Output, error) {
		return nil, &toolchain.ToolError{
			Command:  cmd,
			ExitCode: exitCode,
			Started:  true,
			Stderr:   []byte(stderr),
			Err:      fmt.Errorf("exit status %d", exitCode),
		}
	}
}

// Missing answers like a tool that is not on PATH.
func Missing() Handler {
	return func(ctx context.Context, cmd toolchain.Command) (*toolchain.Output, error) {
		return nil, &toolchain.ToolError{
			Command:  cmd,
			ExitCode: -1,
			Err:      &exec.Error{Name: cmd.Name, Err: exec.ErrNotFound},
		}
	}
}

// Hang answers like a tool that never exits on its own: it closes started,
// if not nil, and blocks until the run is cancelled.
func Hang(started chan<- struct{}) Handler {
	var once sync.Once
	return func(ctx context.Context, cmd toolchain.Command) (*toolchain.Output, error) {
		if started != nil {
			once.Do(func() { close(started) })
		}
		<-ctx.Done()
		return nil, &toolchain.ToolError{Command: cmd, ExitCode: -1, Started: true, Err: ctx.Err()}
	}
}

// Preprocessor answers like `cpp` on a header without includes: a line
// marker followed by the file content. The header is the last argument.
func Preprocessor() Handler {
	return func(ctx context.Context, cmd toolchain.Command) (*toolchain.Output, error) {
		if len(cmd.Args) == 0 {
			return Fail(1, "cpp: no input files\n")(ctx, cmd)
		}
		path := cmd.Args[len(cmd.Args)-1]
		data, err := os.ReadFile(path)
		if err != nil {
			return Fail(1, fmt.Sprintf("cpp: fatal error: %s: No such file or directory\n", path))(ctx, cmd)
		}
		out := fmt.Sprintf("# 1 %q\n%s", path, data)
		return &toolchain.Output{Stdout: []byte(out)}, nil
	}
}

// Compiler answers like `cc -c -o <obj> <src> ...`: it writes an object
// whose content is a digest of the source, so identical inputs produce
// identical objects.
func Compiler() Handler {
	return func(ctx context.Context, cmd toolchain.Command) (*toolchain.Output, error) {
		obj, src := argAfter(cmd.Args, "-o"), ""
		for i, a := range cmd.Args {
			if filepath.Ext(a) == ".c" && (i == 0 || cmd.Args[i-1] != "-include") {
				src = a
			}
		}
		if obj == "" || src == "" {
			return Fail(1, "cc: missing -o or source file\n")(ctx, cmd)
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return Fail(1, fmt.Sprintf("cc: error: no such file or directory: '%s'\n", src))(ctx, cmd)
		}
		sum := sha256.Sum256(data)
		if err := os.WriteFile(obj, append([]byte("\x7fELF"), sum[:]...), 0o644); err != nil {
			return nil, err
		}
		return &toolchain.Output{}, nil
	}
}

// Archiver answers like `ar rcs <archive> <obj>...`.
func Archiver() Handler {
	return func(ctx context.Context, cmd toolchain.Command) (*toolchain.Output, error) {
		if len(cmd.Args) < 3 {
			return Fail(1, "ar: no archive specified\n")(ctx, cmd)
		}
		content := []byte("!<arch>\n")
		for _, member := range cmd.Args[2:] {
			data, err := os.ReadFile(member)
			if err != nil {
				return Fail(1, fmt.Sprintf("ar: %s: No such file or directory\n", member))(ctx, cmd)
			}
			content = append(content, filepath.Base(member)+"/\n"...)
			content = append(content, data...)
		}
		if err := os.WriteFile(cmd.Args[1], content, 0o644); err != nil {
			return nil, err
		}
		return &toolchain.Output{}, nil
	}
}

// PkgConfig answers like pkg-config with the library installed under
// prefix, or like a missing package when installed is false.
func PkgConfig(name, version, prefix string, installed bool) Handler {
	return func(ctx context.Context, cmd toolchain.Command) (*toolchain.Output, error) {
		if !installed || len(cmd.Args) == 0 || cmd.Args[len(cmd.Args)-1] != name {
			return Fail(1, fmt.Sprintf("Package %s was not found in the pkg-config search path.\n", name))(ctx, cmd)
		}
		switch cmd.Args[0] {
		case "--exists":
			return &toolchain.Output{}, nil
		case "--modversion":
			return &toolchain.Output{Stdout: []byte(version + "\n")}, nil
		case "--libs-only-L":
			return &toolchain.Output{Stdout: []byte("-L" + prefix + "/lib\n")}, nil
		case "--cflags-only-I":
			return &toolchain.Output{Stdout: []byte("-I" + prefix + "/include\n")}, nil
		}
		return Fail(1, "pkg-config: unknown option "+cmd.Args[0]+"\n")(ctx, cmd)
	}
}

func argAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
