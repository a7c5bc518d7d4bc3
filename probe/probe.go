// Package probe checks that the native library is installed before any
// artifact is built, using pkg-config.
package probe

import (
	"context"
	"errors"
	"strings"

	builderr "github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/toolchain"
)

// pkg-config exits with this status when a package is not found
const exitNotFound = 1

// Library is what pkg-config reports about an installed library.
type Library struct {
	Name        string
	Version     string
	LibDirs     []string
	IncludeDirs []string
}

// Prober queries pkg-config.
type Prober struct {
	tool   string
	runner toolchain.Runner
}

// New returns a Prober running the pkg-config binary tool.
func New(tool string, runner toolchain.Runner) *Prober {
	return &Prober{tool: tool, runner: runner}
}

// Probe locates the package name. A package pkg-config does not know is
// KindLibraryMissing; a pkg-config that cannot be run is KindToolMissing.
func (p *Prober) Probe(ctx context.Context, name string) (*Library, error) {
	if _, err := p.run(ctx, "--exists", "--print-errors", name); err != nil {
		var toolErr *toolchain.ToolError
		if errors.As(err, &toolErr) && toolErr.Started && toolErr.ExitCode == exitNotFound {
			return nil, builderr.LibraryMissing(name, toolErr.Stderr)
		}
		return nil, toolchain.Classify(builderr.PhaseProbe, err, "query "+name)
	}

	lib := &Library{Name: name}
	version, err := p.run(ctx, "--modversion", name)
	if err != nil {
		return nil, toolchain.Classify(builderr.PhaseProbe, err, "query version of "+name)
	}
	lib.Version = strings.TrimSpace(version)

	libs, err := p.run(ctx, "--libs-only-L", name)
	if err != nil {
		return nil, toolchain.Classify(builderr.PhaseProbe, err, "query library directories of "+name)
	}
	lib.LibDirs = flagValues(libs, "-L")

	cflags, err := p.run(ctx, "--cflags-only-I", name)
	if err != nil {
		return nil, toolchain.Classify(builderr.PhaseProbe, err, "query include directories of "+name)
	}
	lib.IncludeDirs = flagValues(cflags, "-I")
	return lib, nil
}

func (p *Prober) run(ctx context.Context, args ...string) (string, error) {
	out, err := p.runner.Run(ctx, toolchain.Command{Name: p.tool, Args: args})
	if err != nil {
		return "", err
	}
	return string(out.Stdout), nil
}

// flagValues extracts the values of one flag from pkg-config output.
func flagValues(out, flag string) []string {
	var values []string
	for _, f := range strings.Fields(out) {
		if v, ok := strings.CutPrefix(f, flag); ok && v != "" {
			values = append(values, v)
		}
	}
	return values
}
