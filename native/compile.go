package native

import (
	"context"
	"os"
	"path/filepath"

	"github.com/wippyai/uringgen/config"
	builderr "github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/externalize"
	"github.com/wippyai/uringgen/toolchain"
)

// Object is the compiled wrapper object.
type Object struct {
	Path    string
	Source  string
	Command toolchain.Command
}

// Compiler turns the wrapper source into an object file.
type Compiler struct {
	cfg         *config.Config
	runner      toolchain.Runner
	includeDirs []string
}

func NewCompiler(cfg *config.Config, runner toolchain.Runner, includeDirs []string) *Compiler {
	return &Compiler{cfg: cfg, runner: runner, includeDirs: includeDirs}
}

// Command returns the compiler invocation for src. The header is force
// included so the inline definitions are visible to every wrapper body.
func (c *Compiler) Command(src *externalize.Source) toolchain.Command {
	args := []string{"-O", "-c", "-o", c.cfg.ObjectPath(), src.Path, "-I" + c.cfg.SourceRoot}
	for _, dir := range c.includeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, "-include", c.cfg.HeaderPath())
	args = append(args, c.cfg.CFlags...)
	return toolchain.Command{Name: c.cfg.Compiler, Args: args, Dir: c.cfg.OutDir}
}

// Compile runs the compiler and checks that it produced the object.
func (c *Compiler) Compile(ctx context.Context, src *externalize.Source) (*Object, error) {
	obj := c.cfg.ObjectPath()
	if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
		return nil, builderr.Wrap(builderr.PhaseCompile, builderr.KindIO, err, "create output directory")
	}

	cmd := c.Command(src)
	if _, err := c.runner.Run(ctx, cmd); err != nil {
		return nil, toolchain.Classify(builderr.PhaseCompile, err, "compile "+src.Path)
	}
	if _, err := os.Stat(obj); err != nil {
		return nil, builderr.New(builderr.PhaseCompile, builderr.KindToolFailed).
			Tool(cmd.Name).
			Detail("compiler exited successfully but produced no object %s", obj).
			Cause(err).
			Build()
	}
	return &Object{Path: obj, Source: src.Path, Command: cmd}, nil
}
