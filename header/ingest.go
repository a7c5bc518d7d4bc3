package header

import (
	"context"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/uringgen/config"
	builderr "github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/toolchain"
)

// Ingestor preprocesses and parses the configured header.
type Ingestor struct {
	cfg         *config.Config
	runner      toolchain.Runner
	includeDirs []string
}

// NewIngestor creates an Ingestor. includeDirs are searched after the
// source root, typically the include directories reported by pkg-config.
func NewIngestor(cfg *config.Config, runner toolchain.Runner, includeDirs []string) *Ingestor {
	return &Ingestor{cfg: cfg, runner: runner, includeDirs: includeDirs}
}

// Ingest produces the Description of the header at path. Any preprocessor
// diagnostic, unresolved include or syntax error fails the whole ingestion.
func (ing *Ingestor) Ingest(ctx context.Context, path string) (*Description, error) {
	allow, err := ing.allowList()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, builderr.New(builderr.PhaseParse, builderr.KindIO).
			Detail("read header %s", path).
			Cause(err).
			Build()
	}

	cmd := toolchain.Command{
		Name: ing.cfg.Preprocessor,
		Args: ing.preprocessorArgs(path),
		Dir:  ing.cfg.SourceRoot,
	}
	Logger().Debug("preprocessing header", zap.String("header", path), zap.Stringer("command", cmd))

	out, err := ing.runner.Run(ctx, cmd)
	if err != nil {
		return nil, toolchain.Classify(builderr.PhaseParse, err, "preprocess "+path)
	}
	return Parse(path, string(out.Stdout), allow)
}

func (ing *Ingestor) allowList() (*regexp.Regexp, error) {
	if ing.cfg.AllowFunctions == "" {
		return nil, nil
	}
	re, err := regexp.Compile(ing.cfg.AllowFunctions)
	if err != nil {
		return nil, builderr.New(builderr.PhaseConfig, builderr.KindInvalidInput).
			Detail("ALLOW_FUNCTIONS is not a valid regular expression").
			Cause(err).
			Build()
	}
	return re, nil
}

func (ing *Ingestor) preprocessorArgs(path string) []string {
	args := []string{"-I" + ing.cfg.SourceRoot}
	for _, dir := range ing.includeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, preprocessorFlags(ing.cfg.CFlags)...)
	return append(args, path)
}

// preprocessorFlags keeps the compiler flags that change how the header
// expands.
func preprocessorFlags(cflags []string) []string {
	var out []string
	for i := 0; i < len(cflags); i++ {
		f := cflags[i]
		switch {
		case f == "-D" || f == "-U" || f == "-I" || f == "-include":
			if i+1 < len(cflags) {
				out = append(out, f, cflags[i+1])
				i++
			}
		case strings.HasPrefix(f, "-D"), strings.HasPrefix(f, "-U"),
			strings.HasPrefix(f, "-I"), strings.HasPrefix(f, "-std="):
			out = append(out, f)
		}
	}
	return out
}
