// Package pipeline runs the generator stages in order: probe, ingest,
// externalize, compile, archive and emit. Each stage consumes the artifact
// of the previous one and the first failure aborts the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/uringgen/config"
	builderr "github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/externalize"
	"github.com/wippyai/uringgen/header"
	"github.com/wippyai/uringgen/link"
	"github.com/wippyai/uringgen/native"
	"github.com/wippyai/uringgen/probe"
	"github.com/wippyai/uringgen/toolchain"
)

// Result holds every artifact of a successful run.
type Result struct {
	Library      *probe.Library
	Description  *header.Description
	Source       *externalize.Source
	Object       *native.Object
	Archive      *native.Archive
	Directives   *link.Set
	Declarations *link.File
	Glue         *link.File
	Depfile      *link.File
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunner replaces the process runner, typically with a scripted one.
func WithRunner(r toolchain.Runner) Option {
	return func(p *Pipeline) {
		p.runner = r
	}
}

// WithObserver registers a callback for stage events.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithStdout sets where the directives are written. Default os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) {
		p.stdout = w
	}
}

// Pipeline is one configured generator run.
type Pipeline struct {
	cfg      *config.Config
	runner   toolchain.Runner
	observer Observer
	stdout   io.Writer
}

func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		runner:   toolchain.NewExecRunner(),
		observer: func(Event) {},
		stdout:   os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run validates the configuration, removes the artifacts of any previous
// run and regenerates all of them.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.clean(); err != nil {
		return nil, err
	}

	res := &Result{}
	start := time.Now()
	Logger().Info("generating bindings",
		zap.String("header", p.cfg.HeaderPath()),
		zap.String("out_dir", p.cfg.OutDir))

	var includeDirs []string
	if p.cfg.SkipProbe {
		p.observer(Event{Stage: StageProbe, State: StateSkipped})
	} else {
		err := p.stage(StageProbe, func() (string, error) {
			lib, err := probe.New(p.cfg.PkgConfig, p.runner).Probe(ctx, p.cfg.PkgConfigName)
			if err != nil {
				return "", err
			}
			res.Library = lib
			includeDirs = lib.IncludeDirs
			return fmt.Sprintf("%s %s", lib.Name, lib.Version), nil
		})
		if err != nil {
			return nil, err
		}
	}

	err := p.stage(StageIngest, func() (string, error) {
		desc, err := header.NewIngestor(p.cfg, p.runner, includeDirs).Ingest(ctx, p.cfg.HeaderPath())
		if err != nil {
			return "", err
		}
		res.Description = desc
		return fmt.Sprintf("%d functions, %d inline-only", desc.Len(), len(desc.InlineOnly())), nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(StageExternalize, func() (string, error) {
		src, err := externalize.New(p.cfg.WrapperSuffix).Externalize(res.Description, p.cfg.WrapperSourcePath())
		if err != nil {
			return "", err
		}
		if err := src.Write(); err != nil {
			return "", err
		}
		res.Source = src
		return fmt.Sprintf("%d wrappers", len(src.Wrappers)), nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(StageCompile, func() (string, error) {
		obj, err := native.NewCompiler(p.cfg, p.runner, includeDirs).Compile(ctx, res.Source)
		if err != nil {
			return "", err
		}
		res.Object = obj
		return obj.Path, nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(StageArchive, func() (string, error) {
		lib, err := native.NewArchiver(p.cfg, p.runner).Archive(ctx, res.Object)
		if err != nil {
			return "", err
		}
		res.Archive = lib
		return lib.Path, nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(StageEmit, func() (string, error) {
		return p.emit(res)
	})
	if err != nil {
		return nil, err
	}

	Logger().Info("bindings generated",
		zap.Int("functions", res.Description.Len()),
		zap.Int("wrappers", len(res.Source.Wrappers)),
		zap.String("archive", res.Archive.Path),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (p *Pipeline) emit(res *Result) (string, error) {
	e := link.NewEmitter(p.cfg, res.Library)
	res.Directives = e.Directives(res.Archive, res.Description)
	res.Declarations = e.Declarations(res.Description, res.Source)
	res.Glue = e.Glue(res.Directives)
	res.Depfile = e.Depfile(res.Description)

	for _, f := range []*link.File{res.Declarations, res.Glue, res.Depfile} {
		if f == nil {
			continue
		}
		if err := f.Write(); err != nil {
			return "", err
		}
	}
	if _, err := res.Directives.WriteTo(p.stdout); err != nil {
		return "", builderr.Wrap(builderr.PhaseEmit, builderr.KindIO, err, "write directives")
	}
	return fmt.Sprintf("%d directives", len(res.Directives.Directives)), nil
}

func (p *Pipeline) stage(s Stage, fn func() (string, error)) error {
	p.observer(Event{Stage: s, State: StateStarted})
	Logger().Debug("stage started", zap.Stringer("stage", s))

	start := time.Now()
	summary, err := fn()
	ev := Event{Stage: s, State: StateFinished, Summary: summary, Elapsed: time.Since(start)}
	if err != nil {
		ev.State, ev.Err = StateFailed, err
		Logger().Debug("stage failed", zap.Stringer("stage", s), zap.Error(err))
	} else {
		Logger().Debug("stage finished",
			zap.Stringer("stage", s),
			zap.String("summary", summary),
			zap.Duration("elapsed", ev.Elapsed))
	}
	p.observer(ev)
	return err
}

// clean removes every artifact a previous run may have left behind.
func (p *Pipeline) clean() error {
	paths := []string{
		p.cfg.WrapperSourcePath(),
		p.cfg.ObjectPath(),
		p.cfg.ArchivePath(),
		p.cfg.DeclarationsPath(),
		p.cfg.DepfilePath(),
	}
	if glue := p.cfg.GluePath(); glue != "" {
		paths = append(paths, glue)
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return builderr.Wrap(builderr.PhaseConfig, builderr.KindIO, err, "remove stale artifact "+path)
		}
	}
	if err := os.MkdirAll(p.cfg.OutDir, 0o755); err != nil {
		return builderr.Wrap(builderr.PhaseConfig, builderr.KindIO, err, "create output directory")
	}
	return nil
}
