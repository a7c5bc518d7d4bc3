package native

import (
	"context"
	"os"

	"github.com/wippyai/uringgen/config"
	builderr "github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/toolchain"
)

// Archive is the static library holding the wrapper object.
type Archive struct {
	Path    string
	Name    string
	Members []string
	Command toolchain.Command
}

// Archiver packs objects into the configured static archive.
type Archiver struct {
	cfg    *config.Config
	runner toolchain.Runner
}

func NewArchiver(cfg *config.Config, runner toolchain.Runner) *Archiver {
	return &Archiver{cfg: cfg, runner: runner}
}

// Archive runs `ar <flags> lib<name>.a <objects>`.
func (a *Archiver) Archive(ctx context.Context, objs ...*Object) (*Archive, error) {
	if len(objs) == 0 {
		return nil, builderr.New(builderr.PhaseArchive, builderr.KindInvalidInput).
			Detail("no objects to archive").
			Build()
	}

	path := a.cfg.ArchivePath()
	args := []string{a.cfg.ArFlags, path}
	members := make([]string, 0, len(objs))
	for _, o := range objs {
		members = append(members, o.Path)
	}
	args = append(args, members...)
	cmd := toolchain.Command{Name: a.cfg.Archiver, Args: args, Dir: a.cfg.OutDir}

	if _, err := a.runner.Run(ctx, cmd); err != nil {
		return nil, toolchain.Classify(builderr.PhaseArchive, err, "archive "+path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, builderr.New(builderr.PhaseArchive, builderr.KindToolFailed).
			Tool(cmd.Name).
			Detail("archiver exited successfully but produced no archive %s", path).
			Cause(err).
			Build()
	}
	return &Archive{Path: path, Name: a.cfg.ArchiveName, Members: members, Command: cmd}, nil
}
