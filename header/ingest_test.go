package header

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"

	"github.com/wippyai/uringgen/config"
	"github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/toolchain/toolchaintest"
)

const scenarioHeader = `#pragma once
static inline int add(int a, int b) { return a + b; }
void setup(void);
`

func newConfig(t *testing.T, dir *fs.Dir) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SourceRoot = dir.Path()
	cfg.OutDir = dir.Join("out")
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestIngest(t *testing.T) {
	dir := fs.NewDir(t, "ingest", fs.WithFile("wrapper.h", scenarioHeader))
	defer dir.Remove()
	cfg := newConfig(t, dir)
	cfg.CFlags = []string{"-O2", "-DNDEBUG", "-I", "/opt/extra"}
	runner := toolchaintest.New().Handle("cpp", toolchaintest.Preprocessor())

	desc, err := NewIngestor(cfg, runner, []string{"/opt/liburing/include"}).Ingest(context.Background(), cfg.HeaderPath())
	require.NoError(t, err)

	assert.Equal(t, []string{"add", "setup"}, names(desc.Functions()))
	assert.Equal(t, []string{cfg.HeaderPath()}, desc.Dependencies)

	calls := runner.CallsTo("cpp")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"-I" + dir.Path(),
		"-I/opt/liburing/include",
		"-DNDEBUG", "-I", "/opt/extra",
		cfg.HeaderPath(),
	}, calls[0].Args)
	assert.Equal(t, dir.Path(), calls[0].Dir)
}

func TestIngest_Errors(t *testing.T) {
	dir := fs.NewDir(t, "ingest", fs.WithFile("wrapper.h", scenarioHeader))
	defer dir.Remove()

	tests := []struct {
		name   string
		header string
		allow  string
		runner *toolchaintest.Runner
		phase  errors.Phase
		kind   errors.Kind
		output string
	}{
		{
			name:   "missing_header",
			header: "absent.h",
			runner: toolchaintest.New().Handle("cpp", toolchaintest.Preprocessor()),
			phase:  errors.PhaseParse,
			kind:   errors.KindIO,
		},
		{
			name:   "unresolved_include",
			header: "wrapper.h",
			runner: toolchaintest.New().Handle("cpp", toolchaintest.Fail(1, "wrapper.h:1:10: fatal error: liburing.h: No such file or directory\n")),
			phase:  errors.PhaseParse,
			kind:   errors.KindToolFailed,
			output: "fatal error: liburing.h: No such file or directory",
		},
		{
			name:   "preprocessor_missing",
			header: "wrapper.h",
			runner: toolchaintest.New(),
			phase:  errors.PhaseParse,
			kind:   errors.KindToolMissing,
			output: "cpp",
		},
		{
			name:   "bad_allow_list",
			header: "wrapper.h",
			allow:  "io_uring_(",
			runner: toolchaintest.New().Handle("cpp", toolchaintest.Preprocessor()),
			phase:  errors.PhaseConfig,
			kind:   errors.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(t, dir)
			cfg.Header = tt.header
			cfg.AllowFunctions = tt.allow

			_, err := NewIngestor(cfg, tt.runner, nil).Ingest(context.Background(), cfg.HeaderPath())
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, &errors.Error{Phase: tt.phase, Kind: tt.kind}), "got %v", err)
			if tt.output != "" {
				assert.Contains(t, err.Error(), tt.output)
			}
		})
	}
}

func TestPreprocessorFlags(t *testing.T) {
	got := preprocessorFlags([]string{"-O2", "-g", "-D_GNU_SOURCE", "-U", "NDEBUG", "-Iinc", "-std=gnu11", "-include", "cfg.h", "-Wall"})
	assert.Equal(t, []string{"-D_GNU_SOURCE", "-U", "NDEBUG", "-Iinc", "-std=gnu11", "-include", "cfg.h"}, got)
}
