package probe

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/toolchain/toolchaintest"
)

func TestProbe(t *testing.T) {
	runner := toolchaintest.New().Handle("pkg-config", toolchaintest.PkgConfig("liburing", "2.5", "/opt/liburing", true))

	lib, err := New("pkg-config", runner).Probe(context.Background(), "liburing")
	require.NoError(t, err)

	want := &Library{
		Name:        "liburing",
		Version:     "2.5",
		LibDirs:     []string{"/opt/liburing/lib"},
		IncludeDirs: []string{"/opt/liburing/include"},
	}
	if diff := cmp.Diff(want, lib); diff != "" {
		t.Errorf("Probe() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"--exists", "--print-errors", "liburing"}, runner.Calls()[0].Args)
}

func TestProbe_LibraryMissing(t *testing.T) {
	runner := toolchaintest.New().Handle("pkg-config", toolchaintest.PkgConfig("liburing", "2.5", "/usr", false))

	_, err := New("pkg-config", runner).Probe(context.Background(), "liburing")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseProbe, Kind: errors.KindLibraryMissing}))
	assert.Contains(t, err.Error(), "prerequisite native library missing: liburing")
	assert.Contains(t, err.Error(), "Package liburing was not found")
	assert.Len(t, runner.Calls(), 1)
}

func TestProbe_ToolErrors(t *testing.T) {
	_, err := New("pkg-config", toolchaintest.New()).Probe(context.Background(), "liburing")
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseProbe, Kind: errors.KindToolMissing}))

	broken := toolchaintest.New().Handle("pkg-config", toolchaintest.Fail(2, "pkg-config: malformed .pc file\n"))
	_, err = New("pkg-config", broken).Probe(context.Background(), "liburing")
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseProbe, Kind: errors.KindToolFailed}))
	assert.Contains(t, err.Error(), "malformed .pc file")
}

func TestFlagValues(t *testing.T) {
	assert.Equal(t, []string{"/a", "/b"}, flagValues("-L/a  -L/b -lfoo -L\n", "-L"))
	assert.Nil(t, flagValues("\n", "-I"))
}
