package link

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"

	"github.com/wippyai/uringgen/config"
	"github.com/wippyai/uringgen/externalize"
	"github.com/wippyai/uringgen/header"
	"github.com/wippyai/uringgen/native"
	"github.com/wippyai/uringgen/probe"
)

const scenario = "static inline int add(int a, int b) { return a + b; }\nvoid setup(void);\n"

func fixture(t *testing.T, outDir string) (*config.Config, *header.Description, *externalize.Source, *native.Archive) {
	t.Helper()
	cfg := config.Default()
	cfg.SourceRoot = "/src/pkg"
	cfg.OutDir = outDir
	cfg.GOARCH = "amd64"
	cfg.GoPackage = "liburing"

	desc, err := header.Parse(cfg.HeaderPath(), "# 1 \""+cfg.HeaderPath()+"\"\n"+scenario, nil)
	require.NoError(t, err)
	src, err := externalize.New(cfg.WrapperSuffix).Externalize(desc, cfg.WrapperSourcePath())
	require.NoError(t, err)
	archive := &native.Archive{Path: cfg.ArchivePath(), Name: cfg.ArchiveName}
	return cfg, desc, src, archive
}

var liburing = &probe.Library{
	Name:        "liburing",
	Version:     "2.5",
	LibDirs:     []string{"/opt/liburing/lib"},
	IncludeDirs: []string{"/opt/liburing/include"},
}

func TestDirectives(t *testing.T) {
	cfg, desc, _, archive := fixture(t, "/src/pkg/out")
	set := NewEmitter(cfg, liburing).Directives(archive, desc)

	var buf bytes.Buffer
	_, err := set.WriteTo(&buf)
	require.NoError(t, err)

	want := strings.Join([]string{
		"uringgen:link-search=/usr/lib/x86_64-linux-gnu/",
		"uringgen:link-search=/usr/lib/",
		"uringgen:link-search=/opt/liburing/lib",
		"uringgen:link-search=/src/pkg/out",
		"uringgen:link-static=wrapper_extern",
		"uringgen:link-shared=uring",
		"uringgen:include=/src/pkg/out/bindings.h",
		"uringgen:rerun-if-changed=/src/pkg/wrapper.h",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("directives mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{
		"-L/usr/lib/x86_64-linux-gnu/", "-L/usr/lib/", "-L/opt/liburing/lib", "-L/src/pkg/out",
		"-lwrapper_extern", "-luring",
	}, set.LDFlags())
	assert.Equal(t, []string{"-I/src/pkg/out"}, set.CFlags())
}

func TestDirectives_NoProbeAndDuplicates(t *testing.T) {
	cfg, desc, _, archive := fixture(t, "/tmp/build")
	cfg.SearchPaths = []string{"/tmp/build", "/usr/lib/"}

	set := NewEmitter(cfg, nil).Directives(archive, desc)
	assert.Equal(t, []string{"/tmp/build", "/usr/lib/"}, set.Values(KindLinkSearch))
}

func TestDeclarations(t *testing.T) {
	cfg, desc, src, _ := fixture(t, "/src/pkg/out")
	decls := NewEmitter(cfg, liburing).Declarations(desc, src)

	want := `// Code generated by uringgen. DO NOT EDIT.
// Source: /src/pkg/wrapper.h

#ifndef URINGGEN_BINDINGS_H
#define URINGGEN_BINDINGS_H

#include "/src/pkg/wrapper.h"

// Linked from liburing.
void setup(void);

// Wrappers of inline-only functions, linked from libwrapper_extern.a.
int add__extern(int a, int b);

#endif
`
	assert.Equal(t, cfg.DeclarationsPath(), decls.Path)
	if diff := cmp.Diff(want, decls.Text); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, strings.Count(decls.Text, "add__extern("))
	assert.NotContains(t, decls.Text, "setup__extern")
}

func TestGlue(t *testing.T) {
	t.Run("inside_source_root", func(t *testing.T) {
		cfg, desc, _, archive := fixture(t, "/src/pkg/out")
		e := NewEmitter(cfg, liburing)
		glue := e.Glue(e.Directives(archive, desc))
		require.NotNil(t, glue)

		want := "// Code generated by uringgen. DO NOT EDIT.\n\npackage liburing\n\n/*\n" +
			"#cgo CFLAGS: -I${SRCDIR}/out -I/opt/liburing/include\n" +
			"#cgo LDFLAGS: -L/usr/lib/x86_64-linux-gnu/ -L/usr/lib/ -L/opt/liburing/lib -L${SRCDIR}/out -lwrapper_extern -luring\n" +
			"#include \"bindings.h\"\n*/\nimport \"C\"\n"
		assert.Equal(t, "/src/pkg/zbindings_cgo.go", glue.Path)
		if diff := cmp.Diff(want, glue.Text); diff != "" {
			t.Errorf("glue mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("outside_source_root", func(t *testing.T) {
		cfg, desc, _, archive := fixture(t, "/tmp/build dir")
		e := NewEmitter(cfg, nil)
		glue := e.Glue(e.Directives(archive, desc))
		require.NotNil(t, glue)
		assert.Contains(t, glue.Text, "#cgo CFLAGS: '-I/tmp/build dir'\n")
		assert.Contains(t, glue.Text, "'-L/tmp/build dir' -lwrapper_extern -luring\n")
	})

	t.Run("no_package", func(t *testing.T) {
		cfg, desc, _, archive := fixture(t, "/src/pkg/out")
		cfg.GoPackage = ""
		e := NewEmitter(cfg, nil)
		assert.Nil(t, e.Glue(e.Directives(archive, desc)))
	})
}

func TestDepfile(t *testing.T) {
	cfg, desc, _, _ := fixture(t, "/src/pkg/out")
	desc.Dependencies = append(desc.Dependencies, "/usr/include/my headers/liburing.h")

	dep := NewEmitter(cfg, nil).Depfile(desc)
	want := "/src/pkg/out/bindings.h /src/pkg/out/libwrapper_extern.a /src/pkg/zbindings_cgo.go: \\\n" +
		"  /src/pkg/wrapper.h \\\n" +
		"  /usr/include/my\\ headers/liburing.h\n" +
		"\n/src/pkg/wrapper.h:\n" +
		"\n/usr/include/my\\ headers/liburing.h:\n"
	assert.Equal(t, cfg.DepfilePath(), dep.Path)
	assert.Equal(t, want, dep.Text)
}

func TestFileWrite(t *testing.T) {
	dir := fs.NewDir(t, "link")
	defer dir.Remove()

	f := &File{Path: dir.Join("nested", "bindings.h"), Text: "int x;\n"}
	require.NoError(t, f.Write())
	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "int x;\n", string(data))
}
