package link

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/uringgen/config"
	builderr "github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/externalize"
	"github.com/wippyai/uringgen/header"
	"github.com/wippyai/uringgen/native"
	"github.com/wippyai/uringgen/probe"
)

const banner = "// Code generated by uringgen. DO NOT EDIT."

const srcdir = "${SRCDIR}"

// File is one generated text artifact.
type File struct {
	Path string
	Text string
}

// Write creates the file and its parent directory.
func (f *File) Write() error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return builderr.Wrap(builderr.PhaseEmit, builderr.KindIO, err, "create directory for "+f.Path)
	}
	if err := os.WriteFile(f.Path, []byte(f.Text), 0o644); err != nil {
		return builderr.Wrap(builderr.PhaseEmit, builderr.KindIO, err, "write "+f.Path)
	}
	return nil
}

// Emitter derives the link-side artifacts of one run.
type Emitter struct {
	cfg *config.Config
	lib *probe.Library
}

// NewEmitter creates an Emitter. lib may be nil when the probe was skipped.
func NewEmitter(cfg *config.Config, lib *probe.Library) *Emitter {
	return &Emitter{cfg: cfg, lib: lib}
}

// Directives returns the ordered directive set: search paths (system
// locations, then pkg-config directories, then the output directory), the
// static archive, the shared library, the declarations and one rerun
// trigger per header dependency.
func (e *Emitter) Directives(archive *native.Archive, desc *header.Description) *Set {
	s := &Set{}
	for _, dir := range e.cfg.LinkSearchPaths() {
		s.Add(KindLinkSearch, dir)
	}
	if e.lib != nil {
		for _, dir := range e.lib.LibDirs {
			s.Add(KindLinkSearch, dir)
		}
	}
	s.Add(KindLinkSearch, filepath.Dir(archive.Path))
	s.Add(KindLinkStatic, archive.Name)
	s.Add(KindLinkShared, e.cfg.Library)
	s.Add(KindInclude, e.cfg.DeclarationsPath())
	for _, dep := range desc.Dependencies {
		s.Add(KindRerunIfChanged, dep)
	}
	return s
}

// Declarations renders bindings.h: the original header for its types,
// every directly linkable function against its own symbol and every
// wrapper.
func (e *Emitter) Declarations(desc *header.Description, src *externalize.Source) *File {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n// Source: %s\n\n", banner, desc.Header)
	b.WriteString("#ifndef URINGGEN_BINDINGS_H\n#define URINGGEN_BINDINGS_H\n\n")
	fmt.Fprintf(&b, "#include %q\n", desc.Header)

	var linkable []string
	for _, fn := range desc.Linkable() {
		// redeclaring without the convention attribute would conflict
		if fn.CallConv != header.DefaultCallConv {
			continue
		}
		linkable = append(linkable, fn.Signature())
	}
	if len(linkable) > 0 {
		fmt.Fprintf(&b, "\n// Linked from lib%s.\n", e.cfg.Library)
		for _, sig := range linkable {
			b.WriteString(sig + ";\n")
		}
	}

	if len(src.Wrappers) > 0 {
		fmt.Fprintf(&b, "\n// Wrappers of inline-only functions, linked from lib%s.a.\n", e.cfg.ArchiveName)
		for _, w := range src.Wrappers {
			b.WriteString(w.Prototype + ";\n")
		}
	}

	b.WriteString("\n#endif\n")
	return &File{Path: e.cfg.DeclarationsPath(), Text: b.String()}
}

// Glue renders the cgo file of the consuming package, or returns nil when
// no Go package is configured.
func (e *Emitter) Glue(set *Set) *File {
	path := e.cfg.GluePath()
	if path == "" {
		return nil
	}

	cflags := e.relative(set.CFlags())
	if e.lib != nil {
		for _, dir := range e.lib.IncludeDirs {
			cflags = append(cflags, "-I"+dir)
		}
	}
	ldflags := e.relative(set.LDFlags())

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\npackage %s\n\n/*\n", banner, e.cfg.GoPackage)
	fmt.Fprintf(&b, "#cgo CFLAGS: %s\n", strings.Join(quote(cflags), " "))
	fmt.Fprintf(&b, "#cgo LDFLAGS: %s\n", strings.Join(quote(ldflags), " "))
	fmt.Fprintf(&b, "#include %q\n", config.DeclarationsName)
	b.WriteString("*/\nimport \"C\"\n")
	return &File{Path: path, Text: b.String()}
}

// relative rewrites flag paths inside the source root to ${SRCDIR} form so
// the glue file stays valid when the tree moves.
func (e *Emitter) relative(flags []string) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = f
		if len(f) < 3 || (f[:2] != "-L" && f[:2] != "-I") {
			continue
		}
		rel, err := filepath.Rel(e.cfg.SourceRoot, f[2:])
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if rel == "." {
			out[i] = f[:2] + srcdir
		} else {
			out[i] = f[:2] + srcdir + "/" + filepath.ToSlash(rel)
		}
	}
	return out
}

// quote protects flags with spaces; cgo splits #cgo lines like a shell.
func quote(flags []string) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		if strings.ContainsAny(f, " \t'\"") {
			f = "'" + strings.ReplaceAll(f, "'", `'\''`) + "'"
		}
		out[i] = f
	}
	return out
}

// Depfile renders a Make rule making every generated artifact depend on
// the header and everything it includes.
func (e *Emitter) Depfile(desc *header.Description) *File {
	targets := []string{e.cfg.DeclarationsPath(), e.cfg.ArchivePath()}
	if glue := e.cfg.GluePath(); glue != "" {
		targets = append(targets, glue)
	}

	var b strings.Builder
	b.WriteString(strings.Join(escape(targets), " "))
	b.WriteString(":")
	for _, dep := range escape(desc.Dependencies) {
		b.WriteString(" \\\n  " + dep)
	}
	b.WriteString("\n")
	for _, dep := range escape(desc.Dependencies) {
		b.WriteString("\n" + dep + ":\n")
	}
	return &File{Path: e.cfg.DepfilePath(), Text: b.String()}
}

func escape(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		p = strings.ReplaceAll(p, " ", `\ `)
		out[i] = strings.ReplaceAll(p, "$", "$$")
	}
	return out
}
