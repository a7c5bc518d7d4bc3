// Package uringgen generates cgo bindings for liburing at build time.
//
// liburing declares most of its hot-path helpers as static inline functions
// in liburing.h. Those functions have no symbol in the shared library, so
// they cannot be called from another object. uringgen gives each of them an
// external wrapper, compiles the wrappers into a static archive and tells
// the build how to link everything.
//
// # Architecture Overview
//
//	uringgen/            Root package with the Generate entry point
//	├── config/          Explicit build configuration and artifact paths
//	├── probe/           pkg-config presence check for the native library
//	├── header/          Header preprocessing and declaration parsing
//	├── externalize/     Wrapper synthesis for inline-only functions
//	├── native/          C compiler and archiver invocation
//	├── link/            Link directives, declarations, cgo glue, depfile
//	├── pipeline/        Stage ordering, stale artifact removal, events
//	├── toolchain/       External process runner and its test double
//	├── errors/          Structured error types for diagnostics
//	├── liburing/        The liburing binding package (go generate)
//	└── cmd/uringgen/    Command-line front end
//
// # Quick Start
//
// From a go:generate directive:
//
//	//go:generate go run github.com/wippyai/uringgen/cmd/uringgen generate --out-dir=out --allow-function=^_*io_uring_
//
// From Go:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.OutDir = "out"
//	cfg.SourceRoot = "."
//	res, err := uringgen.Generate(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err) // includes compiler stderr verbatim
//	}
//	fmt.Println(len(res.Source.Wrappers), "wrappers")
//
// # Artifacts
//
// Every run removes the artifacts of the previous run and writes, inside
// the output directory:
//
//	bindgen/wrapper_extern.c   wrapper source
//	wrapper_extern.o           compiled wrappers
//	libwrapper_extern.a        static archive linked by the final binary
//	bindings.h                 declarations for downstream code
//	bindings.d                 Make-style dependency file
//
// and, when GOPACKAGE is set, the cgo glue file in the source root.
//
// # Error Handling
//
// Errors are *errors.Error values carrying the failing phase, a kind and,
// for tool failures, the tool's stderr:
//
//	if stderrors.Is(err, &errors.Error{Phase: errors.PhaseProbe, Kind: errors.KindLibraryMissing}) {
//	    // liburing is not installed
//	}
package uringgen
