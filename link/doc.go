// Package link produces everything the host build consumes after the
// archive exists: the ordered link directive set printed on stdout, the
// generated declarations header, the cgo glue file of the consuming Go
// package and a Make-style depfile.
//
// Directives are printed one per line:
//
//	uringgen:link-search=/usr/lib/x86_64-linux-gnu/
//	uringgen:link-search=/usr/lib/
//	uringgen:link-search=/build/out
//	uringgen:link-static=wrapper_extern
//	uringgen:link-shared=uring
//	uringgen:include=/build/out/bindings.h
//	uringgen:rerun-if-changed=/src/wrapper.h
package link
