// Package native drives the system C toolchain: it compiles the wrapper
// source into a relocatable object and packs the object into a static
// archive. Both tools run through a toolchain.Runner, and a failing tool
// surfaces its stderr verbatim in the returned error.
package native
