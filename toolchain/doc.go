// Package toolchain runs the external build tools of the pipeline.
//
// Every tool (preprocessor, C compiler, archiver, pkg-config) is invoked
// through the Runner interface as a blocking child process. A Runner returns
// the captured output on a zero exit status and a *ToolError otherwise, so
// stages can surface the tool's diagnostic stream verbatim and tests can
// substitute a scripted runner (see package toolchaintest).
package toolchain
