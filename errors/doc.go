// Package errors provides structured error types for the binding generator.
//
// Errors are categorized by Phase (the pipeline stage that failed) and Kind
// (error category). The Error type carries the offending symbol, the external
// tool involved, its diagnostic output and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCompile, errors.KindToolFailed).
//		Tool("clang").
//		Stderr(out.Stderr).
//		Detail("could not compile object file").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ToolMissing(errors.PhaseArchive, "ar", cause)
//	err := errors.Unsupported(errors.PhaseExternalize, "io_uring_prep_rw", "variadic function")
//
// Tool diagnostics are reproduced verbatim after the one-line summary so the
// root cause of a failed build is visible without reading the pipeline code.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
