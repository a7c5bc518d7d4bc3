package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Phase indicates which pipeline stage produced the error
type Phase string

const (
	PhaseConfig      Phase = "config"      // configuration validation
	PhaseProbe       Phase = "probe"       // system library discovery
	PhaseParse       Phase = "parse"       // header preprocessing and parsing
	PhaseExternalize Phase = "externalize" // wrapper synthesis
	PhaseCompile     Phase = "compile"     // C compiler invocation
	PhaseArchive     Phase = "archive"     // static archive creation
	PhaseEmit        Phase = "emit"        // declarations and link directives
)

// Kind categorizes the error
type Kind string

const (
	KindMissingKey     Kind = "missing_key"
	KindInvalidInput   Kind = "invalid_input"
	KindLibraryMissing Kind = "library_missing"
	KindToolMissing    Kind = "tool_missing"
	KindToolFailed     Kind = "tool_failed"
	KindSyntax         Kind = "syntax"
	KindUnsupported    Kind = "unsupported"
	KindNameCollision  Kind = "name_collision"
	KindIO             Kind = "io"
	KindCanceled       Kind = "canceled"
)

// Error is the structured error type used throughout the generator
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Symbol string
	Tool   string
	Detail string
	Stderr []byte
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Tool != "" {
		b.WriteString(" (")
		b.WriteString(e.Tool)
		b.WriteByte(')')
	}

	if e.Symbol != "" {
		b.WriteString(" at ")
		b.WriteString(e.Symbol)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	if len(e.Stderr) > 0 {
		b.WriteString(":\n")
		b.Write(e.Stderr)
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Symbol sets the C symbol the error refers to
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
	return b
}

// Tool sets the external tool name
func (b *Builder) Tool(name string) *Builder {
	b.err.Tool = name
	return b
}

// Stderr sets the diagnostic output of the tool
func (b *Builder) Stderr(data []byte) *Builder {
	b.err.Stderr = data
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MissingKey creates a configuration error for an absent required key
func MissingKey(key string) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindMissingKey,
		Detail: fmt.Sprintf("required key %q is not set", key),
	}
}

// LibraryMissing creates a prerequisite error for a native library the
// system library configuration cannot locate
func LibraryMissing(name string, stderr []byte) *Error {
	return &Error{
		Phase:  PhaseProbe,
		Kind:   KindLibraryMissing,
		Detail: fmt.Sprintf("prerequisite native library missing: %s", name),
		Stderr: stderr,
	}
}

// ToolMissing creates an error for an external tool that could not be started
func ToolMissing(phase Phase, tool string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindToolMissing,
		Tool:   tool,
		Detail: fmt.Sprintf("%s not found or not executable", tool),
		Cause:  cause,
	}
}

// ToolFailed creates an error for an external tool that exited nonzero
func ToolFailed(phase Phase, tool string, exitCode int, stderr []byte, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindToolFailed,
		Tool:   tool,
		Detail: fmt.Sprintf("%s (exit status %d)", detail, exitCode),
		Stderr: stderr,
	}
}

// Syntax creates a header parse error at a source position
func Syntax(file string, line int, detail string) *Error {
	pos := file
	if line > 0 {
		pos = fmt.Sprintf("%s:%d", file, line)
	}
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Detail: fmt.Sprintf("%s: %s", pos, detail),
	}
}

// Unsupported creates an unsupported declaration error
func Unsupported(phase Phase, symbol, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Symbol: symbol,
		Detail: what,
	}
}

// Collision creates a name collision error
func Collision(phase Phase, symbol, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNameCollision,
		Symbol: symbol,
		Detail: fmt.Sprintf("name %q is already declared", name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// UnsupportedFunction represents a single function that cannot be externalized
type UnsupportedFunction struct {
	Symbol string // e.g., "io_uring_prep_rw"
	File   string // e.g., "/usr/include/liburing.h"
	Reason string // e.g., "variadic function"
}

// UnsupportedFunctionsError is returned when one or more inline-only functions
// cannot be given an external wrapper. It fails the whole externalization step.
type UnsupportedFunctionsError struct {
	Functions []UnsupportedFunction
}

// NewUnsupportedFunctionsError creates an error from a list of unsupported functions
func NewUnsupportedFunctionsError(funcs []UnsupportedFunction) *UnsupportedFunctionsError {
	return &UnsupportedFunctionsError{Functions: funcs}
}

// Error returns a formatted list of unsupported functions grouped by file
func (e *UnsupportedFunctionsError) Error() string {
	if len(e.Functions) == 0 {
		return "cannot externalize: no functions specified"
	}

	byFile := make(map[string][]UnsupportedFunction)
	var files []string
	for _, fn := range e.Functions {
		if _, ok := byFile[fn.File]; !ok {
			files = append(files, fn.File)
		}
		byFile[fn.File] = append(byFile[fn.File], fn)
	}
	sort.Strings(files)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %d function(s) cannot be externalized:", PhaseExternalize, KindUnsupported, len(e.Functions))
	for _, file := range files {
		name := file
		if name == "" {
			name = "<unknown>"
		}
		fmt.Fprintf(&b, "\n  %s:", name)
		for _, fn := range byFile[file] {
			fmt.Fprintf(&b, "\n    - %s: %s", fn.Symbol, fn.Reason)
		}
	}
	return b.String()
}

// Is reports whether target is an UnsupportedFunctionsError or the
// externalize/unsupported category
func (e *UnsupportedFunctionsError) Is(target error) bool {
	switch t := target.(type) {
	case *UnsupportedFunctionsError:
		return true
	case *Error:
		return t.Phase == PhaseExternalize && t.Kind == KindUnsupported
	}
	return false
}
