package header

import (
	"strings"

	"github.com/wippyai/uringgen/header/internal/parser"
)

// Linkage tells whether a function can be linked from another object.
type Linkage int

const (
	// LinkageExternal functions have a symbol in the native library.
	LinkageExternal Linkage = iota
	// LinkageInlineOnly functions exist only as definitions in the header.
	LinkageInlineOnly
)

func (l Linkage) String() string {
	switch l {
	case LinkageExternal:
		return "external"
	case LinkageInlineOnly:
		return "inline-only"
	}
	return "unknown"
}

// DefaultCallConv is the calling convention of functions without a
// convention attribute.
const DefaultCallConv = "C"

// Param is one function parameter.
type Param struct {
	// Name is the declared name, "" when the parameter is unnamed.
	Name string
	// Spelling is the parameter declaration as C tokens, attributes removed.
	Spelling []string
	// NameAt indexes Name in Spelling, -1 when unnamed.
	NameAt int
	// Complex is set for declarators with parentheses or brackets such as
	// function pointers and arrays.
	Complex bool
}

func (p Param) String() string {
	return Join(p.Spelling)
}

// WithName returns a copy of p declaring name. An unnamed parameter gets the
// name appended, which is only correct when p is not Complex.
func (p Param) WithName(name string) Param {
	q := p
	q.Name = name
	q.Spelling = append([]string(nil), p.Spelling...)
	if p.NameAt >= 0 {
		q.Spelling[p.NameAt] = name
	} else {
		q.Spelling = append(q.Spelling, name)
		q.NameAt = len(q.Spelling) - 1
	}
	return q
}

// Function is one entry of the function table.
type Function struct {
	Name     string
	Result   []string
	Params   []Param
	CallConv string
	File     string
	Line     int
	Linkage  Linkage

	// Suffix continues the declarator after the parameter list when the
	// result is a function or array pointer, e.g. ")(int)" for
	// int (*pick(int k))(int) with Result "int (*".
	Suffix []string

	Variadic     bool
	Unprototyped bool
}

// ResultString renders the return type, as an abstract declarator such as
// "int (*)(int)" when the function returns a function pointer.
func (f *Function) ResultString() string {
	toks := append([]string(nil), f.Result...)
	return Join(append(toks, f.Suffix...))
}

// IsVoid reports whether the function returns nothing.
func (f *Function) IsVoid() bool {
	return len(f.Suffix) == 0 && len(f.Result) == 1 && f.Result[0] == "void"
}

// Signature renders the prototype of the function under its own name.
func (f *Function) Signature() string {
	return f.Prototype(f.Name)
}

// Prototype renders the prototype of the function under name, without a
// trailing semicolon.
func (f *Function) Prototype(name string) string {
	toks := append([]string(nil), f.Result...)
	toks = append(toks, name, "(")
	switch {
	case f.Unprototyped:
	case len(f.Params) == 0 && !f.Variadic:
		toks = append(toks, "void")
	default:
		for i, p := range f.Params {
			if i > 0 {
				toks = append(toks, ",")
			}
			toks = append(toks, p.Spelling...)
		}
		if f.Variadic {
			if len(f.Params) > 0 {
				toks = append(toks, ",")
			}
			toks = append(toks, "...")
		}
	}
	toks = append(toks, ")")
	toks = append(toks, f.Suffix...)
	return Join(toks)
}

// Join renders C tokens with conventional spacing: pointer stars bind to
// the declarator, calls and subscripts bind to the preceding name.
func Join(spellings []string) string {
	var b strings.Builder
	for i, s := range spellings {
		if i > 0 && space(spellings[i-1], s) {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	return b.String()
}

func space(prev, next string) bool {
	switch prev {
	case "(", "[":
		return false
	}
	switch next {
	case ",", ")", "]", ";", "[":
		return false
	case "(":
		return !(prev == ")" || prev == "]" || (isWord(prev) && !parser.IsKeyword(prev)))
	}
	switch prev {
	case "*", "&", "~", "!":
		return false
	}
	return true
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
