// Package externalize gives every inline-only function of a header an
// external-linkage wrapper that forwards to it.
package externalize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	builderr "github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/header"
)

// Banner heads every generated wrapper source.
const Banner = "// Code generated by uringgen. DO NOT EDIT."

// Wrapper is one forwarding function.
type Wrapper struct {
	// Symbol is the wrapped inline-only function.
	Symbol string
	// Name is the external symbol of the wrapper.
	Name string
	// Prototype is the wrapper declaration without the trailing semicolon.
	Prototype string
	// Text is the complete C definition.
	Text string
}

// Source is the generated wrapper source file.
type Source struct {
	Path     string
	Text     string
	Wrappers []Wrapper
}

// Wrapper returns the wrapper of symbol.
func (s *Source) Wrapper(symbol string) (Wrapper, bool) {
	for _, w := range s.Wrappers {
		if w.Symbol == symbol {
			return w, true
		}
	}
	return Wrapper{}, false
}

// Write creates the file and its parent directories.
func (s *Source) Write() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return builderr.Wrap(builderr.PhaseExternalize, builderr.KindIO, err, "create wrapper source directory")
	}
	if err := os.WriteFile(s.Path, []byte(s.Text), 0o644); err != nil {
		return builderr.Wrap(builderr.PhaseExternalize, builderr.KindIO, err, "write wrapper source")
	}
	return nil
}

// Externalizer synthesizes wrappers named <symbol><suffix>.
type Externalizer struct {
	suffix string
}

func New(suffix string) *Externalizer {
	return &Externalizer{suffix: suffix}
}

// Externalize builds the wrapper source for every inline-only function of
// desc. Wrapper names never collide with a symbol of the header or with
// each other. If any function cannot be wrapped the whole step fails with
// an *errors.UnsupportedFunctionsError listing all of them; the Source is
// still returned with the wrappers that could be built but no Text.
func (e *Externalizer) Externalize(desc *header.Description, path string) (*Source, error) {
	src := &Source{Path: path}
	taken := make(map[string]bool)
	var unsupported []builderr.UnsupportedFunction

	for _, fn := range desc.InlineOnly() {
		params, reason := wrapperParams(fn)
		if reason != "" {
			unsupported = append(unsupported, builderr.UnsupportedFunction{
				Symbol: fn.Name,
				File:   fn.File,
				Reason: reason,
			})
			continue
		}

		name := e.uniqueName(fn.Name, desc, taken)
		taken[name] = true

		wrapped := *fn
		wrapped.Params = params
		w := Wrapper{
			Symbol:    fn.Name,
			Name:      name,
			Prototype: wrapped.Prototype(name),
		}
		w.Text = definition(&wrapped, w.Prototype)
		src.Wrappers = append(src.Wrappers, w)
	}

	if len(unsupported) > 0 {
		return src, builderr.NewUnsupportedFunctionsError(unsupported)
	}

	var b strings.Builder
	b.WriteString(Banner)
	b.WriteString("\n// Source: ")
	b.WriteString(desc.Header)
	b.WriteString("\n")
	for _, w := range src.Wrappers {
		b.WriteString("\n")
		b.WriteString(w.Text)
	}
	src.Text = b.String()
	return src, nil
}

func (e *Externalizer) uniqueName(symbol string, desc *header.Description, taken map[string]bool) string {
	base := symbol + e.suffix
	name := base
	for n := 1; desc.HasSymbol(name) || taken[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	return name
}

// wrapperParams names every parameter, or returns why fn cannot be wrapped.
func wrapperParams(fn *header.Function) ([]header.Param, string) {
	if fn.Variadic {
		return nil, "variadic function"
	}
	if fn.CallConv != header.DefaultCallConv {
		return nil, fmt.Sprintf("non-default calling convention %q", fn.CallConv)
	}

	used := map[string]bool{fn.Name: true}
	for _, p := range fn.Params {
		if p.Name != "" {
			used[p.Name] = true
		}
	}

	params := make([]header.Param, len(fn.Params))
	for i, p := range fn.Params {
		switch {
		case p.Name != "" && p.Name != fn.Name:
			params[i] = p
			continue
		case p.Name == "" && p.Complex:
			return nil, fmt.Sprintf("parameter %d (%s) is unnamed and has a complex declarator", i+1, p)
		}
		// unnamed, or named like the function and hiding it from the call
		name := fmt.Sprintf("arg%d", i)
		for used[name] {
			name += "_"
		}
		used[name] = true
		params[i] = p.WithName(name)
	}
	return params, ""
}

func definition(fn *header.Function, prototype string) string {
	args := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		args[i] = p.Name
	}
	call := fmt.Sprintf("%s(%s)", fn.Name, strings.Join(args, ", "))
	if fn.IsVoid() {
		return fmt.Sprintf("%s {\n\t%s;\n}\n", prototype, call)
	}
	return fmt.Sprintf("%s {\n\treturn %s;\n}\n", prototype, call)
}
