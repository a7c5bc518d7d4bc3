package header

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	builderr "github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/header/internal/parser"
	"github.com/wippyai/uringgen/header/internal/token"
)

// linkage state accumulated over every declaration of one symbol
type declState struct {
	static    bool
	allInline bool
	extern    bool
	gnuInline bool
	body      bool
}

// Parse builds a Description from preprocessed header text. path names the
// header for error messages and dependencies. When allow is not nil, only
// functions whose name it matches enter the function table.
func Parse(path, src string, allow *regexp.Regexp) (*Description, error) {
	tokens, err := token.Tokenize(src)
	if err != nil {
		return nil, builderr.New(builderr.PhaseParse, builderr.KindSyntax).
			Detail("tokenize %s", path).
			Cause(err).
			Build()
	}

	decls, err := parser.New(tokens).Parse()
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			file := perr.File
			if file == "" {
				file = path
			}
			return nil, builderr.Syntax(file, perr.Line, perr.Msg)
		}
		return nil, builderr.Wrap(builderr.PhaseParse, builderr.KindSyntax, err, "parse "+path)
	}

	desc := newDescription(path)
	for _, f := range token.Files(src) {
		if strings.HasPrefix(f, "<") {
			continue
		}
		desc.Dependencies = append(desc.Dependencies, f)
	}
	if len(desc.Dependencies) == 0 || desc.Dependencies[0] != path {
		desc.Dependencies = append([]string{path}, remove(desc.Dependencies, path)...)
	}

	states := make(map[string]*declState)
	for _, d := range decls {
		for _, name := range d.Names {
			desc.symbols.Add(name)
		}
		switch d.Kind {
		case parser.KindTypedef:
			for _, name := range d.Names {
				desc.typedefs.Add(name)
			}
		case parser.KindFunction:
			st, seen := states[d.Name]
			if !seen {
				st = &declState{allInline: true}
				states[d.Name] = st
			}
			st.static = st.static || d.Static
			st.allInline = st.allInline && d.Inline
			st.extern = st.extern || d.Extern
			st.gnuInline = st.gnuInline || d.GNUInline
			st.body = st.body || d.HasBody

			if seen || (allow != nil && !allow.MatchString(d.Name)) {
				continue
			}
			desc.addFunction(newFunction(d))
		}
	}

	for _, fn := range desc.Functions() {
		st := states[fn.Name]
		if st.static || (st.allInline && !st.extern && !st.gnuInline) {
			fn.Linkage = LinkageInlineOnly
		}
		if fn.Linkage == LinkageInlineOnly && !st.body {
			Logger().Debug("skipping inline-only function without a definition",
				zap.String("function", fn.Name),
				zap.String("file", fn.File),
				zap.Int("line", fn.Line))
			desc.removeFunction(fn.Name)
		}
	}

	Logger().Debug("parsed header",
		zap.String("header", path),
		zap.Int("declarations", len(decls)),
		zap.Int("functions", desc.Len()),
		zap.Int("dependencies", len(desc.Dependencies)))
	return desc, nil
}

func newFunction(d parser.Decl) *Function {
	fn := &Function{
		Name:         d.Name,
		Result:       spellings(d.Result),
		Suffix:       spellings(d.Suffix),
		CallConv:     d.CallConv,
		File:         d.File,
		Line:         d.Line,
		Variadic:     d.Variadic,
		Unprototyped: d.Unprototyped,
	}
	if fn.CallConv == "" {
		fn.CallConv = DefaultCallConv
	}
	for _, p := range d.Params {
		param := Param{
			Spelling: spellings(p.Tokens),
			NameAt:   p.Name,
			Complex:  p.Complex,
		}
		if p.Name >= 0 {
			param.Name = p.Tokens[p.Name].Value
		}
		fn.Params = append(fn.Params, param)
	}
	return fn
}

func spellings(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Value
	}
	return out
}

func remove(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
