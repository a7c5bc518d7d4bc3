package parser

import (
	"github.com/wippyai/uringgen/header/internal/token"
)

// analyze classifies one declaration and extracts what the description
// needs from it.
func (p *Parser) analyze(toks []token.Token, body bool) (Decl, error) {
	d := Decl{File: toks[0].File, Line: toks[0].Line, HasBody: body}
	core, typedef := p.specifiers(toks, &d)
	if len(core) == 0 {
		return d, nil
	}

	if typedef {
		d.Kind = KindTypedef
		d.Names = p.declaredNames(core)
		for _, name := range d.Names {
			p.typedefs[name] = true
		}
		return d, nil
	}

	if idx := p.functionDeclarator(core); idx > 1 {
		end := matchClose(core, idx)
		if end == len(core)-1 {
			name := core[idx-1]
			d.Kind = KindFunction
			d.Name = name.Value
			d.Names = []string{name.Value}
			d.File, d.Line = name.File, name.Line
			d.Result = core[:idx-1]
			params, err := p.params(core[idx+1:end], &d)
			if err != nil {
				return d, err
			}
			d.Params = params
			return d, nil
		}
	}

	if name, open, ok := p.nestedDeclarator(core); ok {
		end := matchClose(core, open)
		d.Kind = KindFunction
		d.Name = core[name].Value
		d.Names = []string{d.Name}
		d.File, d.Line = core[name].File, core[name].Line
		d.Result = core[:name]
		d.Suffix = core[end+1:]
		params, err := p.params(core[open+1:end], &d)
		if err != nil {
			return d, err
		}
		d.Params = params
		return d, nil
	}

	if body {
		return d, errorAt(core[0], "unsupported declarator for the function defined here")
	}
	d.Kind = KindOther
	d.Names = append(p.declaredNames(core), enumerators(core)...)
	return d, nil
}

// specifiers strips storage classes, function specifiers, attributes and
// asm labels at the outer level, recording them on d.
func (p *Parser) specifiers(toks []token.Token, d *Decl) ([]token.Token, bool) {
	var core []token.Token
	typedef := false
	depth := 0

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Type == token.Punct {
			switch t.Value {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
			core = append(core, t)
			continue
		}

		if isAttributeWord(t) && i+1 < len(toks) && toks[i+1].Is("(") {
			end := matchClose(toks, i+1)
			if depth > 0 {
				i = end
				continue
			}
			for _, a := range toks[i+2 : end] {
				if a.Type != token.Ident {
					continue
				}
				if cc, ok := callingConventions[a.Value]; ok {
					d.CallConv = cc
				}
				if a.Value == "gnu_inline" || a.Value == "__gnu_inline__" {
					d.GNUInline = true
				}
			}
			i = end
			continue
		}
		if t.Value == "__extension__" {
			continue
		}

		if depth == 0 && t.Type == token.Ident {
			switch t.Value {
			case "static":
				d.Static = true
			case "extern":
				d.Extern = true
			case "inline", "__inline", "__inline__":
				d.Inline = true
			case "typedef":
				typedef = true
			}
			if cc, ok := callingConventions[t.Value]; ok {
				d.CallConv = cc
			}
			if dropped[t.Value] {
				continue
			}
		}
		core = append(core, t)
	}
	return core, typedef
}

// functionDeclarator returns the index of the '(' opening the parameter
// list of a plain function declarator, or -1.
func (p *Parser) functionDeclarator(core []token.Token) int {
	depth := 0
	for i, t := range core {
		if t.Type != token.Punct {
			continue
		}
		switch t.Value {
		case "(":
			if depth == 0 && i > 0 && p.isName(core[i-1]) {
				return i
			}
			depth++
		case "=":
			if depth == 0 {
				return -1
			}
		case "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		}
	}
	return -1
}

// nestedDeclarator finds a function declarator wrapped in grouping
// parentheses, the form of functions returning function or array pointers.
// It returns the index of the function name and of the '(' opening its
// parameter list.
func (p *Parser) nestedDeclarator(core []token.Token) (int, int, bool) {
	depth := 0
	for i, t := range core {
		if t.Type != token.Punct {
			continue
		}
		switch t.Value {
		case "(":
			if depth > 0 && i > 1 && p.isName(core[i-1]) && grouped(core, i-1) {
				end := matchClose(core, i)
				if end+1 < len(core) && core[end+1].Is(")") {
					return i - 1, i, true
				}
			}
			depth++
		case "=":
			if depth == 0 {
				return 0, 0, false
			}
		case "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		}
	}
	return 0, 0, false
}

// grouped reports whether the name at n is preceded by pointer declarators
// and at least one grouping '(' back to the type specifiers.
func grouped(core []token.Token, n int) bool {
	parens := 0
	j := n - 1
	for ; j >= 0; j-- {
		t := core[j]
		if t.Is("(") {
			parens++
			continue
		}
		if t.Is("*") || t.Is("const") || t.Is("volatile") || t.Is("restrict") ||
			t.Is("__restrict") || t.Is("__restrict__") {
			continue
		}
		break
	}
	return parens > 0 && j >= 0
}

func (p *Parser) isName(t token.Token) bool {
	return t.Type == token.Ident && !keywords[t.Value] && !opaque[t.Value] && !p.typedefs[t.Value]
}

func (p *Parser) params(toks []token.Token, d *Decl) ([]Param, error) {
	if len(toks) == 0 {
		d.Unprototyped = true
		return nil, nil
	}
	if len(toks) == 1 && toks[0].Is("void") {
		return nil, nil
	}

	var params []Param
	groups := splitTopLevel(toks, ",")
	for gi, g := range groups {
		g = stripAttributes(g)
		if len(g) == 0 {
			return nil, errorAt(toks[0], "empty parameter in %s", d.Name)
		}
		if len(g) == 1 && g[0].Is("...") {
			if gi != len(groups)-1 {
				return nil, errorAt(g[0], "'...' must be the last parameter of %s", d.Name)
			}
			d.Variadic = true
			continue
		}
		if len(g) == 1 && g[0].Is("void") {
			return nil, errorAt(g[0], "'void' must be the only parameter of %s", d.Name)
		}
		param := Param{Tokens: g, Name: p.lastName(g, true)}
		for _, t := range g {
			if t.Is("(") || t.Is("[") {
				param.Complex = true
			}
		}
		params = append(params, param)
	}
	return params, nil
}

// declaredNames returns the name introduced by each declarator of a
// declaration without the storage class.
func (p *Parser) declaredNames(core []token.Token) []string {
	var names []string
	for _, part := range splitTopLevel(core, ",") {
		if eq := splitTopLevel(part, "="); len(eq) > 0 {
			part = eq[0]
		}
		if idx := p.lastName(part, false); idx >= 0 {
			names = append(names, part[idx].Value)
		}
	}
	return names
}

// lastName returns the index of the identifier a declarator declares: the
// last identifier outside brackets, bodies, parameter lists and attribute
// groups that is not a keyword or a tag. With skipTypedefs, known typedef
// names are not candidates.
func (p *Parser) lastName(toks []token.Token, skipTypedefs bool) int {
	found := -1
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Type == token.Punct {
			switch t.Value {
			case "[", "{":
				i = matchClose(toks, i)
			case "(":
				if p.isParamList(toks, i) {
					i = matchClose(toks, i)
				}
			}
			continue
		}
		if t.Type != token.Ident {
			continue
		}
		if opaque[t.Value] && i+1 < len(toks) && toks[i+1].Is("(") {
			i = matchClose(toks, i+1)
			continue
		}
		if keywords[t.Value] || (skipTypedefs && p.typedefs[t.Value]) {
			continue
		}
		if i > 0 && (toks[i-1].Is("struct") || toks[i-1].Is("union") || toks[i-1].Is("enum")) {
			continue
		}
		found = i
	}
	return found
}

// isParamList reports whether the '(' at i opens a parameter list rather
// than a grouping declarator such as (*name).
func (p *Parser) isParamList(toks []token.Token, i int) bool {
	if i+1 < len(toks) && (toks[i+1].Is("*") || toks[i+1].Is("^") || toks[i+1].Is("(")) {
		return false
	}
	if i == 0 {
		return false
	}
	prev := toks[i-1]
	return prev.Is(")") || prev.Is("]") || (prev.Type == token.Ident && !keywords[prev.Value])
}

// enumerators returns the constants declared by enum bodies in core.
func enumerators(core []token.Token) []string {
	var names []string
	for i, t := range core {
		if !t.Is("enum") {
			continue
		}
		j := i + 1
		if j < len(core) && core[j].Type == token.Ident {
			j++
		}
		if j >= len(core) || !core[j].Is("{") {
			continue
		}
		end := matchClose(core, j)
		for _, item := range splitTopLevel(core[j+1:end], ",") {
			if len(item) > 0 && item[0].Type == token.Ident {
				names = append(names, item[0].Value)
			}
		}
	}
	return names
}

// splitTopLevel splits toks at sep tokens outside any bracket pair.
func splitTopLevel(toks []token.Token, sep string) [][]token.Token {
	var parts [][]token.Token
	depth, start := 0, 0
	for i, t := range toks {
		if t.Type != token.Punct {
			continue
		}
		switch t.Value {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, toks[start:i])
				start = i + 1
			}
		}
	}
	if start < len(toks) {
		parts = append(parts, toks[start:])
	}
	return parts
}

// stripAttributes removes attribute groups and asm labels.
func stripAttributes(toks []token.Token) []token.Token {
	var out []token.Token
	for i := 0; i < len(toks); i++ {
		if isAttributeWord(toks[i]) && i+1 < len(toks) && toks[i+1].Is("(") {
			i = matchClose(toks, i+1)
			continue
		}
		if toks[i].Is("__extension__") {
			continue
		}
		out = append(out, toks[i])
	}
	return out
}
