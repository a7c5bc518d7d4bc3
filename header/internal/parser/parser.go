package parser

import (
	"fmt"

	"github.com/wippyai/uringgen/header/internal/token"
)

type Kind int

const (
	KindOther Kind = iota
	KindFunction
	KindTypedef
)

// Param is one parameter of a function declarator.
type Param struct {
	Tokens []token.Token
	// Name indexes the declared name in Tokens, -1 when unnamed.
	Name int
	// Complex is set when the declarator has parentheses or brackets.
	Complex bool
}

// Decl is one top-level declaration or function definition.
type Decl struct {
	Name     string
	CallConv string
	File     string
	Names    []string
	Result   []token.Token
	Params   []Param
	Line     int
	Kind     Kind

	// Suffix follows the parameter list of a function declarator nested in
	// a grouping declarator, as in int (*pick(int k))(int): Result is
	// "int (*" and Suffix is ")(int)".
	Suffix []token.Token

	Variadic     bool
	Unprototyped bool
	Static       bool
	Extern       bool
	Inline       bool
	GNUInline    bool
	HasBody      bool
}

// Error is a syntax error at a position of the original header.
type Error struct {
	File string
	Msg  string
	Line int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

type Parser struct {
	typedefs map[string]bool
	tokens   []token.Token
	pos      int
}

func New(tokens []token.Token) *Parser {
	p := &Parser{
		tokens:   tokens,
		typedefs: make(map[string]bool),
	}
	for _, name := range builtinTypedefs {
		p.typedefs[name] = true
	}
	return p
}

// Parse returns the top-level declarations in source order.
func (p *Parser) Parse() ([]Decl, error) {
	var decls []Decl
	for p.pos < len(p.tokens) {
		toks, body, err := p.nextDecl()
		if err != nil {
			return nil, err
		}
		if len(toks) == 0 {
			continue
		}
		d, err := p.analyze(toks, body)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

// IsTypedef reports whether name was declared by a typedef seen so far.
func (p *Parser) IsTypedef(name string) bool {
	return p.typedefs[name]
}

func errorAt(t token.Token, format string, args ...any) *Error {
	return &Error{File: t.File, Line: t.Line, Msg: fmt.Sprintf(format, args...)}
}

var (
	closing = map[string]string{"(": ")", "[": "]", "{": "}"}
	opening = map[string]string{")": "(", "]": "[", "}": "{"}
)

// nextDecl consumes one declaration up to its ';' or function body and
// returns its tokens without the terminator or body.
func (p *Parser) nextDecl() ([]token.Token, bool, error) {
	start := p.pos
	var open []token.Token

	for p.pos < len(p.tokens) {
		t := p.tokens[p.pos]
		p.pos++
		if t.Type != token.Punct {
			continue
		}
		switch t.Value {
		case "(", "[":
			open = append(open, t)
		case "{":
			if len(open) == 0 && endsWithParamList(p.tokens[start:p.pos-1]) {
				toks := p.tokens[start : p.pos-1]
				if err := p.skipBody(t); err != nil {
					return nil, false, err
				}
				return toks, true, nil
			}
			open = append(open, t)
		case ")", "]", "}":
			if len(open) == 0 || closing[open[len(open)-1].Value] != t.Value {
				return nil, false, errorAt(t, "unexpected %q", t.Value)
			}
			open = open[:len(open)-1]
		case ";":
			if len(open) == 0 {
				return p.tokens[start : p.pos-1], false, nil
			}
		}
	}

	if len(open) > 0 {
		last := open[len(open)-1]
		return nil, false, errorAt(last, "unclosed %q: unexpected end of input", last.Value)
	}
	if p.pos > start {
		return nil, false, errorAt(p.tokens[start], "unexpected end of input: declaration not terminated by ';'")
	}
	return nil, false, nil
}

func (p *Parser) skipBody(open token.Token) error {
	depth := 1
	for p.pos < len(p.tokens) {
		t := p.tokens[p.pos]
		p.pos++
		if t.Type != token.Punct {
			continue
		}
		switch t.Value {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return errorAt(open, "unclosed function body: unexpected end of input")
}

// endsWithParamList reports whether toks, ignoring attributes and asm
// labels, end with the ')' of a parameter list.
func endsWithParamList(toks []token.Token) bool {
	for i := len(toks) - 1; i >= 0; i-- {
		t := toks[i]
		if t.Is("]") {
			// array pointer result, as in char (*row(int i))[16]
			if i = matchOpen(toks, i); i < 0 {
				return false
			}
			continue
		}
		if !t.Is(")") {
			return false
		}
		open := matchOpen(toks, i)
		if open > 0 && isAttributeWord(toks[open-1]) {
			i = open - 1
			continue
		}
		return open >= 0
	}
	return false
}

func isAttributeWord(t token.Token) bool {
	if t.Type != token.Ident {
		return false
	}
	switch t.Value {
	case "__attribute__", "__attribute", "__declspec", "__asm__", "__asm", "asm":
		return true
	}
	return false
}

// matchOpen returns the index of the bracket opening the one at close.
func matchOpen(toks []token.Token, close int) int {
	want := opening[toks[close].Value]
	depth := 0
	for i := close; i >= 0; i-- {
		switch {
		case toks[i].Is(toks[close].Value):
			depth++
		case toks[i].Is(want):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchClose returns the index of the bracket closing the one at open.
func matchClose(toks []token.Token, open int) int {
	want := closing[toks[open].Value]
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].Is(toks[open].Value):
			depth++
		case toks[i].Is(want):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks) - 1
}
