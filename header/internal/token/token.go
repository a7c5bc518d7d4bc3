package token

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type Type int

const (
	Ident Type = iota
	Number
	String
	Char
	Punct
)

func (t Type) String() string {
	switch t {
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Char:
		return "character"
	case Punct:
		return "punctuator"
	}
	return "unknown"
}

// Token is one C token. File and Line follow the preprocessor line markers
// of the input, so they point into the original header, not the expanded text.
type Token struct {
	Value string
	File  string
	Type  Type
	Line  int
}

// Is reports whether t is the punctuator or identifier s.
func (t Token) Is(s string) bool {
	return (t.Type == Punct || t.Type == Ident) && t.Value == s
}

// longest first
var puncts = []string{
	"...", "<<=", ">>=",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"*=", "/=", "%=", "+=", "-=", "&=", "^=", "|=", "##",
}

// Tokenize splits preprocessed C source into tokens. Line markers of the
// form `# 12 "file.h" 1` and `#line 12 "file.h"` update the position of the
// following tokens; other directives are skipped.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	line := 1
	file := ""
	atLineStart := true
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			atLineStart = true
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Directive or line marker
		if r == '#' && atLineStart {
			end := i
			for end < len(runes) && runes[end] != '\n' {
				if runes[end] == '\\' && end+1 < len(runes) && runes[end+1] == '\n' {
					end++
					line++
				}
				end++
			}
			if n, f, ok := parseLineMarker(string(runes[i+1 : end])); ok {
				line = n - 1
				if f != "" {
					file = f
				}
			}
			i = end - 1
			continue
		}
		atLineStart = false

		// Line comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}
			continue
		}

		// Block comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			startLine := line
			i += 2
			for i < len(runes) && !(runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/') {
				if runes[i] == '\n' {
					line++
				}
				i++
			}
			if i >= len(runes) {
				return nil, fmt.Errorf("%s:%d: unterminated comment", file, startLine)
			}
			i++
			continue
		}

		// String or character literal
		if r == '"' || r == '\'' {
			start := i
			i++
			for i < len(runes) && runes[i] != r {
				if runes[i] == '\\' {
					i++
				}
				if i < len(runes) && runes[i] == '\n' {
					return nil, fmt.Errorf("%s:%d: newline in literal", file, line)
				}
				i++
			}
			if i >= len(runes) {
				return nil, fmt.Errorf("%s:%d: unterminated literal", file, line)
			}
			typ := String
			if r == '\'' {
				typ = Char
			}
			tokens = append(tokens, Token{string(runes[start : i+1]), file, typ, line})
			continue
		}

		// Number, including floats and hex/exponent forms
		if unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])) {
			start := i
			for i < len(runes) {
				c := runes[i]
				if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '.' || c == '_' ||
					((c == '-' || c == '+') && i > start && strings.ContainsRune("eEpP", runes[i-1])) {
					i++
				} else {
					break
				}
			}
			tokens = append(tokens, Token{string(runes[start:i]), file, Number, line})
			i--
			continue
		}

		// Identifier or keyword
		if unicode.IsLetter(r) || r == '_' || r == '$' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_' || runes[i] == '$') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), file, Ident, line})
			i--
			continue
		}

		// Punctuator
		matched := string(r)
		for _, p := range puncts {
			if strings.HasPrefix(string(runes[i:min(i+len(p), len(runes))]), p) {
				matched = p
				break
			}
		}
		tokens = append(tokens, Token{matched, file, Punct, line})
		i += len([]rune(matched)) - 1
	}

	return tokens, nil
}

// parseLineMarker parses the text after '#' of a line marker. It returns
// ok=false for every other directive.
func parseLineMarker(s string) (int, string, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "line"); ok {
		s = strings.TrimSpace(rest)
	}
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 0, "", false
	}
	if end < 0 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, "", false
	}
	rest := strings.TrimSpace(s[end:])
	quoted, err := strconv.QuotedPrefix(rest)
	if err != nil {
		return n, "", true
	}
	name, err := strconv.Unquote(quoted)
	if err != nil {
		name = strings.Trim(quoted, `"`)
	}
	return n, name, true
}

// Files returns the file names named by the line markers of input, in order
// of first appearance.
func Files(input string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(input, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), "#")
		if !ok {
			continue
		}
		if _, name, ok := parseLineMarker(rest); ok && name != "" && !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}
	return files
}
