package token

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			"empty",
			"",
			nil,
		},
		{
			"prototype",
			"void setup(void);",
			[]Token{
				{"void", "", Ident, 1}, {"setup", "", Ident, 1}, {"(", "", Punct, 1},
				{"void", "", Ident, 1}, {")", "", Punct, 1}, {";", "", Punct, 1},
			},
		},
		{
			"pointer_param",
			"struct io_uring *ring",
			[]Token{{"struct", "", Ident, 1}, {"io_uring", "", Ident, 1}, {"*", "", Punct, 1}, {"ring", "", Ident, 1}},
		},
		{
			"newlines",
			"int\nadd\n(",
			[]Token{{"int", "", Ident, 1}, {"add", "", Ident, 2}, {"(", "", Punct, 3}},
		},
		{
			"ellipsis",
			"int, ...)",
			[]Token{{"int", "", Ident, 1}, {",", "", Punct, 1}, {"...", "", Punct, 1}, {")", "", Punct, 1}},
		},
		{
			"multi_char_punct",
			"a->b <<= 2",
			[]Token{{"a", "", Ident, 1}, {"->", "", Punct, 1}, {"b", "", Ident, 1}, {"<<=", "", Punct, 1}, {"2", "", Number, 1}},
		},
		{
			"numbers",
			"0xFFu 1.5e-3f .5",
			[]Token{{"0xFFu", "", Number, 1}, {"1.5e-3f", "", Number, 1}, {".5", "", Number, 1}},
		},
		{
			"string_and_char",
			`__asm__("" "io_uring_x") 'a' '\''`,
			[]Token{
				{"__asm__", "", Ident, 1}, {"(", "", Punct, 1}, {`""`, "", String, 1},
				{`"io_uring_x"`, "", String, 1}, {")", "", Punct, 1},
				{"'a'", "", Char, 1}, {`'\''`, "", Char, 1},
			},
		},
		{
			"comments",
			"int /* block\ncomment */ x; // line\ny",
			[]Token{{"int", "", Ident, 1}, {"x", "", Ident, 2}, {";", "", Punct, 2}, {"y", "", Ident, 3}},
		},
		{
			"line_markers",
			"# 1 \"wrapper.h\"\nint a;\n# 40 \"/usr/include/liburing.h\" 1 3\nint b;\n#line 7 \"x.h\"\nc",
			[]Token{
				{"int", "wrapper.h", Ident, 1}, {"a", "wrapper.h", Ident, 1}, {";", "wrapper.h", Punct, 1},
				{"int", "/usr/include/liburing.h", Ident, 40}, {"b", "/usr/include/liburing.h", Ident, 40},
				{";", "/usr/include/liburing.h", Punct, 40},
				{"c", "x.h", Ident, 7},
			},
		},
		{
			"other_directives_skipped",
			"#pragma GCC diagnostic push\nint x;",
			[]Token{{"int", "", Ident, 2}, {"x", "", Ident, 2}, {";", "", Punct, 2}},
		},
		{
			"hash_inside_line",
			"a # b",
			[]Token{{"a", "", Ident, 1}, {"#", "", Punct, 1}, {"b", "", Ident, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize failed: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name, input, wantErr string
	}{
		{"unterminated_comment", "int /* x", "unterminated comment"},
		{"unterminated_string", `"abc`, "unterminated literal"},
		{"newline_in_string", "\"ab\ncd\"", "newline in literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q missing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseLineMarker(t *testing.T) {
	tests := []struct {
		in   string
		line int
		file string
		ok   bool
	}{
		{` 1 "wrapper.h"`, 1, "wrapper.h", true},
		{` 12 "/usr/include/my dir/x.h" 2 3`, 12, "/usr/include/my dir/x.h", true},
		{`line 5 "a.h"`, 5, "a.h", true},
		{` 9`, 9, "", true},
		{`pragma once`, 0, "", false},
		{`define X 1`, 0, "", false},
	}
	for _, tt := range tests {
		line, file, ok := parseLineMarker(tt.in)
		if line != tt.line || file != tt.file || ok != tt.ok {
			t.Errorf("parseLineMarker(%q) = %d, %q, %v; want %d, %q, %v", tt.in, line, file, ok, tt.line, tt.file, tt.ok)
		}
	}
}

func TestTokenIs(t *testing.T) {
	if !(Token{Value: "(", Type: Punct}).Is("(") {
		t.Error("punct should match")
	}
	if !(Token{Value: "static", Type: Ident}).Is("static") {
		t.Error("ident should match")
	}
	if (Token{Value: `"("`, Type: String}).Is(`"("`) {
		t.Error("string literal should not match")
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestFiles(t *testing.T) {
	input := "# 1 \"wrapper.h\"\n# 1 \"<built-in>\"\n#line 4 \"/usr/include/liburing.h\" 1\nint x;\n# 12 \"wrapper.h\" 2\n#pragma once\n"
	got := Files(input)
	want := []string{"wrapper.h", "<built-in>", "/usr/include/liburing.h"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Files mismatch (-want +got):\n%s", diff)
	}
}
