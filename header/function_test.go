package header

import (
	"testing"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		name string
		toks []string
		want string
	}{
		{"pointer_result", []string{"struct", "io_uring_sqe", "*", "io_uring_get_sqe", "(", "struct", "io_uring", "*", "ring", ")"},
			"struct io_uring_sqe *io_uring_get_sqe(struct io_uring *ring)"},
		{"function_pointer", []string{"void", "(", "*", "fn", ")", "(", "int", ")"}, "void (*fn)(int)"},
		{"array", []string{"int", "v", "[", "4", "]"}, "int v[4]"},
		{"variadic", []string{"int", "printf", "(", "const", "char", "*", "fmt", ",", "...", ")"}, "int printf(const char *fmt, ...)"},
		{"double_pointer", []string{"char", "*", "*", "argv"}, "char **argv"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(tt.toks); got != tt.want {
				t.Errorf("Join() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFunctionPrototype(t *testing.T) {
	ring := Param{Name: "ring", Spelling: []string{"struct", "io_uring", "*", "ring"}, NameAt: 3}
	tests := []struct {
		name string
		fn   Function
		want string
	}{
		{"no_params", Function{Name: "setup", Result: []string{"void"}}, "void setup__extern(void)"},
		{"unprototyped", Function{Name: "setup", Result: []string{"int"}, Unprototyped: true}, "int setup__extern()"},
		{"params", Function{Name: "f", Result: []string{"unsigned"}, Params: []Param{ring}}, "unsigned f__extern(struct io_uring *ring)"},
		{"variadic", Function{Name: "f", Result: []string{"int"}, Params: []Param{ring}, Variadic: true}, "int f__extern(struct io_uring *ring, ...)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn.Prototype(tt.fn.Name + "__extern"); got != tt.want {
				t.Errorf("Prototype() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFunctionIsVoid(t *testing.T) {
	if !(&Function{Result: []string{"void"}}).IsVoid() {
		t.Error("void result should be void")
	}
	if (&Function{Result: []string{"void", "*"}}).IsVoid() {
		t.Error("void * result is not void")
	}
}

func TestParamWithName(t *testing.T) {
	unnamed := Param{Spelling: []string{"unsigned"}, NameAt: -1}
	named := unnamed.WithName("arg0")
	if named.String() != "unsigned arg0" || named.Name != "arg0" || named.NameAt != 1 {
		t.Errorf("unexpected param %+v", named)
	}
	if unnamed.String() != "unsigned" {
		t.Error("WithName modified the receiver")
	}

	renamed := Param{Name: "ring", Spelling: []string{"struct", "io_uring", "*", "ring"}, NameAt: 3}.WithName("r")
	if renamed.String() != "struct io_uring *r" {
		t.Errorf("renamed = %q", renamed.String())
	}
}

func TestLinkageString(t *testing.T) {
	if LinkageExternal.String() != "external" || LinkageInlineOnly.String() != "inline-only" {
		t.Error("unexpected linkage names")
	}
}
