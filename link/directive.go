package link

import (
	"bufio"
	"io"
	"path/filepath"
)

// Prefix starts every directive line.
const Prefix = "uringgen:"

// Kind is the kind of one directive.
type Kind string

const (
	KindLinkSearch     Kind = "link-search"
	KindLinkStatic     Kind = "link-static"
	KindLinkShared     Kind = "link-shared"
	KindInclude        Kind = "include"
	KindRerunIfChanged Kind = "rerun-if-changed"
)

// Directive is one instruction to the host build.
type Directive struct {
	Kind  Kind
	Value string
}

func (d Directive) String() string {
	return Prefix + string(d.Kind) + "=" + d.Value
}

// Set is an ordered directive list.
type Set struct {
	Directives []Directive
}

// Add appends a directive. Repeated search paths are added once.
func (s *Set) Add(kind Kind, value string) {
	if kind == KindLinkSearch {
		for _, d := range s.Directives {
			if d.Kind == kind && d.Value == value {
				return
			}
		}
	}
	s.Directives = append(s.Directives, Directive{Kind: kind, Value: value})
}

// Values returns the values of every directive of kind, in order.
func (s *Set) Values(kind Kind) []string {
	var out []string
	for _, d := range s.Directives {
		if d.Kind == kind {
			out = append(out, d.Value)
		}
	}
	return out
}

// WriteTo writes one directive per line.
func (s *Set) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, d := range s.Directives {
		m, err := bw.WriteString(d.String() + "\n")
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// LDFlags renders the set as linker flags: search paths, then the static
// archive, then the shared library it depends on.
func (s *Set) LDFlags() []string {
	var flags []string
	for _, dir := range s.Values(KindLinkSearch) {
		flags = append(flags, "-L"+dir)
	}
	for _, lib := range s.Values(KindLinkStatic) {
		flags = append(flags, "-l"+lib)
	}
	for _, lib := range s.Values(KindLinkShared) {
		flags = append(flags, "-l"+lib)
	}
	return flags
}

// CFlags renders the include directives as compiler flags.
func (s *Set) CFlags() []string {
	var flags []string
	for _, inc := range s.Values(KindInclude) {
		flags = append(flags, "-I"+filepath.Dir(inc))
	}
	return flags
}
