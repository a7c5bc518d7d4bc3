package header

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/hashset"
)

// Description is the foreign function description of one header.
type Description struct {
	// Header is the path of the ingested header.
	Header string
	// Dependencies lists the header and every file it includes, in the
	// order the preprocessor entered them.
	Dependencies []string

	functions *linkedhashmap.Map // name -> *Function, declaration order
	typedefs  *hashset.Set
	symbols   *hashset.Set
}

func newDescription(path string) *Description {
	return &Description{
		Header:    path,
		functions: linkedhashmap.New(),
		typedefs:  hashset.New(),
		symbols:   hashset.New(),
	}
}

// Functions returns the function table in declaration order.
func (d *Description) Functions() []*Function {
	out := make([]*Function, 0, d.functions.Size())
	for _, v := range d.functions.Values() {
		out = append(out, v.(*Function))
	}
	return out
}

// Function looks up one function by name.
func (d *Description) Function(name string) (*Function, bool) {
	v, ok := d.functions.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Function), true
}

// InlineOnly returns the functions that need a wrapper, in declaration order.
func (d *Description) InlineOnly() []*Function {
	return d.filter(LinkageInlineOnly)
}

// Linkable returns the functions declared against their own symbol.
func (d *Description) Linkable() []*Function {
	return d.filter(LinkageExternal)
}

func (d *Description) filter(l Linkage) []*Function {
	var out []*Function
	for _, fn := range d.Functions() {
		if fn.Linkage == l {
			out = append(out, fn)
		}
	}
	return out
}

// HasSymbol reports whether name is declared at file scope by the header,
// including functions left out of the table. Struct, union and enum tags
// live in their own namespace and are not recorded.
func (d *Description) HasSymbol(name string) bool {
	return d.symbols.Contains(name)
}

// IsTypedef reports whether name is a typedef name.
func (d *Description) IsTypedef(name string) bool {
	return d.typedefs.Contains(name)
}

// Len returns the number of functions in the table.
func (d *Description) Len() int {
	return d.functions.Size()
}

func (d *Description) addFunction(fn *Function) {
	d.functions.Put(fn.Name, fn)
}

func (d *Description) removeFunction(name string) {
	d.functions.Remove(name)
}
