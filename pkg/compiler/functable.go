package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// FunctionTable maps function names to entry offsets: the absolute index of
// the first instruction of each function body. The driver fills it before
// lowering; lowering and rendering only read it.
type FunctionTable struct {
	entries map[string]int
}

func NewFunctionTable() *FunctionTable {
	return &FunctionTable{entries: make(map[string]int)}
}

// Define records name's entry offset. Redefining a name at the same offset
// is allowed; at a different offset it is an error.
func (f *FunctionTable) Define(name string, offset int) error {
	if name == "" {
		return fmt.Errorf("function name must not be empty")
	}
	if offset < 0 {
		return fmt.Errorf("function %q: negative entry offset %d", name, offset)
	}
	if prev, ok := f.entries[name]; ok && prev != offset {
		return fmt.Errorf("function %q already defined at offset %d (redefined at %d)", name, prev, offset)
	}
	f.entries[name] = offset
	return nil
}

// Lookup returns name's entry offset. A nil table holds no functions.
func (f *FunctionTable) Lookup(name string) (int, bool) {
	if f == nil {
		return 0, false
	}
	off, ok := f.entries[name]
	return off, ok
}

// Merge defines every entry of other in f.
func (f *FunctionTable) Merge(other *FunctionTable) error {
	if other == nil {
		return nil
	}
	for _, name := range other.Names() {
		if err := f.Define(name, other.entries[name]); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of functions in the table.
func (f *FunctionTable) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Names returns the function names in sorted order.
func (f *FunctionTable) Names() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.entries))
	for name := range f.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a deterministically ordered dump of the table.
func (f *FunctionTable) String() string {
	if f.Len() == 0 {
		return "Functions: (empty)\n"
	}
	var sb strings.Builder
	sb.WriteString("Functions:\n")
	for _, name := range f.Names() {
		fmt.Fprintf(&sb, "  %-20s  Entry: %d\n", name, f.entries[name])
	}
	return sb.String()
}
