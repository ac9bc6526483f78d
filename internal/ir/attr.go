package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Attribute is a sealed interface representing immutable IR attributes.
// Only BoolAttr, IntegerAttr, StringAttr, ArrayAttr, DictAttr, TypeAttr, and
// AppIDAttr implement this.
// NO FloatAttr - parameters are bit-exact (see doc.go).
type Attribute interface {
	irAttr() // Sealed - only these types implement it
	String() string
}

// BoolAttr represents a boolean attribute.
type BoolAttr bool

func (BoolAttr) irAttr() {}

func (a BoolAttr) String() string {
	return strconv.FormatBool(bool(a))
}

// IntegerAttr is an integer of an explicit IntegerType.
type IntegerAttr struct {
	Type  IntegerType
	Value int64
}

func (IntegerAttr) irAttr() {}

func (a IntegerAttr) String() string {
	return fmt.Sprintf("%d : %s", a.Value, a.Type)
}

// StringAttr represents a string attribute. Content is kept byte-exact.
type StringAttr string

func (StringAttr) irAttr() {}

func (a StringAttr) String() string {
	return strconv.Quote(string(a))
}

// ArrayAttr is an ordered list of attributes. Elements need not share a kind.
type ArrayAttr []Attribute

func (ArrayAttr) irAttr() {}

func (a ArrayAttr) String() string {
	parts := make([]string, len(a))
	for i, elem := range a {
		parts[i] = elem.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NamedAttr is one entry of a DictAttr.
type NamedAttr struct {
	Name  string
	Value Attribute
}

// DictAttr maps unique names to attributes.
// Entries are always sorted by name; build one with MakeDict.
type DictAttr []NamedAttr

func (DictAttr) irAttr() {}

func (d DictAttr) String() string {
	parts := make([]string, len(d))
	for i, na := range d {
		parts[i] = fmt.Sprintf("%s = %s", na.Name, na.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the attribute stored under name.
func (d DictAttr) Get(name string) (Attribute, bool) {
	for _, na := range d {
		if na.Name == name {
			return na.Value, true
		}
	}
	return nil, false
}

// Names returns the keys in dictionary order.
func (d DictAttr) Names() []string {
	names := make([]string, len(d))
	for i, na := range d {
		names[i] = na.Name
	}
	return names
}

// TypeAttr wraps a Type so it can be used where an attribute is expected.
type TypeAttr struct {
	Type Type
}

func (TypeAttr) irAttr() {}

func (a TypeAttr) String() string {
	return a.Type.String()
}

// AppIDAttr is an application identifier: a name plus an optional index.
type AppIDAttr struct {
	Name     string
	Index    uint64
	HasIndex bool
}

func (AppIDAttr) irAttr() {}

func (a AppIDAttr) String() string {
	if a.HasIndex {
		return fmt.Sprintf("#appid<%q[%d]>", a.Name, a.Index)
	}
	return fmt.Sprintf("#appid<%q>", a.Name)
}

// MakeBool creates a BoolAttr.
func MakeBool(b bool) BoolAttr {
	return BoolAttr(b)
}

// MakeInteger creates a signless IntegerAttr of the given width.
func MakeInteger(width int, value int64) IntegerAttr {
	return IntegerAttr{Type: Bits(width), Value: value}
}

// MakeTypedInteger creates an IntegerAttr of an explicit integer type.
func MakeTypedInteger(t IntegerType, value int64) IntegerAttr {
	return IntegerAttr{Type: t, Value: value}
}

// MakeString creates a StringAttr.
func MakeString(s string) StringAttr {
	return StringAttr(s)
}

// MakeArray creates an ArrayAttr from elements.
func MakeArray(elems ...Attribute) ArrayAttr {
	a := make(ArrayAttr, len(elems))
	copy(a, elems)
	return a
}

// MakeTypeAttr wraps t as an attribute.
func MakeTypeAttr(t Type) TypeAttr {
	return TypeAttr{Type: t}
}

// MakeDict creates a DictAttr from named entries.
// Returns an error on duplicate names. The input slice is not modified.
func MakeDict(fields ...NamedAttr) (DictAttr, error) {
	d := make(DictAttr, len(fields))
	copy(d, fields)
	slices.SortStableFunc(d, func(a, b NamedAttr) int {
		return compareKeysRFC8785(a.Name, b.Name)
	})
	for i := 1; i < len(d); i++ {
		if d[i].Name == d[i-1].Name {
			return nil, fmt.Errorf("duplicate dictionary key %q", d[i].Name)
		}
	}
	return d, nil
}

// NA is a shorthand for NamedAttr for ergonomic construction.
// Example: MakeDict(NA("width", MakeInteger(64, 8)))
func NA(name string, value Attribute) NamedAttr {
	return NamedAttr{Name: name, Value: value}
}

// AttrEqual reports whether a and b are structurally equal.
func AttrEqual(a, b Attribute) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch aa := a.(type) {
	case BoolAttr:
		bb, ok := b.(BoolAttr)
		return ok && aa == bb
	case IntegerAttr:
		bb, ok := b.(IntegerAttr)
		return ok && aa == bb
	case StringAttr:
		bb, ok := b.(StringAttr)
		return ok && aa == bb
	case ArrayAttr:
		bb, ok := b.(ArrayAttr)
		if !ok || len(aa) != len(bb) {
			return false
		}
		for i := range aa {
			if !AttrEqual(aa[i], bb[i]) {
				return false
			}
		}
		return true
	case DictAttr:
		bb, ok := b.(DictAttr)
		if !ok || len(aa) != len(bb) {
			return false
		}
		for i := range aa {
			if aa[i].Name != bb[i].Name || !AttrEqual(aa[i].Value, bb[i].Value) {
				return false
			}
		}
		return true
	case TypeAttr:
		bb, ok := b.(TypeAttr)
		return ok && TypeEqual(aa.Type, bb.Type)
	case AppIDAttr:
		bb, ok := b.(AppIDAttr)
		return ok && aa == bb
	default:
		return false
	}
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
// CRITICAL: Go's default string comparison uses UTF-8 which produces DIFFERENT order.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// If all compared units are equal, shorter string comes first
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	// Invalid UTF-8 decodes to U+FFFD, so distinct keys can tie above.
	return strings.Compare(a, b)
}
