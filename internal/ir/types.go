package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is a sealed interface representing hardware IR types.
// Only IntegerType, ArrayType, StructType, and AliasType implement this.
type Type interface {
	irType() // Sealed - only these types implement it
	String() string
}

// Signedness selects the integer flavour of an IntegerType.
type Signedness int

const (
	// Signless integers carry no sign interpretation (MLIR "iN").
	Signless Signedness = iota
	// Signed integers are two's complement ("siN").
	Signed
	// Unsigned integers ("uiN").
	Unsigned
)

// IntegerType is the fixed-width bit-vector type.
type IntegerType struct {
	Width      int
	Signedness Signedness
}

func (IntegerType) irType() {}

func (t IntegerType) String() string {
	switch t.Signedness {
	case Signed:
		return fmt.Sprintf("si%d", t.Width)
	case Unsigned:
		return fmt.Sprintf("ui%d", t.Width)
	default:
		return fmt.Sprintf("i%d", t.Width)
	}
}

// Bits returns a signless bit vector of the given width.
func Bits(width int) IntegerType {
	return IntegerType{Width: width, Signedness: Signless}
}

// SInt returns a signed integer of the given width.
func SInt(width int) IntegerType {
	return IntegerType{Width: width, Signedness: Signed}
}

// UInt returns an unsigned integer of the given width.
func UInt(width int) IntegerType {
	return IntegerType{Width: width, Signedness: Unsigned}
}

// ArrayType is a fixed-length array of a single element type.
type ArrayType struct {
	Elem Type
	Len  int
}

func (ArrayType) irType() {}

func (t ArrayType) String() string {
	return fmt.Sprintf("!hw.array<%dx%s>", t.Len, t.Elem)
}

// StructField is a named member of a StructType.
type StructField struct {
	Name string
	Type Type
}

// StructType is an ordered record of named fields.
type StructType struct {
	Fields []StructField
}

func (StructType) irType() {}

func (t StructType) String() string {
	var b strings.Builder
	b.WriteString("!hw.struct<")
	for i, f := range t.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.String())
	}
	b.WriteByte('>')
	return b.String()
}

// AliasType gives a user-visible name to an inner type.
type AliasType struct {
	Name  string
	Inner Type
}

func (AliasType) irType() {}

func (t AliasType) String() string {
	return fmt.Sprintf("!hw.typealias<%s, %s>", t.Name, t.Inner)
}

// TypeEqual reports whether a and b are the same kind with the same
// parameters, recursively. A nil Type equals only another nil Type.
func TypeEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch ta := a.(type) {
	case IntegerType:
		tb, ok := b.(IntegerType)
		return ok && ta == tb
	case ArrayType:
		tb, ok := b.(ArrayType)
		return ok && ta.Len == tb.Len && TypeEqual(ta.Elem, tb.Elem)
	case StructType:
		tb, ok := b.(StructType)
		if !ok || len(ta.Fields) != len(tb.Fields) {
			return false
		}
		for i := range ta.Fields {
			if ta.Fields[i].Name != tb.Fields[i].Name || !TypeEqual(ta.Fields[i].Type, tb.Fields[i].Type) {
				return false
			}
		}
		return true
	case AliasType:
		tb, ok := b.(AliasType)
		return ok && ta.Name == tb.Name && TypeEqual(ta.Inner, tb.Inner)
	default:
		return false
	}
}

// BitwidthOf returns the number of bits needed to hold a value of type t.
func BitwidthOf(t Type) (int, error) {
	switch tt := t.(type) {
	case IntegerType:
		return tt.Width, nil
	case ArrayType:
		w, err := BitwidthOf(tt.Elem)
		if err != nil {
			return 0, err
		}
		return w * tt.Len, nil
	case StructType:
		total := 0
		for _, f := range tt.Fields {
			w, err := BitwidthOf(f.Type)
			if err != nil {
				return 0, fmt.Errorf("field %q: %w", f.Name, err)
			}
			total += w
		}
		return total, nil
	case AliasType:
		return BitwidthOf(tt.Inner)
	default:
		return 0, fmt.Errorf("no bit width for type %T", t)
	}
}

// TypeString renders t for diagnostics: aliases by name, arrays as
// "<len>x<elem>", everything else by its IR spelling.
func TypeString(t Type) string {
	switch tt := t.(type) {
	case AliasType:
		return tt.Name
	case ArrayType:
		return fmt.Sprintf("%dx", tt.Len) + TypeString(tt.Elem)
	case nil:
		return "<untyped>"
	default:
		return t.String()
	}
}

// ParseIntegerType parses "iN", "siN", or "uiN".
func ParseIntegerType(s string) (IntegerType, error) {
	var sign Signedness
	var digits string
	switch {
	case strings.HasPrefix(s, "si"):
		sign, digits = Signed, s[2:]
	case strings.HasPrefix(s, "ui"):
		sign, digits = Unsigned, s[2:]
	case strings.HasPrefix(s, "i"):
		sign, digits = Signless, s[1:]
	default:
		return IntegerType{}, fmt.Errorf("invalid integer type %q: want iN, siN, or uiN", s)
	}

	width, err := strconv.Atoi(digits)
	if err != nil || width < 0 || digits == "" || digits[0] == '+' || digits[0] == '-' {
		return IntegerType{}, fmt.Errorf("invalid integer type %q: bad width", s)
	}
	return IntegerType{Width: width, Signedness: sign}, nil
}
