package value

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/hwparam/internal/ir"
)

// Value is a sealed interface representing host data handed to the encoder.
// Only the variants in this file implement it. Record is the extension point:
// user types participate by implementing FieldView, not by adding variants.
type Value interface {
	hostValue() // Sealed - only these types implement it
}

// FieldView is implemented by record-like types that expose their fields by
// name, in a stable order.
type FieldView interface {
	Fields() []Field
}

// Field is a single named member of a Map or FieldView.
type Field struct {
	Name  string
	Value Value
}

// F is a shorthand for Field for ergonomic construction.
// Example: MustMap(F("depth", Int(16)), F("name", String("fifo")))
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Null is the absent value.
type Null struct{}

func (Null) hostValue() {}

// Bool is a boolean host value.
type Bool bool

func (Bool) hostValue() {}

// Int is an integer whose width is not known at this layer.
type Int int64

func (Int) hostValue() {}

// String is a text host value.
type String string

func (String) hostValue() {}

// List is an ordered sequence of values.
type List []Value

func (List) hostValue() {}

// Map is an ordered mapping from unique names to values. Build one with
// NewMap so the uniqueness invariant holds.
type Map struct {
	fields []Field
}

func (Map) hostValue() {}

// NewMap creates a Map preserving the given order.
// Returns an error on duplicate names.
func NewMap(fields ...Field) (Map, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return Map{}, fmt.Errorf("duplicate key %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return Map{fields: slices.Clone(fields)}, nil
}

// MustMap is like NewMap but panics on error.
// Use only in tests or when keys are known to be unique.
func MustMap(fields ...Field) Map {
	m, err := NewMap(fields...)
	if err != nil {
		panic(err)
	}
	return m
}

// Fields returns the entries in insertion order.
func (m Map) Fields() []Field {
	return slices.Clone(m.fields)
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m.fields)
}

// Get returns the value stored under name.
func (m Map) Get(name string) (Value, bool) {
	for _, f := range m.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Record wraps a user-defined FieldView.
type Record struct {
	View FieldView
}

func (Record) hostValue() {}

// Fields delegates to the wrapped view.
func (r Record) Fields() []Field {
	if r.View == nil {
		return nil
	}
	return r.View.Fields()
}

// AppID is an application identifier: a name and an optional instance index.
type AppID struct {
	Name     string
	Index    uint64
	HasIndex bool
}

func (AppID) hostValue() {}

// NewAppID creates an indexed application identifier.
func NewAppID(name string, index uint64) AppID {
	return AppID{Name: name, Index: index, HasIndex: true}
}

// Underlying returns the attribute this identifier stands for.
func (a AppID) Underlying() ir.AppIDAttr {
	return ir.AppIDAttr{Name: a.Name, Index: a.Index, HasIndex: a.HasIndex}
}

// Attr is an attribute that was already built elsewhere.
type Attr struct {
	Attribute ir.Attribute
}

func (Attr) hostValue() {}

// TypeHandle is a type that was already built elsewhere.
type TypeHandle struct {
	Type ir.Type
}

func (TypeHandle) hostValue() {}

// Signal is a named hardware value with an explicit type.
type Signal struct {
	Name string
	Type ir.Type
}

func (Signal) hostValue() {}

// Fields exposes the signal as a record: its name and its type.
func (s Signal) Fields() []Field {
	return []Field{
		{Name: "name", Value: String(s.Name)},
		{Name: "type", Value: TypeHandle{Type: s.Type}},
	}
}

// Opaque carries a host datum with no dedicated variant (a float, a channel,
// a struct that does not implement FieldView).
type Opaque struct {
	Go any
}

func (Opaque) hostValue() {}

// Of converts native Go data to a Value.
// Maps are ordered by key since Go map iteration order is random.
// Anything without a dedicated variant becomes Opaque.
func Of(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null{}
	case Value:
		return v
	case ir.Attribute:
		return Attr{Attribute: v}
	case ir.Type:
		return TypeHandle{Type: v}
	case FieldView:
		return Record{View: v}
	case bool:
		return Bool(v)
	case int:
		return Int(v)
	case int8:
		return Int(v)
	case int16:
		return Int(v)
	case int32:
		return Int(v)
	case int64:
		return Int(v)
	case uint:
		return ofUnsigned(uint64(v), x)
	case uint8:
		return Int(v)
	case uint16:
		return Int(v)
	case uint32:
		return Int(v)
	case uint64:
		return ofUnsigned(v, x)
	case string:
		return String(v)
	case []any:
		list := make(List, len(v))
		for i, elem := range v {
			list[i] = Of(elem)
		}
		return list
	case []Value:
		return List(v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fields[i] = Field{Name: k, Value: Of(v[k])}
		}
		return Map{fields: fields}
	default:
		return Opaque{Go: x}
	}
}

func ofUnsigned(u uint64, orig any) Value {
	if u > math.MaxInt64 {
		return Opaque{Go: orig}
	}
	return Int(u)
}

// TypeName names the kind of v for diagnostics.
func TypeName(v Value) string {
	switch vv := v.(type) {
	case nil:
		return "<nil>"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case String:
		return "string"
	case List:
		return "list"
	case Map:
		return "map"
	case Record:
		return fmt.Sprintf("record(%T)", vv.View)
	case AppID:
		return "appid"
	case Attr:
		return "attribute"
	case TypeHandle:
		return "type"
	case Signal:
		return "signal"
	case Opaque:
		return fmt.Sprintf("%T", vv.Go)
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Format renders v in a compact literal form for error messages.
func Format(v Value) string {
	switch vv := v.(type) {
	case nil:
		return "<nil>"
	case Null:
		return "null"
	case Bool:
		return fmt.Sprintf("%t", bool(vv))
	case Int:
		return fmt.Sprintf("%d", int64(vv))
	case String:
		return fmt.Sprintf("%q", string(vv))
	case List:
		parts := make([]string, len(vv))
		for i, e := range vv {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Map:
		return formatFields(vv.fields)
	case Record:
		return formatFields(vv.Fields())
	case AppID:
		return vv.Underlying().String()
	case Attr:
		if vv.Attribute == nil {
			return "<nil attribute>"
		}
		return vv.Attribute.String()
	case TypeHandle:
		return ir.TypeString(vv.Type)
	case Signal:
		return fmt.Sprintf("%s: %s", vv.Name, ir.TypeString(vv.Type))
	case Opaque:
		return fmt.Sprintf("%v", vv.Go)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFields(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, Format(f.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
