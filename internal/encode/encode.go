// Package encode converts host values into IR attributes.
//
// Encode is the untyped path: integers get DefaultWidth. EncodeTyped is the
// narrow typed path that carries an explicit bit width. Neither path caches,
// interns, or mutates its input; the same value always yields a structurally
// equal attribute.
package encode

import (
	"fmt"

	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/value"
)

// DefaultWidth is the signless width given to integers with no declared type.
const DefaultWidth = 64

// Encode converts v into an attribute.
//
// Cases are tried in order; the first match wins:
//
//	Null (or a nil Value)  BoolAttr(false)
//	Attr                   the attribute itself
//	TypeHandle             TypeAttr
//	Bool                   BoolAttr
//	Int                    IntegerAttr of DefaultWidth, signless
//	String                 StringAttr
//	List                   ArrayAttr, elementwise
//	Map                    DictAttr keyed by the original names
//	AppID                  its underlying attribute
//	any FieldView          DictAttr over Fields()
//
// Anything else fails with *UnsupportedValueError. A failure anywhere inside a
// List or Map fails the whole value; no partial attribute is returned.
//
// Null collapsing to false matches the existing parameter format. Callers
// must not rely on null round-tripping to a distinguishable attribute.
func Encode(v value.Value) (ir.Attribute, error) {
	switch vv := v.(type) {
	case nil, value.Null:
		return ir.MakeBool(false), nil
	case value.Attr:
		if vv.Attribute == nil {
			return nil, &UnsupportedValueError{TypeName: value.TypeName(v), Value: v, Reason: "nil attribute handle"}
		}
		return vv.Attribute, nil
	case value.TypeHandle:
		if vv.Type == nil {
			return nil, &UnsupportedValueError{TypeName: value.TypeName(v), Value: v, Reason: "nil type handle"}
		}
		return ir.MakeTypeAttr(vv.Type), nil
	case value.Bool:
		return ir.MakeBool(bool(vv)), nil
	case value.Int:
		return ir.MakeInteger(DefaultWidth, int64(vv)), nil
	case value.String:
		return ir.MakeString(string(vv)), nil
	case value.List:
		return encodeList(vv)
	case value.Map:
		return encodeFields(v, vv.Fields())
	case value.AppID:
		return vv.Underlying(), nil
	}

	if fv, ok := v.(value.FieldView); ok {
		return encodeFields(v, fv.Fields())
	}

	return nil, &UnsupportedValueError{TypeName: value.TypeName(v), Value: v}
}

func encodeList(list value.List) (ir.Attribute, error) {
	elems := make([]ir.Attribute, len(list))
	for i, elem := range list {
		a, err := Encode(elem)
		if err != nil {
			return nil, withPath(err, indexSeg(i))
		}
		elems[i] = a
	}
	return ir.MakeArray(elems...), nil
}

// encodeFields walks fields in source order and builds a DictAttr.
func encodeFields(owner value.Value, fields []value.Field) (ir.Attribute, error) {
	named := make([]ir.NamedAttr, len(fields))
	for i, f := range fields {
		a, err := Encode(f.Value)
		if err != nil {
			return nil, withPath(err, f.Name)
		}
		named[i] = ir.NA(f.Name, a)
	}

	d, err := ir.MakeDict(named...)
	if err != nil {
		return nil, &UnsupportedValueError{
			TypeName: value.TypeName(owner),
			Value:    owner,
			Reason:   err.Error(),
		}
	}
	return d, nil
}

// EncodeTyped converts v into an attribute of the declared type t.
//
// Only fixed-width integer types are supported: v must be an Int (or a Bool,
// taken as 0/1) that fits t's width and signedness, and the result is an
// IntegerAttr of t. Signless types accept both the signed and the unsigned
// interpretation. Any other t fails with *UnsupportedTypeError.
func EncodeTyped(v value.Value, t ir.Type) (ir.Attribute, error) {
	it, ok := t.(ir.IntegerType)
	if !ok {
		return nil, &UnsupportedTypeError{Type: t}
	}

	var n int64
	switch vv := v.(type) {
	case value.Int:
		n = int64(vv)
	case value.Bool:
		if vv {
			n = 1
		}
	default:
		return nil, &UnsupportedValueError{
			TypeName: value.TypeName(v),
			Value:    v,
			Reason:   fmt.Sprintf("expected an integer for type %s", it),
		}
	}

	if !fits(n, it) {
		return nil, &UnsupportedValueError{
			TypeName: value.TypeName(v),
			Value:    v,
			Reason:   fmt.Sprintf("value %d does not fit in %s", n, it),
		}
	}
	return ir.MakeTypedInteger(it, n), nil
}

// fits reports whether n is representable in t.
func fits(n int64, t ir.IntegerType) bool {
	w := t.Width
	if w <= 0 {
		return n == 0
	}

	signedOK := w >= 64 || (n >= -(int64(1)<<(w-1)) && n < int64(1)<<(w-1))
	unsignedOK := n >= 0 && (w >= 64 || uint64(n) < uint64(1)<<w)

	switch t.Signedness {
	case ir.Signed:
		return signedOK
	case ir.Unsigned:
		return unsignedOK
	default:
		return signedOK || unsignedOK
	}
}

// DictFromOptional encodes an optional parameter map.
// A nil map yields an empty DictAttr.
func DictFromOptional(m *value.Map) (ir.DictAttr, error) {
	if m == nil {
		return ir.DictAttr{}, nil
	}
	a, err := encodeFields(*m, m.Fields())
	if err != nil {
		return nil, err
	}
	return a.(ir.DictAttr), nil
}
