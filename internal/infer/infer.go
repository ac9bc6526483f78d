// Package infer computes the element type of untyped aggregate literals.
//
// A list of signals all typed i8 infers as !hw.array<Nxi8>. Lists nest, so a
// list of such lists infers as an array of arrays. Bare integers and maps
// carry no type of their own and are rejected; other values are untyped and
// infer as nil with no error.
package infer

import (
	"fmt"

	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/value"
)

// Infer returns the type of v.
//
// A nil type with a nil error means v is untyped. Callers that need a type
// (build.Builder.Constant) turn that into their own error.
func Infer(v value.Value) (ir.Type, error) {
	switch vv := v.(type) {
	case value.Signal:
		if vv.Type == nil {
			return nil, &UninferableError{
				Value:  v,
				Reason: fmt.Sprintf("signal %q has no type", vv.Name),
			}
		}
		return vv.Type, nil
	case value.List:
		return inferList(vv)
	case value.Int:
		return nil, &UninferableError{
			Value:  v,
			Reason: fmt.Sprintf("cannot infer width of %d", int64(vv)),
		}
	case value.Map:
		return nil, &UninferableError{
			Value:  v,
			Reason: "cannot infer struct field order",
		}
	default:
		return nil, nil
	}
}

func inferList(list value.List) (ir.Type, error) {
	if len(list) == 0 {
		return nil, &UninferableError{Value: list, Reason: "cannot infer element type of an empty list"}
	}

	var elem ir.Type
	for i, item := range list {
		t, err := Infer(item)
		if err != nil {
			return nil, withIndex(err, i)
		}
		if t == nil {
			return nil, &UninferableError{
				Value:  list,
				Reason: fmt.Sprintf("element [%d] (%s) is untyped", i, value.TypeName(item)),
			}
		}
		if i == 0 {
			elem = t
			continue
		}
		if !ir.TypeEqual(elem, t) {
			return nil, &AmbiguousArrayError{Index: i, Want: elem, Got: t, Value: list}
		}
	}

	return ir.ArrayType{Elem: elem, Len: len(list)}, nil
}
