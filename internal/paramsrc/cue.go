package paramsrc

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/value"
)

func loadCUE(path string, data []byte) ([]ParamSet, error) {
	ctx := cuecontext.New()
	root := ctx.CompileBytes(data, cue.Filename(path))
	if err := root.Err(); err != nil {
		return nil, formatCUEError(ErrCodeLoadFailed, err)
	}

	paramsVal := root.LookupPath(cue.ParsePath("params"))
	if !paramsVal.Exists() {
		return nil, newCUEError(ErrCodeInvalidLayout, "params section is required", root.Pos())
	}
	if err := paramsVal.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(ErrCodeBuildFailed, err)
	}

	iter, err := paramsVal.Fields()
	if err != nil {
		return nil, newCUEError(ErrCodeInvalidLayout, "params must be a struct of parameter sets", paramsVal.Pos())
	}

	var sets []ParamSet
	for iter.Next() {
		name := iter.Label()
		v, err := fromCUE(iter.Value())
		if err != nil {
			return nil, err
		}
		m, ok := v.(value.Map)
		if !ok {
			return nil, newCUEError(ErrCodeInvalidLayout,
				fmt.Sprintf("params.%s must be a struct", name), iter.Value().Pos())
		}

		types, err := cueTypes(root, name)
		if err != nil {
			return nil, err
		}

		ps := ParamSet{Name: name, Source: path, Params: m, Types: types}
		if err := checkTypes(ps); err != nil {
			return nil, err
		}
		sets = append(sets, ps)
	}
	return sets, nil
}

// cueTypes reads types.<name>, a struct of parameter name to "iN"/"siN"/"uiN".
func cueTypes(root cue.Value, name string) (map[string]ir.IntegerType, error) {
	tv := root.LookupPath(cue.MakePath(cue.Str("types"), cue.Str(name)))
	if !tv.Exists() {
		return nil, nil
	}

	iter, err := tv.Fields()
	if err != nil {
		return nil, newCUEError(ErrCodeInvalidLayout, fmt.Sprintf("types.%s must be a struct", name), tv.Pos())
	}

	types := make(map[string]ir.IntegerType)
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, newCUEError(ErrCodeInvalidType,
				fmt.Sprintf("types.%s.%s must be a string", name, iter.Label()), iter.Value().Pos())
		}
		t, err := ir.ParseIntegerType(s)
		if err != nil {
			return nil, newCUEError(ErrCodeInvalidType, err.Error(), iter.Value().Pos())
		}
		types[iter.Label()] = t
	}
	return types, nil
}

// fromCUE converts a concrete CUE value. Struct fields keep declaration order.
// Floats become Opaque so the encoder rejects them with the parameter's path.
func fromCUE(v cue.Value) (value.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return value.Null{}, nil

	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(ErrCodeBuildFailed, err)
		}
		return value.Bool(b), nil

	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, newCUEError(ErrCodeInvalidValue, fmt.Sprintf("integer out of range: %v", v), v.Pos())
		}
		return value.Int(n), nil

	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(ErrCodeBuildFailed, err)
		}
		return value.Opaque{Go: f}, nil

	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(ErrCodeBuildFailed, err)
		}
		return value.String(s), nil

	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, formatCUEError(ErrCodeBuildFailed, err)
		}
		return value.Opaque{Go: b}, nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(ErrCodeBuildFailed, err)
		}
		list := value.List{}
		for iter.Next() {
			elem, err := fromCUE(iter.Value())
			if err != nil {
				return nil, err
			}
			list = append(list, elem)
		}
		return list, nil

	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(ErrCodeBuildFailed, err)
		}
		var fields []value.Field
		for iter.Next() {
			elem, err := fromCUE(iter.Value())
			if err != nil {
				return nil, err
			}
			fields = append(fields, value.F(iter.Label(), elem))
		}
		m, err := value.NewMap(fields...)
		if err != nil {
			return nil, newCUEError(ErrCodeInvalidLayout, err.Error(), v.Pos())
		}
		return m, nil

	default:
		if err := v.Err(); err != nil {
			return nil, formatCUEError(ErrCodeBuildFailed, err)
		}
		return nil, newCUEError(ErrCodeBuildFailed, fmt.Sprintf("value is not concrete: %v", v), v.Pos())
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(code string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return newCUEError(code, first.Error(), positions[0])
	}
	return &LoadError{Code: code, Message: first.Error()}
}
