// Package build constructs typed constant values from host values.
//
// A Builder stamps every node it creates with the user's source location,
// resolved from the call stack with the builder's own frames hidden. Types
// come either from inference (Constant) or from the caller (ConstantOf).
package build

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/roach88/hwparam/internal/encode"
	"github.com/roach88/hwparam/internal/infer"
	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/loc"
	"github.com/roach88/hwparam/internal/value"
)

// selfFile is hidden from every builder's resolver.
var selfFile = func() string {
	_, file, _, _ := runtime.Caller(0)
	return file
}()

// Builder creates nodes. It holds no mutable state and is safe for
// concurrent use.
type Builder struct {
	resolver *loc.Resolver
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithResolver sets the location resolver.
// The builder's own source file is hidden in addition to r's set.
func WithResolver(r *loc.Resolver) Option {
	return func(b *Builder) {
		b.resolver = r
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		resolver: loc.Default,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.resolver = b.resolver.With(selfFile)
	return b
}

// Constant builds v with an inferred type.
//
// Only values whose type can be inferred (signals and uniform lists of them)
// are accepted. Use ConstantOf when the type is known.
func (b *Builder) Constant(v value.Value) (Node, error) {
	l := b.resolver.Resolve()

	t, err := infer.Infer(v)
	if err != nil {
		return nil, fmt.Errorf("constant: %w", err)
	}
	if t == nil {
		return nil, &ConstructError{Value: v, Reason: "cannot infer type"}
	}
	return b.construct(t, v, l)
}

// ConstantOf builds v as a value of type t.
func (b *Builder) ConstantOf(t ir.Type, v value.Value) (Node, error) {
	return b.construct(t, v, b.resolver.Resolve())
}

// ConstZero builds an all-zero value of type t: a signless zero as wide as t,
// bitcast to t.
func (b *Builder) ConstZero(t ir.Type) (Node, error) {
	l := b.resolver.Resolve()

	w, err := ir.BitwidthOf(t)
	if err != nil {
		return nil, &ConstructError{Type: t, Value: value.Int(0), Reason: err.Error()}
	}
	zero := &Constant{Attr: ir.MakeTypedInteger(ir.Bits(w), 0), typ: ir.Bits(w), loc: l}

	b.logger.Debug("zero constant built", "type", t.String(), "width", w, "loc", l.String())
	return &Bitcast{Input: zero, typ: t, loc: l}, nil
}

// Instance records an instantiation of module with the given parameters.
// A nil params map means no parameters.
func (b *Builder) Instance(name, module string, params *value.Map) (*Instance, error) {
	l := b.resolver.Resolve()

	d, err := encode.DictFromOptional(params)
	if err != nil {
		return nil, fmt.Errorf("instance %s of %s: %w", name, module, err)
	}

	b.logger.Debug("instance built",
		"name", name,
		"module", module,
		"params", len(d),
		"loc", l.String(),
	)
	return &Instance{Name: name, Module: module, Params: d, loc: l}, nil
}

func (b *Builder) construct(t ir.Type, v value.Value, l ir.Location) (Node, error) {
	n, err := b.build(t, v, l)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("constant built", "type", t.String(), "loc", l.String())
	return n, nil
}

func (b *Builder) build(t ir.Type, v value.Value, l ir.Location) (Node, error) {
	if sig, ok := v.(value.Signal); ok {
		if !ir.TypeEqual(sig.Type, t) {
			return nil, &ConstructError{
				Type:   t,
				Value:  v,
				Reason: fmt.Sprintf("signal %q has type %s", sig.Name, ir.TypeString(sig.Type)),
			}
		}
		return &SignalRef{Signal: sig, loc: l}, nil
	}

	switch tt := t.(type) {
	case ir.IntegerType:
		a, err := encode.EncodeTyped(v, tt)
		if err != nil {
			return nil, &ConstructError{Type: t, Value: v, Err: err}
		}
		return &Constant{Attr: a, typ: tt, loc: l}, nil

	case ir.ArrayType:
		list, ok := v.(value.List)
		if !ok {
			return nil, &ConstructError{Type: t, Value: v, Reason: "expected a list"}
		}
		if len(list) != tt.Len {
			return nil, &ConstructError{
				Type:   t,
				Value:  v,
				Reason: fmt.Sprintf("expected %d elements, got %d", tt.Len, len(list)),
			}
		}
		elems := make([]Node, len(list))
		for i, item := range list {
			n, err := b.build(tt.Elem, item, l)
			if err != nil {
				return nil, withSeg(err, fmt.Sprintf("[%d]", i))
			}
			elems[i] = n
		}
		return &Aggregate{Elems: elems, typ: tt, loc: l}, nil

	case ir.StructType:
		return b.buildStruct(tt, v, l)

	case ir.AliasType:
		inner, err := b.build(tt.Inner, v, l)
		if err != nil {
			return nil, err
		}
		return retype(inner, tt), nil

	default:
		return nil, &ConstructError{Type: t, Value: v, Reason: "unsupported type"}
	}
}

func (b *Builder) buildStruct(t ir.StructType, v value.Value, l ir.Location) (Node, error) {
	var fields []value.Field
	switch vv := v.(type) {
	case value.Map:
		fields = vv.Fields()
	case value.FieldView:
		fields = vv.Fields()
	default:
		return nil, &ConstructError{Type: t, Value: v, Reason: "expected a map or record"}
	}

	byName := make(map[string]value.Value, len(fields))
	for _, f := range fields {
		if _, dup := byName[f.Name]; dup {
			return nil, &ConstructError{Type: t, Value: v, Reason: fmt.Sprintf("duplicate field %q", f.Name)}
		}
		byName[f.Name] = f.Value
	}
	if len(byName) != len(t.Fields) {
		return nil, &ConstructError{
			Type:   t,
			Value:  v,
			Reason: fmt.Sprintf("expected %d fields, got %d", len(t.Fields), len(byName)),
		}
	}

	elems := make([]Node, len(t.Fields))
	for i, sf := range t.Fields {
		fv, ok := byName[sf.Name]
		if !ok {
			return nil, &ConstructError{Type: t, Value: v, Reason: fmt.Sprintf("missing field %q", sf.Name)}
		}
		n, err := b.build(sf.Type, fv, l)
		if err != nil {
			return nil, withSeg(err, sf.Name)
		}
		elems[i] = n
	}
	return &Aggregate{Elems: elems, typ: t, loc: l}, nil
}

// retype gives n the alias type t.
func retype(n Node, t ir.AliasType) Node {
	switch nn := n.(type) {
	case *Constant:
		cp := *nn
		cp.typ = t
		return &cp
	case *Aggregate:
		cp := *nn
		cp.typ = t
		return &cp
	default:
		return &Bitcast{Input: n, typ: t, loc: n.Location()}
	}
}
