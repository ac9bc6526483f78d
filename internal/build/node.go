package build

import (
	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/value"
)

// Node is a typed value produced by a Builder.
type Node interface {
	Type() ir.Type
	Location() ir.Location
}

// Constant is a literal of integer type (or an alias of one).
type Constant struct {
	Attr ir.Attribute
	typ  ir.Type
	loc  ir.Location
}

func (c *Constant) Type() ir.Type         { return c.typ }
func (c *Constant) Location() ir.Location { return c.loc }

// Aggregate is an array or struct assembled from element nodes, in
// declaration order.
type Aggregate struct {
	Elems []Node
	typ   ir.Type
	loc   ir.Location
}

func (a *Aggregate) Type() ir.Type         { return a.typ }
func (a *Aggregate) Location() ir.Location { return a.loc }

// Bitcast reinterprets Input's bits as another type of the same width.
type Bitcast struct {
	Input Node
	typ   ir.Type
	loc   ir.Location
}

func (c *Bitcast) Type() ir.Type         { return c.typ }
func (c *Bitcast) Location() ir.Location { return c.loc }

// SignalRef uses an existing signal as a value.
type SignalRef struct {
	Signal value.Signal
	loc    ir.Location
}

func (s *SignalRef) Type() ir.Type         { return s.Signal.Type }
func (s *SignalRef) Location() ir.Location { return s.loc }

// Instance is a parameterized instantiation of a module.
type Instance struct {
	Name   string
	Module string
	Params ir.DictAttr
	loc    ir.Location
}

func (i *Instance) Location() ir.Location { return i.loc }
