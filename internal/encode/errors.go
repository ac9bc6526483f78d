package encode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/value"
)

// UnsupportedValueError reports a value the encoder has no case for, or a
// value that cannot be represented in the requested type.
type UnsupportedValueError struct {
	// TypeName is the kind of the offending value (value.TypeName).
	TypeName string

	// Value is the offending value itself.
	Value value.Value

	// Reason is set when the kind is supported but this value is not.
	Reason string

	// Path locates the value inside the encoded tree, e.g. ["widths", "[2]"].
	Path []string
}

func (e *UnsupportedValueError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot convert value of type '%s' (%s) to an attribute", e.TypeName, value.Format(e.Value))
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(joinPath(e.Path))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// UnsupportedTypeError reports a declared type the typed encoder cannot map.
type UnsupportedTypeError struct {
	Type ir.Type
	Path []string
}

func (e *UnsupportedTypeError) Error() string {
	msg := fmt.Sprintf("type '%s' conversion to attribute not supported", ir.TypeString(e.Type))
	if len(e.Path) > 0 {
		msg += " at " + joinPath(e.Path)
	}
	return msg
}

// IsUnsupportedValue returns true if err is an UnsupportedValueError.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedValue(err error) bool {
	var ue *UnsupportedValueError
	return errors.As(err, &ue)
}

// IsUnsupportedType returns true if err is an UnsupportedTypeError.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedType(err error) bool {
	var te *UnsupportedTypeError
	return errors.As(err, &te)
}

// withPath returns err with seg prepended to its path. Errors that carry no
// path are returned unchanged.
func withPath(err error, seg string) error {
	switch e := err.(type) {
	case *UnsupportedValueError:
		cp := *e
		cp.Path = append([]string{seg}, e.Path...)
		return &cp
	case *UnsupportedTypeError:
		cp := *e
		cp.Path = append([]string{seg}, e.Path...)
		return &cp
	default:
		return err
	}
}

// joinPath renders ["params", "widths", "[2]"] as "params.widths[2]".
func joinPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func indexSeg(i int) string {
	return fmt.Sprintf("[%d]", i)
}
