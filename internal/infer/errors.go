package infer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/value"
)

// AmbiguousArrayError reports a list whose elements do not share one type.
type AmbiguousArrayError struct {
	// Index is the first element whose type differs from element 0.
	Index int

	// Want is the type of element 0.
	Want ir.Type

	// Got is the type found at Index.
	Got ir.Type

	// Value is the offending list.
	Value value.List

	// Path locates the list inside an enclosing list, e.g. ["[1]"].
	Path []string
}

func (e *AmbiguousArrayError) Error() string {
	return fmt.Sprintf("list items must have the same type%s: element [%d] is %s, element [0] is %s",
		pathSuffix(e.Path), e.Index, ir.TypeString(e.Got), ir.TypeString(e.Want))
}

// UninferableError reports a value whose type cannot be determined.
type UninferableError struct {
	Value  value.Value
	Reason string
	Path   []string
}

func (e *UninferableError) Error() string {
	return fmt.Sprintf("cannot infer type of %s%s: %s", value.Format(e.Value), pathSuffix(e.Path), e.Reason)
}

// IsAmbiguous returns true if err is an AmbiguousArrayError.
// Uses errors.As to handle wrapped errors.
func IsAmbiguous(err error) bool {
	var ae *AmbiguousArrayError
	return errors.As(err, &ae)
}

// IsUninferable returns true if err is an UninferableError.
// Uses errors.As to handle wrapped errors.
func IsUninferable(err error) bool {
	var ue *UninferableError
	return errors.As(err, &ue)
}

func withIndex(err error, i int) error {
	seg := fmt.Sprintf("[%d]", i)
	switch e := err.(type) {
	case *AmbiguousArrayError:
		cp := *e
		cp.Path = append([]string{seg}, e.Path...)
		return &cp
	case *UninferableError:
		cp := *e
		cp.Path = append([]string{seg}, e.Path...)
		return &cp
	default:
		return err
	}
}

func pathSuffix(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return " at " + strings.Join(path, "")
}
