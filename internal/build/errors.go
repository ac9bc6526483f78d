package build

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/value"
)

// ConstructError reports a value that does not match the type it is being
// built as.
type ConstructError struct {
	Type   ir.Type
	Value  value.Value
	Reason string

	// Err is the underlying failure, if any. Its message is used when Reason
	// is empty.
	Err error

	// Path locates the value inside an aggregate, e.g. ["taps", "[3]"].
	Path []string
}

func (e *ConstructError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot build %s from %s", ir.TypeString(e.Type), value.Format(e.Value))
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		for i, seg := range e.Path {
			if i > 0 && !strings.HasPrefix(seg, "[") {
				b.WriteByte('.')
			}
			b.WriteString(seg)
		}
	}
	switch {
	case e.Reason != "":
		b.WriteString(": ")
		b.WriteString(e.Reason)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConstructError) Unwrap() error {
	return e.Err
}

// IsConstructError returns true if err is a ConstructError.
// Uses errors.As to handle wrapped errors.
func IsConstructError(err error) bool {
	var ce *ConstructError
	return errors.As(err, &ce)
}

func withSeg(err error, seg string) error {
	var ce *ConstructError
	if !errors.As(err, &ce) {
		return err
	}
	cp := *ce
	cp.Path = append([]string{seg}, ce.Path...)
	return &cp
}
