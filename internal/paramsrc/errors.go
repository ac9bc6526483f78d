package paramsrc

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error codes shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No parameter files found
	ErrCodeLoadFailed  = "E004" // File could not be read or parsed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE evaluation failed
	ErrCodeWriteFailed = "E007" // Output write error

	ErrCodeInvalidLayout = "E101" // params/types not shaped as expected
	ErrCodeDuplicateSet  = "E102" // Same parameter set name defined twice
	ErrCodeInvalidType   = "E104" // Bad width declaration
	ErrCodeInvalidValue  = "E105" // Value cannot be represented (e.g. int overflow)
)

// LoadError represents an error that occurred while loading parameter files.
type LoadError struct {
	Code    string
	Message string
	File    string
	Line    int
	Col     int
}

func (e *LoadError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Col, e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// newCUEError builds a LoadError positioned at a CUE source position.
func newCUEError(code, msg string, pos token.Pos) *LoadError {
	e := &LoadError{Code: code, Message: msg}
	if pos.IsValid() {
		e.File = pos.Filename()
		e.Line = pos.Line()
		e.Col = pos.Column()
	}
	return e
}

// ErrorCode returns the code of the first LoadError in err's chain, or
// ErrCodeGeneric.
func ErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}
