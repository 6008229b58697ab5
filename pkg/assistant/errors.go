package assistant

import (
	"errors"
	"fmt"
)

// Code classifies a pipeline failure for status mapping.
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeGeneration   Code = "generation"
	CodeInternal     Code = "internal"
)

// ErrMissingMessage is returned when a request carries no user turn.
var ErrMissingMessage = errors.New("missing message or query")

// Error is a pipeline failure tagged with a Code.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the Code of err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}
