package script

import (
	"fmt"

	"tally/cell"
)

// RuntimeError is a failure raised by the formula itself: a type mismatch,
// an unknown identifier, a bad builtin call.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

func runtimeErrorf(format string, args ...any) error {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}

// CellError carries an upstream cell failure through formula evaluation
// without losing its kind. A formula that reads an errored cell fails with
// the same kind, which is how cycle errors propagate across a cycle.
type CellError struct {
	Failure cell.FailureKind
	Message string
}

func (e *CellError) Error() string { return e.Message }
