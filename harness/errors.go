package harness

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidState is matched (via errors.Is) by every InvalidStateError.
var ErrInvalidState = errors.New("invalid test run state")

// InvalidStateError describes an operation attempted on a TestRun in a status that does not allow it. It indicates a
// bug in the caller, not a test outcome.
type InvalidStateError struct {
	// Operation is the name of the rejected operation.
	Operation string

	// Status is the status the TestRun was in.
	Status Status
}

// Error returns the error message string, implementing the `error` interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a test run in status %s", e.Operation, e.Status)
}

// Is reports whether target is ErrInvalidState.
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// newInvalidStateError returns an InvalidStateError carrying a stack trace of the offending call.
func newInvalidStateError(operation string, status Status) error {
	return errors.WithStack(&InvalidStateError{Operation: operation, Status: status})
}
