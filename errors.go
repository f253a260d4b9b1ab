package runnerboard

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps every ValidationError. Callers answer it with 400.
	ErrValidation = errors.New("invalid submission")
	// ErrUnsupported marks a request the service does not serve, such as an
	// unknown method on a route.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrNotFound is returned for an identity with no entry on the board.
	ErrNotFound = errors.New("not found")
	// ErrInternal wraps store faults. Its detail is only shown in debug mode.
	ErrInternal = errors.New("internal error")
)

// ValidationError describes why a submission was refused.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}
