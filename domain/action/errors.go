package action

import (
	"errors"
	"fmt"
)

// Domain errors for the action catalog.
var (
	// ErrDecode indicates an encoded action or decision does not match the catalog schema.
	ErrDecode = errors.New("decode error")

	// ErrValidation indicates a decoded action violates a field constraint.
	ErrValidation = errors.New("validation error")

	// ErrUnknownKind indicates the tool tag is not part of the catalog.
	ErrUnknownKind = errors.New("unknown action kind")
)

// ValidationError describes a field constraint violated by a decoded action.
type ValidationError struct {
	Kind   Kind
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", e.Kind, e.Field, e.Reason)
}

// Is reports whether the target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
