package entity

import (
	"errors"
	"fmt"
)

// Domain sentinel errors. Repositories and usecases translate their
// storage and transport failures into these so handlers can map them to
// status codes with errors.Is.
var (
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists marks a uniqueness conflict, e.g. a recipe
	// imported twice from the same source URL.
	ErrAlreadyExists = errors.New("entity already exists")

	ErrInvalidInput = errors.New("invalid input")

	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError carries the field that failed validation alongside
// the reason.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is reports true for ErrValidationFailed so callers can match the class
// with errors.Is without inspecting the concrete type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
