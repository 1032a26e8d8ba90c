package domain

import (
	"errors"
	"fmt"
)

// Common domain errors for comparison operations.
var (
	// ErrBothSidesFailed indicates neither side produced a usable
	// answer, yielding a technical tie.
	ErrBothSidesFailed = errors.New("both sides failed")

	// ErrBatchSize indicates a batch violates the MinBatchSize or
	// MaxBatchSize bounds.
	ErrBatchSize = errors.New("batch size out of range")

	// ErrEmptyValue indicates that a required value is empty.
	ErrEmptyValue = errors.New("empty value")
)

// ValidationError represents a precondition violation on caller input.
// It can accumulate multiple failures before being returned.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity, Errors: make([]string, 0)}
}
