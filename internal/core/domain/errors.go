package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrDuplicateEmployee      = errors.New("employee already exists")
	ErrConcurrentModification = errors.New("employee was modified concurrently")
	ErrInvalidEmployee        = errors.New("invalid employee")
)

// NotFoundError is returned by id-keyed service operations when the store
// has no record for ID.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee not found with id: %d", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrEmployeeNotFound }

// NotFound builds a NotFoundError for id.
func NotFound(id int64) error {
	return &NotFoundError{ID: id}
}

// UniqueViolationError reports a write that would duplicate a unique field.
type UniqueViolationError struct {
	Field string
	Value string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("%s %q is already in use", e.Field, e.Value)
}

func (e *UniqueViolationError) Unwrap() error { return ErrDuplicateEmployee }

// ValidationError reports a field that violates the employee schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrInvalidEmployee }
