package store

import "errors"

var (
	// ErrNotFound is returned when a page, binding, or incident does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateBinding is returned when a (page, monitor) pair is bound twice.
	ErrDuplicateBinding = errors.New("duplicate binding")

	// ErrConflict is returned when a test-and-create race is detected. Callers
	// retry once before surfacing it.
	ErrConflict = errors.New("conflict")
)
