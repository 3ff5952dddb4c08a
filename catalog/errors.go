package catalog

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no entity with the given identifier exists.
	ErrNotFound = errors.New("kiez: entity not found")

	// ErrParentNotFound is returned when a child's declared parent doesn't resolve.
	ErrParentNotFound = errors.New("kiez: parent entity not found")

	// ErrConflict is returned when an identifier already exists anywhere in the catalog.
	ErrConflict = errors.New("kiez: identifier already exists")

	// ErrStorageUnavailable is returned when the backing document cannot be
	// read, parsed, or durably written. Document store implementations wrap
	// this sentinel so callers can match with errors.Is.
	ErrStorageUnavailable = errors.New("kiez: document store unavailable")
)

// ValidationError reports the request fields that failed validation.
// The whole operation is rejected; no partial application happens.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "kiez: invalid fields: " + strings.Join(e.Fields, ", ")
}

// invalid builds a ValidationError for the named fields.
func invalid(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
