package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every layer.
var (
	// ErrValidation marks a missing or invalid caller-supplied argument.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned by point lookups that find no record.
	ErrNotFound = errors.New("record not found")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Required reports a missing required field.
func Required(field string) error {
	return &ValidationError{Field: field, Reason: "not supplied"}
}

// Invalid reports a present but unacceptable field value.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
