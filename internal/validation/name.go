package validation

import (
	"errors"
	"strings"
)

// ErrRequired marks a missing form value
var ErrRequired = errors.New("is required")

// FieldError names the form field a check failed on
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Required fails when value is blank
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: field, Err: ErrRequired}
	}
	return nil
}
