package domain

import (
	"errors"
	"fmt"
)

var ErrMissingField = errors.New("required field is missing")

// FieldError names the first required field that failed validation.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

func fieldError(field string) error {
	return &FieldError{Field: field}
}

// ErrLoginRequired means the action needs a session token and there is none
// or the backend rejected it.
var ErrLoginRequired = errors.New("please login to continue")
