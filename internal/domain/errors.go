package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrLineNotFound    = errors.New("product not in cart")
	ErrDuplicateCode   = errors.New("product code already in use")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required field: %s", e.Field)
	}
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field}
}

func InvalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
