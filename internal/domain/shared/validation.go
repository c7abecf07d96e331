package shared

import "errors"

// ValidationError is returned when an operation is rejected before it reaches the store.
// State is left unchanged whenever one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return "validation failed: " + e.Field + ": " + e.Reason
}

// NewValidationError builds a ValidationError for field
func NewValidationError(field, reason string) ValidationError {
	return ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err wraps a ValidationError
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
