package entities

import "fmt"

// ValidationError indicates the payload or its schema is structurally
// unacceptable. The message is user-facing and maps to a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ParseError indicates a single cell's numeric value could not be
// coerced. It is contained inside row evaluation and never propagates
// out of an analysis call.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid numeric value: %q", e.Value)
}
