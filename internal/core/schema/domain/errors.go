package domain

import (
	"errors"
	"fmt"
)

// Error types shared across the schema and query layers.
var (
	// ErrValidation is the class of all caller-shape errors: malformed
	// schemas, bad identifiers, wrong operator-value shapes.
	ErrValidation = errors.New("validation failed")

	// ErrTypeMapping is the class of type-conversion errors: missing
	// type parameters, wrong host-value shape for a structural kind.
	ErrTypeMapping = errors.New("type mapping failed")

	// ErrNotNullable is raised when a null value is checked against a
	// non-nullable column. This is the one case IsValid raises instead
	// of returning false.
	ErrNotNullable = errors.New("null value for non-nullable column")
)

// ValidationError is a structured validation failure carrying the field
// it refers to.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether the error matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TypeMappingError is a structured type-conversion failure.
type TypeMappingError struct {
	Type    ColumnType
	Message string
}

// Error implements the error interface.
func (e *TypeMappingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Is reports whether the error matches ErrTypeMapping.
func (e *TypeMappingError) Is(target error) bool {
	return target == ErrTypeMapping
}

// NewTypeMappingError creates a TypeMappingError for a column kind.
func NewTypeMappingError(t ColumnType, format string, args ...interface{}) *TypeMappingError {
	return &TypeMappingError{Type: t, Message: fmt.Sprintf(format, args...)}
}
