// Package runtime provides the client, model orchestrator and the
// execution-collaborator contract.
package runtime

import (
	"errors"
	"fmt"
)

// Error types for runtime operations.
var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrTableNotRegistered is returned when a model references a table
	// the client does not know about.
	ErrTableNotRegistered = errors.New("table not registered")

	// ErrNoExecutor is returned when a terminal operation runs without
	// an execution collaborator configured.
	ErrNoExecutor = errors.New("no executor configured")
)

// QueryError wraps an execution failure with the statement context.
type QueryError struct {
	Operation string
	Table     string
	Cause     error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s on %s: %v", e.Operation, e.Table, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// NewQueryError creates a QueryError.
func NewQueryError(op, table string, cause error) *QueryError {
	return &QueryError{Operation: op, Table: table, Cause: cause}
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
