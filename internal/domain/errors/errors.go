// Package errors defines domain-specific error types.
// Using typed errors (instead of strings) allows clients to handle specific cases.
//
// The directory service delegates every business rule to stored procedures,
// so most errors here describe the boundary with the database: a failed call,
// a result set with an unexpected shape, or a column that cannot be converted.
//
// Pattern: Sentinel Errors + Custom Error Types
package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrUnsupportedDriver - неизвестный драйвер базы данных в конфигурации.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// ValidationError represents a caller input failure on a single field.
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // What went wrong
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(e))
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ProcedureError wraps any failure raised while opening a connection,
// binding parameters or executing a stored call.
type ProcedureError struct {
	Procedure string // Stored procedure name as configured
	Op        string // connect, execute, read, commit
	Err       error
}

// Error implements the error interface.
//
// The message keeps the driver text last so that callers reading the
// envelope still see the original database description.
func (e *ProcedureError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Procedure, e.Err)
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *ProcedureError) Unwrap() error {
	return e.Err
}

// NewProcedureError creates a new procedure error.
func NewProcedureError(procedure, op string, err error) *ProcedureError {
	return &ProcedureError{
		Procedure: procedure,
		Op:        op,
		Err:       err,
	}
}

// ColumnError is returned when a present column value cannot be converted
// to the requested Go type, or is NULL where a value is required.
type ColumnError struct {
	Column string
	Want   string // target kind: "int", "string", "time"
	Value  any
	Err    error
}

// Error implements the error interface.
func (e *ColumnError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("column %q: cannot convert %T to %s: %v", e.Column, e.Value, e.Want, e.Err)
	}
	return fmt.Sprintf("column %q: cannot convert %T to %s", e.Column, e.Value, e.Want)
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *ColumnError) Unwrap() error {
	return e.Err
}

// NewColumnError creates a new column conversion error.
func NewColumnError(column, want string, value any, err error) *ColumnError {
	return &ColumnError{
		Column: column,
		Want:   want,
		Value:  value,
		Err:    err,
	}
}

// Helper functions for common error checking

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var valErr ValidationError
	var valErrs ValidationErrors
	return errors.As(err, &valErr) || errors.As(err, &valErrs)
}

// IsProcedureError checks if an error originated at the database boundary.
func IsProcedureError(err error) bool {
	var pe *ProcedureError
	return errors.As(err, &pe)
}

// IsColumnError checks if an error is a column conversion failure.
func IsColumnError(err error) bool {
	var ce *ColumnError
	return errors.As(err, &ce)
}
