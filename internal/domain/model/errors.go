package model

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	// ErrSchema marks input rows that are missing fields or violate a domain.
	ErrSchema = errors.New("schema error")
	// ErrConfiguration marks evaluation parameters that are infeasible for the data.
	ErrConfiguration = errors.New("configuration error")
)

// Error carries the operation and field that produced a schema or
// configuration failure.
type Error struct {
	Op      string // operation that failed, e.g. "abt.Assemble"
	Kind    error  // ErrSchema or ErrConfiguration
	Field   string // offending column or parameter, optional
	Message string
	Err     error // underlying error, optional
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Op
	if e.Field != "" {
		msg += " [" + e.Field + "]"
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error, falling back to the kind.
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches the error kind as well as the wrapped error.
func (e *Error) Is(target error) bool {
	return e.Kind == target || (e.Err != nil && errors.Is(e.Err, target))
}

// SchemaError builds an ErrSchema error.
func SchemaError(op, field, message string) error {
	return &Error{Op: op, Kind: ErrSchema, Field: field, Message: message}
}

// WrapSchemaError builds an ErrSchema error around err.
func WrapSchemaError(op, field, message string, err error) error {
	return &Error{Op: op, Kind: ErrSchema, Field: field, Message: message, Err: err}
}

// ConfigurationError builds an ErrConfiguration error.
func ConfigurationError(op, field, message string) error {
	return &Error{Op: op, Kind: ErrConfiguration, Field: field, Message: message}
}

// DegenerateInput is a non-fatal note that a value was defined by policy
// rather than measured, e.g. consistency for a student with a single event.
type DegenerateInput struct {
	StudentID string
	Feature   string
	Reason    string
}
