// Package errors defines the error taxonomy shared by the transfigure
// packages.
package errors

import (
	"fmt"
	"strings"
)

// DetailError captures structured error information for display.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the file path (optional).
	Location string

	// Field is the offending field for validation errors (optional).
	Field string

	// Context contains additional key-value context (optional).
	Context map[string]string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(e.Type)
	b.WriteString("\n")

	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}
	if e.Field != "" {
		b.WriteString("  Field: ")
		b.WriteString(e.Field)
		b.WriteString("\n")
	}
	for k, v := range e.Context {
		b.WriteString("  ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error with details.
func NewValidationError(message, location, field, hint string) error {
	return &DetailError{
		Type:     "validation failed",
		Message:  message,
		Location: location,
		Field:    field,
		Hint:     hint,
		Cause:    ErrValidation,
	}
}

// NewNotFoundError creates a not found error with details.
func NewNotFoundError(message, location, hint string) error {
	return &DetailError{
		Type:     "not found",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// MissingTokenError lists every token a specification references that the
// supplied data does not bind. Callers may gather the values and retry.
type MissingTokenError struct {
	Tokens   []string
	SpecPath string
}

// Error implements the error interface.
func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("cluster specification at '%s' contains tokens which were not provided: %s",
		e.SpecPath, strings.Join(e.Tokens, ", "))
}

// Is reports whether target is ErrMissingTokens.
func (e *MissingTokenError) Is(target error) bool {
	return target == ErrMissingTokens
}

// Detail renders the error for display.
func (e *MissingTokenError) Detail() *DetailError {
	return &DetailError{
		Type:     "missing tokens",
		Message:  strings.Join(e.Tokens, "\n  "),
		Location: e.SpecPath,
		Hint:     "Provide the values with --tokenFile or answer the prompts.",
		Cause:    ErrMissingTokens,
	}
}

// SourceFetchError reports a failure to materialize a specification source.
type SourceFetchError struct {
	Source string
	Cause  error
}

// Error implements the error interface.
func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetching source %q: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying error.
func (e *SourceFetchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrSourceFetch.
func (e *SourceFetchError) Is(target error) bool {
	return target == ErrSourceFetch
}

// SerializationError reports a failure to write the resolved model.
type SerializationError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying error.
func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrSerialization.
func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
