package cmd

import (
	"errors"
	"fmt"
	"io"

	oerrors "github.com/transfigure/cli/internal/errors"
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int
	// Printed is set once the error has been shown to the user.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
// Every failure that is not an ExitError is fatal.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFatal
}

// fatal prints err to w and returns it as a printed fatal ExitError.
func fatal(w io.Writer, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	printError(w, err)
	return &ExitError{Err: err, Code: ExitFatal, Printed: true}
}

// printError writes err with whatever detail it carries.
func printError(w io.Writer, err error) {
	var missing *oerrors.MissingTokenError
	if errors.As(err, &missing) {
		fmt.Fprint(w, missing.Detail().Error())
		return
	}

	var detail *oerrors.DetailError
	if errors.As(err, &detail) {
		fmt.Fprint(w, detail.Error())
		return
	}

	fmt.Fprintf(w, "Error: %v\n", err)
}
