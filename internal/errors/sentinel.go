package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates a specification field failed its shape check.
	ErrValidation = errors.New("validation error")

	// ErrMissingTokens indicates template tokens without a bound value.
	ErrMissingTokens = errors.New("missing tokens")

	// ErrSourceFetch indicates the specification source could not be materialized.
	ErrSourceFetch = errors.New("source fetch error")

	// ErrSerialization indicates the resolved model could not be written.
	ErrSerialization = errors.New("serialization error")

	// ErrNotFound indicates a file or directory was not found.
	ErrNotFound = errors.New("not found")
)
