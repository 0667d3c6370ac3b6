package domain

import "errors"

// Error kinds surfaced by the engine. Domain outcomes (no match, failed
// cancel) are returned as values, never as errors.
var (
	// ErrValidation marks a rejected command; the batch may continue.
	ErrValidation = errors.New("validation error")
	// ErrNumeric marks a decimal parse or arithmetic failure.
	ErrNumeric = errors.New("numeric error")
	// ErrMatching marks an engine invariant breach. It indicates a bug,
	// not a user error, and is fatal to the run.
	ErrMatching = errors.New("matching error")
)
