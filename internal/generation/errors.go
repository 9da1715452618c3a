package generation

import "errors"

// Common errors returned by generation clients.
var (
	// ErrInvalidConfig is returned when a client is constructed with an
	// unusable configuration.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrInvalidResponse is returned when a model response cannot be
	// parsed or is structurally malformed.
	ErrInvalidResponse = errors.New("invalid response from model")

	// ErrContentBlocked is returned when the model refuses the request
	// on safety grounds.
	ErrContentBlocked = errors.New("content blocked by model safety filters")

	// ErrTransientFailure is returned for temporary errors that might
	// resolve on retry.
	ErrTransientFailure = errors.New("transient generation failure")
)
