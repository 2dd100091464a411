package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidConfig is returned when the responder cannot be configured.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrEmptyMessage is returned when there is nothing to answer.
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrInvalidResponse is returned when the model answers without usable text.
	ErrInvalidResponse = errors.New("invalid response from gemini")

	// ErrContentBlocked is returned when safety filters stop the answer.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrTransientFailure is returned when every retry failed.
	ErrTransientFailure = errors.New("transient gemini failure")
)
