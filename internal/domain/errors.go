package domain

import "errors"

// ErrValidation is wrapped by every entity validation error in this package,
// so callers can classify bad input with errors.Is(err, ErrValidation).
var ErrValidation = errors.New("validation failed")

func validationError(msg string) error {
	return &validationErr{msg: msg}
}

type validationErr struct {
	msg string
}

func (e *validationErr) Error() string { return e.msg }

func (e *validationErr) Unwrap() error { return ErrValidation }
