package types

import "errors"

// Collection and lookup errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrTypeMismatch = errors.New("type mismatch: only todos can be added to a list")
	ErrDuplicateID  = errors.New("duplicate id")
	ErrValidation   = errors.New("validation failed")
)

// Store errors.
var (
	ErrStoreClosed     = errors.New("session store is closed")
	ErrAlreadyAttached = errors.New("session store is already attached")
	ErrInvalidID       = errors.New("invalid session id")
	ErrInvalidRecord   = errors.New("invalid session record")
)

// ValidationError reports a user-correctable naming problem. Text is shown
// to the user verbatim. ValidationError matches ErrValidation under
// errors.Is.
type ValidationError struct {
	Text string
}

func (e *ValidationError) Error() string { return e.Text }

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Message returns the error message shown for e.
func (e *ValidationError) Message() Message { return ErrorMessage(e.Text) }
