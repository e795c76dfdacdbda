package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the requested change conflicts with the current state of a resource.
var ErrConflict = errors.New("conflict with current state")

// ErrTerminalState is returned when a session has already reached a terminal status.
var ErrTerminalState = fmt.Errorf("%w: session already in terminal state", ErrConflict)

// ErrAlreadyCharged is returned when a charge for the same session and client already exists.
var ErrAlreadyCharged = fmt.Errorf("%w: session already charged for client", ErrConflict)

// ErrPartiallyApplied indicates that a multi-step operation stopped partway.
// Re-invoking the same operation converges to the fully applied state.
var ErrPartiallyApplied = errors.New("operation partially applied, retry to complete")

// ErrInternal is a generic internal failure.
var ErrInternal = errors.New("internal error")

// ErrUnauthorized indicates a missing or invalid credential.
var ErrUnauthorized = errors.New("unauthorized")

// AppError carries an HTTP-ish status code and a message alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}
