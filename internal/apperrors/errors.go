package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
// Always safe to retry after correcting the input; no state was created.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrent-update conflict on a shared resource.
// The whole operation is safe to retry.
var ErrConflict = errors.New("concurrent update conflict")

// ErrIllegalTransition indicates an approve/reject attempt on an entry that is
// no longer pending. Terminal states are never re-opened.
var ErrIllegalTransition = errors.New("illegal entry state transition")

// ErrIncompletePosting indicates a multi-line approval failed after partially
// applying account mutations and the database could not confirm a clean
// rollback. It is never retried automatically and requires operator
// intervention; the transactional posting path exists to make it unreachable.
var ErrIncompletePosting = errors.New("incomplete posting")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
// Repositories use it for failures that have no domain meaning.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(_, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
