package errors

import (
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrConflict
	ErrInternal
	ErrUnknownSeries
	ErrReferentialIntegrity
	ErrInvalidTransition
	ErrConcurrentModification
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewUnknownSeries reports a counter series that does not exist or is inactive.
func NewUnknownSeries(code string) *AppError {
	return &AppError{
		Code:    ErrUnknownSeries,
		Message: fmt.Sprintf("unknown or inactive identifier series %q", code),
	}
}

// NewReferentialIntegrity reports a missing related entity on create.
func NewReferentialIntegrity(relation string, id int64) *AppError {
	return &AppError{
		Code:    ErrReferentialIntegrity,
		Message: fmt.Sprintf("referenced %s %d does not exist", relation, id),
	}
}

// NewInvalidTransition reports a status change that is not reachable in one step.
func NewInvalidTransition(kind, from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("%s status cannot change from %q to %q", kind, from, to),
	}
}

// NewConcurrentModification reports an optimistic-concurrency failure: the entity
// changed between read and update. Callers should re-fetch before retrying.
func NewConcurrentModification(kind string, id int64) *AppError {
	return &AppError{
		Code:    ErrConcurrentModification,
		Message: fmt.Sprintf("%s %d was modified concurrently", kind, id),
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

// Code extracts the ErrorCode from an error, or ErrInternal for untyped errors.
func Code(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrInternal
}
