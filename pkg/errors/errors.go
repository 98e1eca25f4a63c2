package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	ErrCodeValidation             ErrorCode = "VALIDATION_ERROR"
	ErrCodeDelivery               ErrorCode = "DELIVERY_ERROR"
	ErrCodePersistenceUnavailable ErrorCode = "PERSISTENCE_UNAVAILABLE"
	ErrCodeNotFound               ErrorCode = "NOT_FOUND"
	ErrCodePayloadTooLarge        ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeInternalError          ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error.
// Message is safe to show to a caller; Err is the internal cause and is only
// meant for server-side logs.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the AppError in err's chain, or
// ErrCodeInternalError when there is none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// IsValidation checks if error is a validation error
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsDelivery checks if error is a mail delivery error
func IsDelivery(err error) bool {
	return hasCode(err, ErrCodeDelivery)
}

// IsPersistenceUnavailable checks if error reports a missing record store
func IsPersistenceUnavailable(err error) bool {
	return hasCode(err, ErrCodePersistenceUnavailable)
}

// IsNotFound checks if error is NotFound
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func hasCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
