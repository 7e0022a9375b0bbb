package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable machine-readable error code surfaced to API clients.
type Code string

const (
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeAlreadyUsed      Code = "ALREADY_USED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// Error is the closed set of failures the core surfaces to the HTTP layer.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to its HTTP status.
func (e *Error) StatusCode() int {
	switch e.Code {
	case CodeValidationFailed:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeAlreadyUsed:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func ValidationFailed(message string) *Error {
	return New(CodeValidationFailed, message)
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

func RateLimited(message string) *Error {
	return New(CodeRateLimited, message)
}

func AlreadyUsed(message string) *Error {
	return New(CodeAlreadyUsed, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func Internal(err error) *Error {
	return Wrap(CodeInternal, "internal error", err)
}

// From extracts an *Error from err, normalizing unknown errors to INTERNAL_ERROR.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
