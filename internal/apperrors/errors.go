// Package apperrors defines the application error taxonomy and its mapping
// onto HTTP status codes and the {status: 0, message} response envelope.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of failure
type ErrorCode int

const (
	ErrInternal ErrorCode = 1000 + iota
	ErrDatabase
)

const (
	ErrUnauthorized ErrorCode = 2000 + iota
	ErrForbidden
	ErrInvalidToken
	ErrInvalidCredentials
)

const (
	ErrValidation ErrorCode = 3000 + iota
	ErrNotFound
	ErrConflict
)

// AppError carries a code, a client-facing message and an optional cause
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an application error
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a cause to an application error
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// HTTPStatus maps an error code to its HTTP status
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrUnauthorized, ErrInvalidToken, ErrInvalidCredentials:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError extracts an *AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
