package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// NewValidationError creates a 400 Bad Request error
func NewValidationError(message string) *AppError {
	return NewError(http.StatusBadRequest, "VALIDATION_ERROR", message)
}

// NewUnauthorizedError creates a 401 Unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return NewError(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(message string) *AppError {
	return NewError(http.StatusNotFound, "NOT_FOUND", message)
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *AppError {
	return NewError(http.StatusConflict, "CONFLICT", message)
}

// NewUpstreamError creates a 502 Bad Gateway error for completion provider failures
func NewUpstreamError(message string) *AppError {
	return NewError(http.StatusBadGateway, "UPSTREAM_FAILURE", message)
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string) *AppError {
	return NewError(http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// AsAppError unwraps err into an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
