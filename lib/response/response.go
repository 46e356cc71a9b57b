package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getevo/evo/v2/lib/outcome"
	"github.com/getevo/evo/v2/lib/text"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Authentication errors
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeInvalidToken ErrorCode = "invalid_token"

	// Input validation errors
	ErrorCodeInvalidInput    ErrorCode = "invalid_input"
	ErrorCodeMissingRequired ErrorCode = "missing_required"
	ErrorCodeValidationError ErrorCode = "validation_error"

	// Resource errors
	ErrorCodeNotFound        ErrorCode = "not_found"
	ErrorCodeSessionNotFound ErrorCode = "session_not_found"

	// Lifecycle errors
	ErrorCodeInvalidState ErrorCode = "invalid_state"

	// Concurrency errors. Conflict responses are retryable by clients,
	// invalid_state responses are not.
	ErrorCodeConflict ErrorCode = "conflict"

	// Internal errors
	ErrorCodeInternalError ErrorCode = "internal_error"
	ErrorCodeDatabaseError ErrorCode = "database_error"
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode `json:"error"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Retryable  bool      `json:"retryable,omitempty"`
	Details    string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Response returns an outcome.Response for the error
func (e AppError) Response() outcome.Response {
	return outcome.Response{
		StatusCode: e.StatusCode,
		Data: text.ToJSON(map[string]interface{}{
			"error":     string(e.Code),
			"message":   e.Message,
			"retryable": e.Retryable,
		}),
	}
}

// NewError creates a new AppError
func NewError(code ErrorCode, message string, statusCode int) AppError {
	return AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Predefined common errors
var (
	ErrUnauthorized = AppError{
		Code:       ErrorCodeUnauthorized,
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidToken = AppError{
		Code:       ErrorCodeInvalidToken,
		Message:    "Invalid or expired token",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidInput = AppError{
		Code:       ErrorCodeInvalidInput,
		Message:    "Invalid request data",
		StatusCode: http.StatusBadRequest,
	}

	ErrMissingRequired = AppError{
		Code:       ErrorCodeMissingRequired,
		Message:    "Missing required fields",
		StatusCode: http.StatusBadRequest,
	}

	ErrNotFound = AppError{
		Code:       ErrorCodeNotFound,
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrSessionNotFound = AppError{
		Code:       ErrorCodeSessionNotFound,
		Message:    "Session not found",
		StatusCode: http.StatusNotFound,
	}

	ErrSessionStopped = AppError{
		Code:       ErrorCodeInvalidState,
		Message:    "Cannot log activity to a stopped session",
		StatusCode: http.StatusBadRequest,
	}

	ErrSessionAlreadyStopped = AppError{
		Code:       ErrorCodeInvalidState,
		Message:    "Session is already stopped",
		StatusCode: http.StatusBadRequest,
	}

	ErrActiveSessionExists = AppError{
		Code:       ErrorCodeConflict,
		Message:    "User already has an active session",
		StatusCode: http.StatusConflict,
	}

	ErrConcurrentUpdate = AppError{
		Code:       ErrorCodeConflict,
		Message:    "Unable to apply update due to concurrent modifications, please retry",
		StatusCode: http.StatusConflict,
		Retryable:  true,
	}

	ErrNegativeDuration = AppError{
		Code:       ErrorCodeValidationError,
		Message:    "duration_seconds must be zero or positive",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalError = AppError{
		Code:       ErrorCodeInternalError,
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrDatabaseError = AppError{
		Code:       ErrorCodeDatabaseError,
		Message:    "Database operation failed",
		StatusCode: http.StatusInternalServerError,
	}
)

// Error converts an AppError into an outcome.Response
func Error(err AppError) outcome.Response {
	return err.Response()
}

// FromError maps a service error onto an HTTP response. AppError values keep
// their own status and code, anything else is reported as a database error.
func FromError(err error) outcome.Response {
	if appErr, ok := err.(AppError); ok {
		return appErr.Response()
	}
	return ErrDatabaseError.Response()
}

// APIResponse represents a standardized API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (r APIResponse) ToJSON() []byte {
	b, _ := json.Marshal(r)
	return b
}

// Meta contains metadata for API responses
type Meta struct {
	Count int   `json:"count,omitempty"`
	Total int64 `json:"total,omitempty"`
}

// OK creates a standardized success response
func OK(data interface{}) outcome.Response {
	return outcome.Response{
		ContentType: "application/json",
		StatusCode:  http.StatusOK,
		Data: APIResponse{
			Success: true,
			Data:    data,
		}.ToJSON(),
	}
}

// OKWithMessage creates a success response with a message
func OKWithMessage(data interface{}, message string) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusOK,
		Data: APIResponse{
			Success: true,
			Data:    data,
			Message: message,
		}.ToJSON(),
	}
}

// OKWithMeta creates a success response with metadata
func OKWithMeta(data interface{}, meta *Meta) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusOK,
		Data: APIResponse{
			Success: true,
			Data:    data,
			Meta:    meta,
		}.ToJSON(),
	}
}

// Created creates a 201 Created response
func Created(data interface{}) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusCreated,
		Data: APIResponse{
			Success: true,
			Data:    data,
		}.ToJSON(),
	}
}
