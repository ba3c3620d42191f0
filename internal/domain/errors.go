package domain

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned by catalog mutations when the target record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden is returned when a principal lacks a role required by an operation.
	ErrForbidden = errors.New("principal lacks required role")
	// ErrDuplicate is returned by persistence when a unique field already holds the value.
	ErrDuplicate = errors.New("record already exists")
)

// DuplicateError names the unique field that rejected a write. It unwraps to ErrDuplicate.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return "duplicate value for " + e.Field
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// ErrorCode represents a specific error condition.
type ErrorCode string

const (
	ErrUnauthorized   ErrorCode = "Unauthorized"        // HTTP 401
	ErrAccessDenied   ErrorCode = "Forbidden"           // HTTP 403
	ErrBadCredentials ErrorCode = "BadCredentials"      // HTTP 401, login failures
	ErrRecordNotFound ErrorCode = "NotFound"            // HTTP 404
	ErrBadRequest     ErrorCode = "BadRequest"          // HTTP 400, payload validation
	ErrConflict       ErrorCode = "Conflict"            // HTTP 409, username, email or game name taken
	ErrPasswordPolicy ErrorCode = "WeakPassword"        // HTTP 400, registration password rules
	ErrInternal       ErrorCode = "InternalServerError" // HTTP 500
)

// ErrorResponse is the standard error format returned to clients as JSON.
type ErrorResponse struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NewErrorResponse creates a new ErrorResponse struct.
func NewErrorResponse(code ErrorCode, message string, details string) ErrorResponse {
	return ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WithFields attaches per-field validation messages.
func (er ErrorResponse) WithFields(fields map[string]string) ErrorResponse {
	er.Fields = fields
	return er
}

// WriteJSON sends an ErrorResponse as JSON with the given HTTP status code.
func (er ErrorResponse) WriteJSON(w http.ResponseWriter, httpStatusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	json.NewEncoder(w).Encode(er) // Best effort, error from Encode is not typically handled here.
}
