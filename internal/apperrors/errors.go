// Package apperrors defines the error taxonomy returned by services and
// rendered by the HTTP error handler.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error that knows how it should be presented to API clients.
type AppError struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Status   int            `json:"-"`
	Details  map[string]any `json:"details,omitempty"`
	Internal error          `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches on Code so that copies produced by With* helpers still compare
// equal to the sentinel they came from.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) || t == nil || e == nil {
		return false
	}
	return e.Code == t.Code
}

// WithInternal returns a copy carrying the underlying cause.
func (e *AppError) WithInternal(err error) *AppError {
	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy with a more specific client-facing message.
func (e *AppError) WithMessage(msg string) *AppError {
	cpy := *e
	cpy.Message = msg
	return &cpy
}

// WithDetail returns a copy with key set in Details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	cpy := *e
	cpy.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cpy.Details[k] = v
	}
	cpy.Details[key] = value
	return &cpy
}

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

var (
	// 400
	ErrValidation        = New("VALIDATION_ERROR", "Validation failed", http.StatusBadRequest)
	ErrMissingField      = New("MISSING_FIELD", "Required fields are missing", http.StatusBadRequest)
	ErrMalformedEmail    = New("MALFORMED_EMAIL", "Email address is not valid", http.StatusBadRequest)
	ErrInvalidID         = New("INVALID_ID", "Invalid identifier", http.StatusBadRequest)
	ErrInvalidStatus     = New("INVALID_STATUS", "Invalid status value", http.StatusBadRequest)
	ErrNotAlumni         = New("NOT_ALUMNI", "Selected user is not an alumni", http.StatusBadRequest)
	ErrDuplicateActive   = New("DUPLICATE_ACTIVE", "You already have an active request with this mentor", http.StatusBadRequest)
	ErrInvalidState      = New("INVALID_STATE", "Workshop is not open for registration", http.StatusBadRequest)
	ErrAlreadyRegistered = New("ALREADY_REGISTERED", "Already registered for this workshop", http.StatusBadRequest)
	ErrNotRegistered     = New("NOT_REGISTERED", "Not registered for this workshop", http.StatusBadRequest)
	ErrWorkshopFull      = New("WORKSHOP_FULL", "Workshop has reached its capacity", http.StatusBadRequest)
	ErrBadUpload         = New("BAD_UPLOAD", "Uploaded file is not acceptable", http.StatusBadRequest)

	// 401
	ErrUnauthenticated    = New("UNAUTHENTICATED", "No token, authorization denied", http.StatusUnauthorized)
	ErrInvalidToken       = New("INVALID_TOKEN", "Token is not valid", http.StatusUnauthorized)
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", "Invalid credentials", http.StatusUnauthorized)

	// 403
	ErrForbidden = New("FORBIDDEN", "Access denied", http.StatusForbidden)

	// 404
	ErrNotFound = New("NOT_FOUND", "Resource not found", http.StatusNotFound)

	// 409
	ErrConflict          = New("CONFLICT", "Resource already exists", http.StatusConflict)
	ErrDuplicateEmail    = New("DUPLICATE_EMAIL", "User already exists", http.StatusConflict)
	ErrAlreadyApplied    = New("ALREADY_APPLIED", "You have already applied to this opportunity", http.StatusConflict)
	ErrInvalidTransition = New("INVALID_TRANSITION", "Status has already been decided", http.StatusConflict)

	// 500
	ErrInternal = New("SERVER_ERROR", "Server error", http.StatusInternalServerError)
)

// Internal wraps an unexpected failure as a 500 keeping the cause for logs.
func Internal(err error) *AppError {
	return ErrInternal.WithInternal(err)
}

// From converts any error into an AppError, defaulting to a 500.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
