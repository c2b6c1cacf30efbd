package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds. Use errors.Is against these, never compare messages.
var (
	ErrNotFound     = errors.New("not found")
	ErrPermission   = errors.New("permission denied")
	ErrNotEnrolled  = errors.New("not enrolled")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal server error")
)

var httpStatuses = []struct {
	kind   error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrPermission, http.StatusForbidden},
	{ErrNotEnrolled, http.StatusForbidden},
	{ErrConflict, http.StatusConflict},
}

// AppError carries a kind for status mapping, a client-safe message and
// internal details that only reach the logs.
type AppError struct {
	BaseError error
	Message   string
	Details   string
	Err       error
}

func (e *AppError) Error() string {
	s := e.BaseError.Error() + ": " + e.Message
	if e.Details != "" {
		s += " (" + e.Details + ")"
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes the kind only; the cause is kept for logging.
func (e *AppError) Unwrap() error {
	return e.BaseError
}

func (e *AppError) ToJSON() gin.H {
	return gin.H{
		"error":   e.BaseError.Error(),
		"message": e.Message,
	}
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewNotFound(resource, identifier string) *AppError {
	return NewAppError(ErrNotFound,
		resource+" not found",
		fmt.Sprintf("%s '%s' does not exist", resource, identifier),
		nil)
}

func NewInvalidInput(details string, err error) *AppError {
	return NewAppError(ErrInvalidInput, "Invalid input provided", details, err)
}

func NewConflict(resource, field, value string) *AppError {
	return NewAppError(ErrConflict,
		resource+" conflict",
		fmt.Sprintf("%s with %s '%s' already exists", resource, field, value),
		nil)
}

func NewUnauthorized(details string, err error) *AppError {
	return NewAppError(ErrUnauthorized, "Invalid credentials", details, err)
}

func NewPermissionDenied(details string) *AppError {
	return NewAppError(ErrPermission, "Permission denied", details, nil)
}

func NewNotEnrolled(courseID int64) *AppError {
	return NewAppError(ErrNotEnrolled, "Not enrolled in this course", fmt.Sprintf("course %d", courseID), nil)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, "An internal server error occurred", details, err)
}

// NewPersistence reports a rolled back transaction. Nothing was written.
func NewPersistence(details string, err error) *AppError {
	return NewAppError(ErrInternal, "Failed to save data", details, err)
}

func ToHTTPStatus(err error) int {
	for _, m := range httpStatuses {
		if errors.Is(err, m.kind) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}
