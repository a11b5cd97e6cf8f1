package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain. Services return AppErrors wrapping one of
// these; handlers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrConflict            = errors.New("conflict")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("authentication required")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrDuplicateAttendance = errors.New("duplicate attendance")
)

type AppError struct {
	Err     error  // sentinel cause
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError indicating the operation needs an
// authenticated identity and none was present. Maps to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// CapacityExceeded returns an AppError for a join attempted on a session
// that is already at capacity. Maps to 409.
func CapacityExceeded(sessionID string) *AppError {
	return &AppError{
		Err:     ErrCapacityExceeded,
		Message: fmt.Sprintf("session %s is already at capacity", sessionID),
	}
}

// DuplicateAttendance returns an AppError for a join attempted by a user who
// is already an attendee of the session. Maps to 409.
func DuplicateAttendance(sessionID, userID string) *AppError {
	return &AppError{
		Err:     ErrDuplicateAttendance,
		Message: fmt.Sprintf("user %s is already attending session %s", userID, sessionID),
	}
}
