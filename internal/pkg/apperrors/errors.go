package apperrors

import "errors"

// Error kinds. Everything the API returns unwraps to one of these.
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Domain errors
var (
	ErrUserNotFound       = &CustomError{Err: ErrResourceNotFound, Message: "User not found"}
	ErrEmailAlreadyExists = &CustomError{Err: ErrConflict, Message: "Email already registered"}
	ErrLoginFailed        = &CustomError{Err: ErrInvalidCredentials, Message: "Invalid email or password"}

	ErrSessionNotFound    = &CustomError{Err: ErrResourceNotFound, Message: "Study session not found"}
	ErrSessionFull        = &CustomError{Err: ErrConflict, Message: "Session is full"}
	ErrAlreadyJoined      = &CustomError{Err: ErrConflict, Message: "User already joined this session"}
	ErrCreatorCannotLeave = &CustomError{Err: ErrBadRequest, Message: "Creator cannot leave their own session"}
	ErrCapacityBelowCount = &CustomError{Err: ErrConflict, Message: "Max capacity cannot be lower than the current number of participants"}

	ErrNotParticipant  = &CustomError{Err: ErrPermissionDenied, Message: "You must join the session to use its chat"}
	ErrMessageNotFound = &CustomError{Err: ErrResourceNotFound, Message: "Message not found"}
)

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a validation error tied to a single field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// Message returns the user-facing text of a CustomError, or fallback.
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}
