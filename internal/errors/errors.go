package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeConflict ErrorCode = "CONFLICT"

	// Session lifecycle
	ErrCodeIllegalTransition       ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeInvalidConfirmationSide ErrorCode = "INVALID_CONFIRMATION_SIDE"
	ErrCodeAlreadyConfirmed        ErrorCode = "ALREADY_CONFIRMED"
	ErrCodeSessionNotConfirmable   ErrorCode = "SESSION_NOT_CONFIRMABLE"
	ErrCodeStaleSessionState       ErrorCode = "STALE_SESSION_STATE"
	ErrCodeInvariantViolation      ErrorCode = "INVARIANT_VIOLATION"

	// Rate Limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func InvalidToken(message string) *AppError {
	return New(ErrCodeInvalidToken, message)
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

// IllegalTransition is returned when the requested target status is not
// reachable from the current status. It is never retried: the action should
// not have been offered, which indicates a stale policy read on the client.
func IllegalTransition(from, to string) *AppError {
	return New(ErrCodeIllegalTransition,
		fmt.Sprintf("Transition %s -> %s is not allowed", from, to))
}

func InvalidConfirmationSide(role, side string) *AppError {
	return New(ErrCodeInvalidConfirmationSide,
		fmt.Sprintf("Party role %s may not confirm side %s", role, side))
}

func AlreadyConfirmed(role string) *AppError {
	return New(ErrCodeAlreadyConfirmed,
		fmt.Sprintf("Party %s has already confirmed this session", role))
}

func SessionNotConfirmable(status string) *AppError {
	return New(ErrCodeSessionNotConfirmable,
		fmt.Sprintf("Session in status %s does not accept confirmations", status))
}

// StaleSessionState is an optimistic-concurrency conflict: another actor
// committed a transition between the caller's read and write. Safe to retry
// after re-reading the session.
func StaleSessionState(sessionID string) *AppError {
	return New(ErrCodeStaleSessionState,
		fmt.Sprintf("Session %s was modified concurrently; re-read and retry", sessionID))
}

// InvariantViolation flags a defensive internal check failure. It is fatal
// to the operation and logged, never silently repaired: it indicates a logic
// defect rather than a normal runtime condition.
func InvariantViolation(message string) *AppError {
	return New(ErrCodeInvariantViolation, message)
}

func RateLimitExceeded() *AppError {
	return New(ErrCodeRateLimitExceeded, "Rate limit exceeded")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
