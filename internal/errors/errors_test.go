package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Session not found")
		assert.Equal(t, "NOT_FOUND: Session not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "Database error")
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "fromCurrency", "reason": "invalid code"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"InvalidToken", func() *AppError { return InvalidToken("test") }, ErrCodeInvalidToken},
		{"NotFound", func() *AppError { return NotFound("Session") }, ErrCodeNotFound},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("fromAmount", "negative") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("takerId") }, ErrCodeMissingRequired},
		{"IllegalTransition", func() *AppError { return IllegalTransition("completed", "disputed") }, ErrCodeIllegalTransition},
		{"InvalidConfirmationSide", func() *AppError { return InvalidConfirmationSide("initiator", "received") }, ErrCodeInvalidConfirmationSide},
		{"AlreadyConfirmed", func() *AppError { return AlreadyConfirmed("taker") }, ErrCodeAlreadyConfirmed},
		{"SessionNotConfirmable", func() *AppError { return SessionNotConfirmable("pending_approval") }, ErrCodeSessionNotConfirmable},
		{"StaleSessionState", func() *AppError { return StaleSessionState("sess-1") }, ErrCodeStaleSessionState},
		{"InvariantViolation", func() *AppError { return InvariantViolation("test") }, ErrCodeInvariantViolation},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constructor()
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestDatabase(t *testing.T) {
	t.Run("wraps database error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Database(cause)
		assert.Equal(t, ErrCodeDatabase, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestIsAppError(t *testing.T) {
	t.Run("returns true for AppError", func(t *testing.T) {
		assert.True(t, IsAppError(New(ErrCodeInternal, "test")))
	})

	t.Run("returns true for wrapped AppError", func(t *testing.T) {
		wrapped := fmt.Errorf("handler: %w", StaleSessionState("sess-1"))
		assert.True(t, IsAppError(wrapped))
	})

	t.Run("returns false for plain error", func(t *testing.T) {
		assert.False(t, IsAppError(errors.New("plain")))
	})
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeAlreadyConfirmed, GetCode(AlreadyConfirmed("initiator")))
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", IllegalTransition("completed", "cancelled"))
	assert.True(t, HasCode(err, ErrCodeIllegalTransition))
	assert.False(t, HasCode(err, ErrCodeStaleSessionState))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeIllegalTransition))
}
