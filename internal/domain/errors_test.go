package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDomainError_Error tests message rendering with and without a cause
func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewDomainError(ErrorCodeValidationMissingField, "bank account is required"),
			expected: "VALIDATION_MISSING_FIELD: bank account is required",
		},
		{
			name:     "with cause",
			err:      WrapError(ErrorCodeTokenizationFailed, "failed to tokenize bank account", errors.New("vault sealed")),
			expected: "TOKENIZATION_FAILED: failed to tokenize bank account: vault sealed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

// TestDomainError_Unwrap tests errors.Is through a wrapped domain error
func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(ErrorCodeQueueFailed, "enqueue payment", cause)

	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("process debit: %w", err)
	assert.True(t, IsDomainError(wrapped, ErrorCodeQueueFailed))
	assert.Equal(t, ErrorCodeQueueFailed, GetErrorCode(wrapped))
}

func TestDomainError_WithDetail(t *testing.T) {
	err := &DomainError{Code: ErrorCodeInternalError, Message: "boom"}
	err.WithDetail("attempt", 2)

	require.NotNil(t, err.Details)
	assert.Equal(t, 2, err.Details["attempt"])
}

// TestValidationFailed tests that every violation is listed in the message
func TestValidationFailed(t *testing.T) {
	err := ValidationFailed("Bank account validation failed", []string{
		"Invalid routing number",
		"Account number must be between 4 and 17 digits",
	})

	assert.Equal(t, ErrorCodeValidationFailed, err.Code)
	assert.Equal(t,
		"Bank account validation failed: Invalid routing number, Account number must be between 4 and 17 digits",
		err.Message,
	)
	assert.Len(t, err.Details["violations"], 2)
	assert.True(t, IsValidationError(err))
}

func TestValidationFailed_NoViolations(t *testing.T) {
	err := ValidationFailed("ACH debit validation failed", nil)
	assert.Equal(t, "ACH debit validation failed", err.Message)
}

// TestErrorClassification tests the helper predicates
func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		validation   bool
		collaborator bool
		notFound     bool
	}{
		{"validation failed", NewDomainError(ErrorCodeValidationFailed, "x"), true, false, false},
		{"missing field", NewDomainError(ErrorCodeValidationMissingField, "x"), true, false, false},
		{"tokenization", NewDomainError(ErrorCodeTokenizationFailed, "x"), false, true, false},
		{"queue", NewDomainError(ErrorCodeQueueFailed, "x"), false, true, false},
		{"verification", NewDomainError(ErrorCodeVerificationFailed, "x"), false, true, false},
		{"schedule not found", NewDomainError(ErrorCodeScheduleNotFound, "x"), false, false, true},
		{"plain error", errors.New("x"), false, false, false},
		{"nil error", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.collaborator, IsCollaboratorError(tt.err))
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
		})
	}
}

// TestDomainErrors_UniqueMessages tests that each sentinel error has a unique message
func TestDomainErrors_UniqueMessages(t *testing.T) {
	allErrors := []error{
		ErrBankAccountRequired,
		ErrInvalidFrequency,
		ErrScheduleCompleted,
		ErrScheduleCancelled,
		ErrEmptyBatch,
	}

	messages := make(map[string]error)
	for _, err := range allErrors {
		msg := strings.ToLower(err.Error())
		if existing, found := messages[msg]; found {
			t.Errorf("duplicate error message %q found in both %v and %v", msg, existing, err)
		}
		messages[msg] = err
	}
}

func TestErrorCode_Kind(t *testing.T) {
	for code := range codeKinds {
		assert.NotEqual(t, KindUnknown, code.Kind(), string(code))
	}
	assert.Equal(t, KindConflict, ErrorCodeScheduleInactive.Kind())
	assert.Equal(t, KindUnknown, ErrorCode("SOMETHING_ELSE").Kind())
	assert.False(t, IsDomainError(nil, ""))
}
