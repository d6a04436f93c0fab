package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Validation Errors (VALIDATION_*)
	ErrorCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationMissingField  ErrorCode = "VALIDATION_MISSING_FIELD"

	// Collaborator Errors
	ErrorCodeTokenizationFailed ErrorCode = "TOKENIZATION_FAILED"
	ErrorCodeQueueFailed        ErrorCode = "QUEUE_FAILED"
	ErrorCodeVerificationFailed ErrorCode = "VERIFICATION_FAILED"

	// Processing Errors
	ErrorCodeLiveModeNotImplemented ErrorCode = "LIVE_MODE_NOT_IMPLEMENTED"
	ErrorCodeNACHAEncodingFailed    ErrorCode = "NACHA_ENCODING_FAILED"

	// Recurring Errors (SCHEDULE_*)
	ErrorCodeScheduleNotFound ErrorCode = "SCHEDULE_NOT_FOUND"
	ErrorCodeScheduleInactive ErrorCode = "SCHEDULE_INACTIVE"

	// Outbox Errors (OUTBOX_*)
	ErrorCodeOutboxMessageNotFound ErrorCode = "OUTBOX_MESSAGE_NOT_FOUND"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// ErrorKind groups error codes by how a caller should react
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindCollaborator
	KindInternal
)

var codeKinds = map[ErrorCode]ErrorKind{
	ErrorCodeValidationFailed:        KindValidation,
	ErrorCodeValidationAmountInvalid: KindValidation,
	ErrorCodeValidationMissingField:  KindValidation,
	ErrorCodeScheduleNotFound:        KindNotFound,
	ErrorCodeOutboxMessageNotFound:   KindNotFound,
	ErrorCodeScheduleInactive:        KindConflict,
	ErrorCodeTokenizationFailed:      KindCollaborator,
	ErrorCodeQueueFailed:             KindCollaborator,
	ErrorCodeVerificationFailed:      KindCollaborator,
	ErrorCodeLiveModeNotImplemented:  KindInternal,
	ErrorCodeNACHAEncodingFailed:     KindInternal,
	ErrorCodeInternalError:           KindInternal,
	ErrorCodeDatabaseError:           KindInternal,
}

// Kind returns the group a code belongs to
func (c ErrorCode) Kind() ErrorKind {
	return codeKinds[c]
}

// GetErrorCode extracts the code of the outermost DomainError in err's chain.
// Empty when there is none.
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsDomainError reports whether err carries code
func IsDomainError(err error, code ErrorCode) bool {
	return err != nil && GetErrorCode(err) == code
}

// IsNotFoundError reports a missing schedule or outbox message
func IsNotFoundError(err error) bool {
	return GetErrorCode(err).Kind() == KindNotFound
}

// IsValidationError reports input the caller must fix before retrying
func IsValidationError(err error) bool {
	return GetErrorCode(err).Kind() == KindValidation
}

// IsCollaboratorError reports a failure of the token vault, sync queue or
// micro-deposit verifier
func IsCollaboratorError(err error) bool {
	return GetErrorCode(err).Kind() == KindCollaborator
}

// ValidationFailed builds a VALIDATION_FAILED error whose message lists every violation.
// The message is rendered as "<prefix>: err1, err2" so callers can show it directly.
func ValidationFailed(prefix string, violations []string) *DomainError {
	msg := prefix
	if len(violations) > 0 {
		msg = fmt.Sprintf("%s: %s", prefix, strings.Join(violations, ", "))
	}
	return NewDomainError(ErrorCodeValidationFailed, msg).WithDetail("violations", violations)
}

// Common domain errors
var (
	ErrBankAccountRequired = errors.New("bank account is required")
	ErrInvalidFrequency    = errors.New("invalid recurring frequency")
	ErrScheduleCompleted   = errors.New("recurring schedule already completed")
	ErrScheduleCancelled   = errors.New("recurring schedule is cancelled")
	ErrEmptyBatch          = errors.New("NACHA batch requires at least one entry")
)
