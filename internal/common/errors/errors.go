// Package errors provides standardized error handling for the chatbot service.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail       ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidPhone       ErrorCode = "INVALID_PHONE"
	ErrCodeOptionNotMatched   ErrorCode = "OPTION_NOT_MATCHED"
	ErrCodeEmptyInput         ErrorCode = "EMPTY_INPUT"

	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeUserPersistFailed        ErrorCode = "USER_PERSIST_FAILED"
	ErrCodeSessionPersistFailed     ErrorCode = "SESSION_PERSIST_FAILED"
	ErrCodeContactRequestFailed     ErrorCode = "CONTACT_REQUEST_FAILED"

	ErrCodeAnalyticsWriteFailed   ErrorCode = "ANALYTICS_WRITE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeCRMPushFailed          ErrorCode = "CRM_PUSH_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable input validation error.
// Validation errors are recovered locally with a re-prompt and never
// surfaced as system errors.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "User input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidEmailError creates a non-retryable email validation error.
func NewInvalidEmailError(input string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidEmail,
		Message:   "Email address does not match the expected shape",
		Details:   fmt.Sprintf("input: %s", input),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPhoneError creates a non-retryable phone validation error.
func NewInvalidPhoneError(digitCount int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPhone,
		Message:   "Phone number must contain 10 or 11 digits",
		Details:   fmt.Sprintf("digitCount: %d", digitCount),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOptionNotMatchedError creates a non-retryable option mismatch error.
func NewOptionNotMatchedError(input string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOptionNotMatched,
		Message:   "Input does not match any presented option",
		Details:   fmt.Sprintf("input: %s", input),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDepartmentNotFoundError creates a non-retryable lookup error.
// Lookup failures are routed to the no-results branch, never to the user.
func NewDepartmentNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDepartmentNotFound,
		Message:   "Department could not be resolved",
		Details:   fmt.Sprintf("department: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable session lookup error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Conversation session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserPersistFailedError creates a retryable user persistence error.
// The conversation continues even when this is returned.
func NewUserPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUserPersistFailed,
		Message:   "User record could not be persisted",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionPersistFailedError creates a retryable session persistence error.
func NewSessionPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionPersistFailed,
		Message:   "Session record could not be persisted",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContactRequestFailedError creates a retryable contact request error.
func NewContactRequestFailedError(kind string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContactRequestFailed,
		Message:   "Contact request could not be recorded",
		Details:   fmt.Sprintf("kind: %s, error: %s", kind, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalyticsWriteFailedError creates a retryable analytics sink error.
func NewAnalyticsWriteFailedError(eventType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalyticsWriteFailed,
		Message:   "Analytics event could not be written",
		Details:   fmt.Sprintf("eventType: %s, error: %s", eventType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCRMPushFailedError creates a retryable CRM push error.
func NewCRMPushFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMPushFailed,
		Message:   "Lead could not be pushed to CRM",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeUserPersistFailed,
		ErrCodeSessionPersistFailed,
		ErrCodeContactRequestFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeCRMPushFailed:
		return 3 // Retryable technical errors

	case ErrCodeAnalyticsWriteFailed:
		return 1 // Fire-and-forget; one retry at most

	default:
		return 0 // Validation and lookup errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsValidationError reports whether the error is recovered with a re-prompt.
func IsValidationError(err error) bool {
	stdErr, ok := err.(*StandardError)
	if !ok {
		return false
	}
	switch stdErr.Code {
	case ErrCodeValidationFailed, ErrCodeInvalidEmail, ErrCodeInvalidPhone,
		ErrCodeOptionNotMatched, ErrCodeEmptyInput:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "OPTION") || strings.Contains(codeStr, "EMPTY"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") ||
		strings.Contains(codeStr, "PERSIST") || strings.Contains(codeStr, "CONTACT"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "ANALYTICS"):
		return "ANALYTICS"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "CRM"):
		return "OUTBOUND"
	default:
		return "OTHER"
	}
}
