// Package errors provides standardized error handling for the HTTP API and BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
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
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"

	ErrCodeMailTransportUnavailable ErrorCode = "MAIL_TRANSPORT_UNAVAILABLE"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeLeadRecordFailed         ErrorCode = "LEAD_RECORD_FAILED"

	ErrCodeOnboardingPreconditionNotMet ErrorCode = "ONBOARDING_PRECONDITION_NOT_MET"
	ErrCodeOnboardingSkipNotAllowed     ErrorCode = "ONBOARDING_SKIP_NOT_ALLOWED"
	ErrCodeOnboardingInvalidValue       ErrorCode = "ONBOARDING_INVALID_VALUE"

	ErrCodeSessionRequired       ErrorCode = "SESSION_REQUIRED"
	ErrCodeStateStoreUnavailable ErrorCode = "STATE_STORE_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// As extracts a *StandardError from an error chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of a StandardError in the chain, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := As(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationError creates a non-retryable client error.
func NewValidationError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputParsingError wraps a decoding failure of a request body or job variables.
func NewInputParsingError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse input",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTransportUnavailableError reports a mail transport that failed verification.
func NewTransportUnavailableError(transport string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMailTransportUnavailable,
		Message:   fmt.Sprintf("Mail transport '%s' unavailable", transport),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotificationSendFailedError reports a failed send. Notifications are never retried.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Failed to send notification",
		Details:   fmt.Sprintf("notificationType: %s, error: %s", notificationType, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewLeadRecordFailedError creates a retryable database error.
func NewLeadRecordFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLeadRecordFailed,
		Message:   "Failed to record lead request",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewPreconditionNotMetError(step int, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOnboardingPreconditionNotMet,
		Message:   "Step requirements not met",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"step": step},
		Timestamp: time.Now().UTC(),
	}
}

func NewSkipNotAllowedError(step int) *StandardError {
	return &StandardError{
		Code:      ErrCodeOnboardingSkipNotAllowed,
		Message:   "Skip is only available on the refinement step",
		Details:   fmt.Sprintf("step: %d", step),
		Retryable: false,
		Metadata:  map[string]interface{}{"step": step},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidValueError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOnboardingInvalidValue,
		Message:   fmt.Sprintf("Invalid value for '%s'", field),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionRequiredError is returned when a page needs a signed-in identity.
func NewSessionRequiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionRequired,
		Message:   "Sign in required",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStateStoreError wraps a failure of the client state store.
func NewStateStoreError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStateStoreUnavailable,
		Message:   "Client state store unavailable",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:         "LEAD_VALIDATION_FAILED",
	ErrCodeInputParsingFailed:       "LEAD_VALIDATION_FAILED",
	ErrCodeMailTransportUnavailable: "MAIL_TRANSPORT_UNAVAILABLE",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeLeadRecordFailed:         "LEAD_RECORD_FAILED",
	ErrCodeStateStoreUnavailable:    "STATE_STORE_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count for a code.
// Mail delivery is single-attempt, so transport and send failures get none.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLeadRecordFailed,
		ErrCodeStateStoreUnavailable:
		return 3
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInputParsingFailed:
		return http.StatusBadRequest
	case ErrCodeSessionRequired:
		return http.StatusUnauthorized
	case ErrCodeOnboardingPreconditionNotMet, ErrCodeOnboardingSkipNotAllowed:
		return http.StatusConflict
	case ErrCodeOnboardingInvalidValue:
		return http.StatusUnprocessableEntity
	case ErrCodeStateStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "ONBOARDING"):
		return "ONBOARDING"
	case strings.Contains(codeStr, "MAIL") || strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "LEAD") || strings.Contains(codeStr, "STORE"):
		return "STORAGE"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
