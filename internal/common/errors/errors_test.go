package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// StandardError
// ==========================

func TestStandardError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := NewTransportUnavailableError("smtp", cause)

	assert.Equal(t, "StandardError[MAIL_TRANSPORT_UNAVAILABLE]: Mail transport 'smtp' unavailable", err.Error())
	assert.True(t, stderrors.Is(err, cause))
	assert.False(t, err.Retryable)
	assert.False(t, err.Timestamp.IsZero())
}

func TestAsAndCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("save: %w", NewStateStoreError("save", stderrors.New("timeout")))

	stdErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeStateStoreUnavailable, stdErr.Code)
	assert.Equal(t, ErrCodeStateStoreUnavailable, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))

	_, ok = As(stderrors.New("plain"))
	assert.False(t, ok)
}

// ==========================
// BPMN conversion
// ==========================

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{
			name:        "send failures are never retried",
			err:         NewNotificationSendFailedError("early-access", stderrors.New("550 mailbox unavailable")),
			wantCode:    "NOTIFICATION_SEND_FAILED",
			wantRetries: 0,
		},
		{
			name:        "validation maps to lead validation",
			err:         NewValidationError("Missing required fields", "company"),
			wantCode:    "LEAD_VALIDATION_FAILED",
			wantRetries: 0,
		},
		{
			name:        "lead record is retryable",
			err:         NewLeadRecordFailedError(stderrors.New("conn reset")),
			wantCode:    "LEAD_RECORD_FAILED",
			wantRetries: 3,
		},
		{
			name:        "unknown code falls back to itself",
			err:         NewSessionRequiredError(),
			wantCode:    "SESSION_REQUIRED",
			wantRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetries, bpmnErr.Retries)

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

// ==========================
// Utility Functions
// ==========================

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeValidationFailed))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeInputParsingFailed))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCodeSessionRequired))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrCodeOnboardingPreconditionNotMet))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrCodeOnboardingSkipNotAllowed))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrCodeOnboardingInvalidValue))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrCodeStateStoreUnavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeNotificationSendFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeMailTransportUnavailable))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "ONBOARDING", GetErrorCategory(ErrCodeOnboardingInvalidValue))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeMailTransportUnavailable))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeLeadRecordFailed))
	assert.Equal(t, "SESSION", GetErrorCategory(ErrCodeSessionRequired))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	assert.False(t, IsRetryableErrorCode(ErrCodeNotificationSendFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeStateStoreUnavailable))
}

func TestNormalize(t *testing.T) {
	stdErr := NewValidationError("bad", "")
	assert.Same(t, stdErr, Normalize(stdErr))

	n := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, n.Code)
	assert.Equal(t, "boom", n.Details)
}
