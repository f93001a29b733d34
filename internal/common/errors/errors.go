// Package errors provides standardized error handling for the companion
// client core: permission, platform, network and persistence failures all
// carry a stable code so callers can log and count them uniformly.
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
	// User-declined: a terminal user choice, never retried automatically.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// Platform-unsupported: push/notifications unavailable here, detected
	// once, turns every operation into a no-op.
	ErrCodePlatformUnsupported ErrorCode = "PLATFORM_UNSUPPORTED"

	// Auth: operations that need a bearer token were called without one.
	ErrCodeAuthRequired ErrorCode = "AUTH_REQUIRED"
	ErrCodeLoginFailed  ErrorCode = "LOGIN_FAILED"

	// Transient network failures against the backend.
	ErrCodeKeyFetchFailed             ErrorCode = "KEY_FETCH_FAILED"
	ErrCodeSubscriptionRegisterFailed ErrorCode = "SUBSCRIPTION_REGISTER_FAILED"
	ErrCodeUnsubscribeNotifyFailed    ErrorCode = "UNSUBSCRIBE_NOTIFY_FAILED"
	ErrCodeHeartbeatFailed            ErrorCode = "HEARTBEAT_FAILED"
	ErrCodeBackendUnavailable         ErrorCode = "BACKEND_UNAVAILABLE"

	// Push-service failures (opening or dropping the push channel).
	ErrCodePushChannelFailed ErrorCode = "PUSH_CHANNEL_FAILED"
	ErrCodeWorkerFailed      ErrorCode = "WORKER_REGISTRATION_FAILED"

	// Persistence failures on the durable client storage.
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"

	// Anything unexpected caught at an operation boundary.
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
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewPermissionDeniedError creates a non-retryable user-declined error.
func NewPermissionDeniedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePermissionDenied,
		Message:   "Notification permission denied by the user",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlatformUnsupportedError creates a non-retryable platform error.
func NewPlatformUnsupportedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePlatformUnsupported,
		Message:   "Push notifications are not supported on this platform",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthRequiredError creates a non-retryable missing-token error.
func NewAuthRequiredError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthRequired,
		Message:   "An authenticated session is required",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLoginFailedError creates a non-retryable credential error.
func NewLoginFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLoginFailed,
		Message:   "Backend login failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewKeyFetchFailedError creates a retryable key material fetch error.
// Subscribe tolerates this one and proceeds in degraded mode.
func NewKeyFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeKeyFetchFailed,
		Message:   "Failed to fetch push key material",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubscriptionRegisterFailedError creates a retryable backend registration error.
func NewSubscriptionRegisterFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubscriptionRegisterFailed,
		Message:   "Failed to register push subscription with the backend",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnsubscribeNotifyFailedError creates a retryable backend notify error.
// Local state is cleared regardless of this one.
func NewUnsubscribeNotifyFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsubscribeNotifyFailed,
		Message:   "Failed to notify the backend of unsubscribe",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHeartbeatFailedError creates a retryable activity ping error.
func NewHeartbeatFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHeartbeatFailed,
		Message:   "Activity heartbeat failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendUnavailableError creates a retryable backend reachability error.
func NewBackendUnavailableError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnavailable,
		Message:   "Backend request failed",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPushChannelFailedError creates a retryable push service error.
func NewPushChannelFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePushChannelFailed,
		Message:   "Failed to open push channel with the push service",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkerFailedError creates a retryable worker registration error.
func NewWorkerFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkerFailed,
		Message:   "Service worker registration failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError creates a swallowed storage write error. The
// in-memory record stays authoritative for the session.
func NewPersistenceFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Durable client storage write failed",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected fault caught at an operation boundary.
func NewInternalError(operation string, v interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected internal error",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, v),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count for a code. Only the
// heartbeat ever retries implicitly, and then only by waiting for its next
// periodic tick, so everything here is advisory for callers.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeBackendUnavailable,
		ErrCodeSubscriptionRegisterFailed,
		ErrCodeUnsubscribeNotifyFailed:
		return 3

	case ErrCodeKeyFetchFailed,
		ErrCodePushChannelFailed,
		ErrCodeWorkerFailed:
		return 1

	default:
		return 0 // user choices, missing auth, persistence: no retry
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
	case strings.Contains(codeStr, "PERMISSION") || strings.Contains(codeStr, "PLATFORM"):
		return "PLATFORM"
	case strings.Contains(codeStr, "AUTH") || strings.Contains(codeStr, "LOGIN"):
		return "AUTH"
	case strings.Contains(codeStr, "KEY") || strings.Contains(codeStr, "SUBSCRIPTION") ||
		strings.Contains(codeStr, "UNSUBSCRIBE") || strings.Contains(codeStr, "PUSH") ||
		strings.Contains(codeStr, "WORKER"):
		return "SUBSCRIPTION"
	case strings.Contains(codeStr, "HEARTBEAT") || strings.Contains(codeStr, "BACKEND"):
		return "NETWORK"
	case strings.Contains(codeStr, "PERSISTENCE"):
		return "STORAGE"
	default:
		return "OTHER"
	}
}
