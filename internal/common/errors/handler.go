// internal/common/errors/handler.go
package errors

// ErrorHandler normalizes and logs failures at an operation boundary. The
// notification manager converts errors to boolean results at its public
// surface; this keeps the logging uniform on the way out.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleOperationError normalizes err, logs it with its code metadata and
// returns the StandardError for callers that count by code.
func (h *ErrorHandler) HandleOperationError(operation string, err error) *StandardError {
	stdErr := Normalize(err)

	fields := map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}

	// Tolerated failures (degraded key fetch, heartbeat drops, storage
	// write-through) are warnings, not errors.
	switch stdErr.Code {
	case ErrCodeKeyFetchFailed, ErrCodeHeartbeatFailed, ErrCodePersistenceFailed,
		ErrCodeUnsubscribeNotifyFailed:
		h.logger.Warn("operation degraded", fields)
	default:
		h.logger.Error("operation failed", fields)
	}

	return stdErr
}
