// internal/common/errors/handler.go
package errors

import (
	"net/http"
	"time"
)

// ErrorHandler normalizes failures at the API boundary and logs them with
// their retry and category metadata.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err, logs it against the named operation and returns the
// HTTP status code the response should carry.
func (h *ErrorHandler) Handle(operation string, err error) (*StandardError, int) {
	stdErr := h.normalizeError(err)
	h.logError(operation, stdErr)
	return stdErr, HTTPStatus(stdErr.Code)
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) logError(operation string, stdErr *StandardError) {
	h.logger.Error("Operation failed", map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"retries":       GetRetryCount(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
}

// HTTPStatus maps an error code to the response status the API should return.
// Caller-fault codes map to 4xx, backend trouble to 502/504 so load balancers
// and clients can distinguish retryable failures.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidFramework, ErrCodeRowValidationFailed, ErrCodeImportBatchFailed:
		return http.StatusBadRequest
	case ErrCodeSearchTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeWatchlistQueryFailed,
		ErrCodeScreeningBackendUnavailable,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeWatchlistInsertFailed,
		ErrCodeWatchlistDeactivationFailed,
		ErrCodeListFetchFailed,
		ErrCodeFindingsIndexFailed,
		ErrCodeFindingsSearchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
