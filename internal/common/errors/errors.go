// Package errors provides standardized error handling for the compliance engine.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidFramework ErrorCode = "INVALID_FRAMEWORK"

	ErrCodeWatchlistQueryFailed         ErrorCode = "WATCHLIST_QUERY_FAILED"
	ErrCodeScreeningBackendUnavailable  ErrorCode = "SCREENING_BACKEND_UNAVAILABLE"
	ErrCodeScreeningHistoryWriteFailed  ErrorCode = "SCREENING_HISTORY_WRITE_FAILED"
	ErrCodeDatabaseConnectionFailed     ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeWatchlistInsertFailed        ErrorCode = "WATCHLIST_INSERT_FAILED"
	ErrCodeWatchlistDeactivationFailed  ErrorCode = "WATCHLIST_DEACTIVATION_FAILED"

	ErrCodeImportBatchFailed   ErrorCode = "IMPORT_BATCH_FAILED"
	ErrCodeRowValidationFailed ErrorCode = "ROW_VALIDATION_FAILED"
	ErrCodeListFetchFailed     ErrorCode = "LIST_FETCH_FAILED"

	ErrCodeFindingsIndexFailed  ErrorCode = "FINDINGS_INDEX_FAILED"
	ErrCodeFindingsSearchFailed ErrorCode = "FINDINGS_SEARCH_FAILED"
	ErrCodeSearchTimeout        ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeAlertSendFailed ErrorCode = "ALERT_SEND_FAILED"
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

// NewInvalidFrameworkError creates a non-retryable programmer error for an
// unknown framework name.
func NewInvalidFrameworkError(framework string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFramework,
		Message:   "Unknown compliance framework",
		Details:   fmt.Sprintf("framework: %s", framework),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWatchlistQueryFailedError creates a retryable watchlist lookup error.
func NewWatchlistQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWatchlistQueryFailed,
		Message:   "Database error during watchlist query",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScreeningBackendUnavailableError creates a retryable storage-layer error.
// Screening converts this into a structured error result instead of raising.
func NewScreeningBackendUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScreeningBackendUnavailable,
		Message:   "Screening storage backend unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScreeningHistoryWriteFailedError creates a retryable audit-log error.
func NewScreeningHistoryWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScreeningHistoryWriteFailed,
		Message:   "Failed to append screening history record",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWatchlistInsertFailedError creates a retryable batch insert error.
func NewWatchlistInsertFailedError(batch int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWatchlistInsertFailed,
		Message:   "Watchlist batch insert failed",
		Details:   fmt.Sprintf("batch: %d, error: %s", batch, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWatchlistDeactivationFailedError creates a retryable soft-delete error.
func NewWatchlistDeactivationFailedError(listName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWatchlistDeactivationFailed,
		Message:   "Failed to deactivate prior list entries",
		Details:   fmt.Sprintf("listName: %s, error: %s", listName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewImportBatchFailedError creates a retryable import error.
func NewImportBatchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeImportBatchFailed,
		Message:   "CSV import batch failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRowValidationFailedError creates a non-retryable per-row error. The
// importer counts these and continues; they are never fatal to the file.
func NewRowValidationFailedError(row int, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRowValidationFailed,
		Message:   "Row failed schema validation",
		Details:   fmt.Sprintf("row: %d, %s", row, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewListFetchFailedError creates a retryable list download error.
func NewListFetchFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeListFetchFailed,
		Message:   "Sanctions list download failed",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFindingsIndexFailedError creates a retryable Elasticsearch index error.
func NewFindingsIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFindingsIndexFailed,
		Message:   "Failed to index findings",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFindingsSearchFailedError creates a retryable Elasticsearch search error.
func NewFindingsSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFindingsSearchFailed,
		Message:   "Findings search failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(index string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Findings search timed out",
		Details:   fmt.Sprintf("index: %s", index),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertSendFailedError creates a retryable notification error. Alerting is
// best-effort; callers log and continue.
func NewAlertSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertSendFailed,
		Message:   "Compliance alert delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry / Category Tables
// ==========================

// GetRetryCount returns how many times an error code should be retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeWatchlistQueryFailed,
		ErrCodeScreeningBackendUnavailable,
		ErrCodeWatchlistInsertFailed,
		ErrCodeImportBatchFailed,
		ErrCodeListFetchFailed,
		ErrCodeFindingsIndexFailed,
		ErrCodeFindingsSearchFailed,
		ErrCodeSearchTimeout:
		return 3
	case ErrCodeScreeningHistoryWriteFailed,
		ErrCodeWatchlistDeactivationFailed,
		ErrCodeAlertSendFailed:
		return 1
	default:
		return 0
	}
}

// GetErrorCategory groups error codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidFramework:
		return "programmer"
	case ErrCodeRowValidationFailed:
		return "data_quality"
	case ErrCodeAlertSendFailed:
		return "notification"
	case ErrCodeFindingsIndexFailed, ErrCodeFindingsSearchFailed, ErrCodeSearchTimeout:
		return "search"
	default:
		return "storage"
	}
}
