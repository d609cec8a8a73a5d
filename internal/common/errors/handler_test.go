// internal/common/errors/handler_test.go
package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type captureLogger struct {
	fields map[string]interface{}
}

func (c *captureLogger) Error(msg string, fields map[string]interface{}) {
	c.fields = fields
}

func TestHandle_StandardError(t *testing.T) {
	log := &captureLogger{}
	h := NewErrorHandler(log)

	stdErr, status := h.Handle("findings_search", NewSearchTimeoutError("compliance-findings"))

	assert.Equal(t, ErrCodeSearchTimeout, stdErr.Code)
	assert.Equal(t, http.StatusGatewayTimeout, status)
	assert.Equal(t, "findings_search", log.fields["operation"])
	assert.Equal(t, "search", log.fields["errorCategory"])
	assert.Equal(t, 3, log.fields["retries"])
}

func TestHandle_NormalizesPlainErrors(t *testing.T) {
	h := NewErrorHandler(&captureLogger{})

	stdErr, status := h.Handle("analyze", fmt.Errorf("boom"))

	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), stdErr.Code)
	assert.Equal(t, "boom", stdErr.Details)
	assert.False(t, stdErr.Retryable)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeInvalidFramework))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrCodeWatchlistQueryFailed))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(ErrCodeSearchTimeout))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrorCode("SOMETHING_ELSE")))
}
