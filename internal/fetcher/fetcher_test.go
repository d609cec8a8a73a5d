// internal/fetcher/fetcher_test.go
package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-engine/internal/common/logger"
	"compliance-engine/pkg/sources"
)

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/csv", r.Header.Get("Accept"))
		io.WriteString(w, "SDN_Name,SDN_Type,Program\nJohn Doe,Individual,SDGT\n")
	}))
	defer server.Close()

	f := New(5*time.Second, logger.NewTestLogger(t))
	body, err := f.Fetch(context.Background(), sources.Source{ID: "ofac-sdn", URL: server.URL})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "John Doe")
}

func TestFetcher_Fetch_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := New(5*time.Second, logger.NewTestLogger(t))
	_, err := f.Fetch(context.Background(), sources.Source{ID: "ofac-sdn", URL: server.URL})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIST_FETCH_FAILED")
}

func TestFetcher_Fetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	f := New(5*time.Second, logger.NewTestLogger(t))
	_, err := f.Fetch(ctx, sources.Source{ID: "ofac-sdn", URL: server.URL})
	require.Error(t, err)
}
