// internal/fetcher/fetcher.go
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"compliance-engine/internal/common/errors"
	"compliance-engine/internal/common/httpclient"
	"compliance-engine/internal/common/logger"
	"compliance-engine/pkg/sources"
)

// maxExportSize bounds how much of a list export we are willing to buffer.
// The largest real-world consolidated exports are tens of megabytes.
const maxExportSize = 256 << 20

// Fetcher downloads list exports over HTTP for the importer.
type Fetcher struct {
	client *httpclient.Client
	logger logger.Logger
}

// New creates a Fetcher with the given per-request timeout.
func New(timeout time.Duration, log logger.Logger) *Fetcher {
	return &Fetcher{
		client: httpclient.NewClient(timeout),
		logger: log.WithFields(map[string]interface{}{"component": "fetcher"}),
	}
}

// Fetch downloads one source's export and returns its body. The caller owns
// closing the reader.
func (f *Fetcher) Fetch(ctx context.Context, source sources.Source) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, errors.NewListFetchFailedError(source.ID, err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := f.client.DoWithContext(ctx, req)
	if err != nil {
		return nil, errors.NewListFetchFailedError(source.ID, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.NewListFetchFailedError(source.ID,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	f.logger.Info("list export fetched", map[string]interface{}{
		"source":   source.ID,
		"url":      source.URL,
		"elapsed":  time.Since(start).String(),
		"sizeHint": resp.ContentLength,
	})

	return readCloser{io.LimitReader(resp.Body, maxExportSize), resp.Body}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
