// Package download fetches full article documents over HTTP.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"PaperCast/internal/domain"
	"PaperCast/internal/ports"
)

// HTTPDownloader streams a document payload from the article's PDF URL.
type HTTPDownloader struct {
	client *http.Client
}

var _ ports.Downloader = (*HTTPDownloader)(nil)

// NewHTTPDownloader wires an HTTP client.
func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &HTTPDownloader{client: client}
}

// Download returns the response body for the article document. The caller
// owns the reader and must close it.
func (d *HTTPDownloader) Download(ctx context.Context, article domain.Article) (io.ReadCloser, error) {
	if !article.HasDocument() {
		return nil, fmt.Errorf("article %s has no document url", article.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, article.PDFURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "PaperCast/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download document: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("document download returned %s", resp.Status)
	}

	return resp.Body, nil
}
