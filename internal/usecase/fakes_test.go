package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"PaperCast/internal/domain"
)

// chatFunc adapts a function to ports.ChatModel.
type chatFunc func(ctx context.Context, prompt string) (string, error)

func (f chatFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// sourceFunc adapts a function to ports.ListingSource.
type sourceFunc func(ctx context.Context, forceRefresh bool, sourceURL string) ([]domain.Article, error)

func (f sourceFunc) Fetch(ctx context.Context, forceRefresh bool, sourceURL string) ([]domain.Article, error) {
	return f(ctx, forceRefresh, sourceURL)
}

// stubDownloader serves a fixed payload, or an error when failWith is set.
type stubDownloader struct {
	payload  []byte
	failWith error
	calls    int
}

func (d *stubDownloader) Download(_ context.Context, _ domain.Article) (io.ReadCloser, error) {
	d.calls++
	if d.failWith != nil {
		return nil, d.failWith
	}
	return io.NopCloser(bytes.NewReader(d.payload)), nil
}

// stubConverter records the path it was handed and returns fixed text or an
// error.
type stubConverter struct {
	text     string
	failWith error
	lastPath string
}

func (c *stubConverter) Convert(_ context.Context, path string) (string, error) {
	c.lastPath = path
	if c.failWith != nil {
		return "", c.failWith
	}
	return c.text, nil
}

// recordingNotifier collects published progress messages.
type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Publish(_ context.Context, message string) error {
	n.messages = append(n.messages, message)
	return nil
}

var errStub = fmt.Errorf("stub failure")
