package ports

import (
	"context"
	"io"
	"time"

	"PaperCast/internal/domain"
)

// ListingSource retrieves the daily candidate listing. When forceRefresh is
// false and a cached snapshot exists it is returned verbatim without any
// network access. An empty sourceURL means the configured default.
type ListingSource interface {
	Fetch(ctx context.Context, forceRefresh bool, sourceURL string) ([]domain.Article, error)
}

// ChatModel sends one free-text prompt to a language model and returns the
// raw text of its reply. Quality tiers and rate limiting live behind this
// interface, not in callers.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Downloader fetches the full document payload for an article.
type Downloader interface {
	Download(ctx context.Context, article domain.Article) (io.ReadCloser, error)
}

// Converter turns a downloaded document file into plain text.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// Synthesizer renders the final report text into an audio file at outputPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// Notifier pushes one-way, human-readable progress messages to an external
// channel. Delivery is best effort and never required for correctness.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}

// Store is a keyed cache slot abstraction shared by the listing snapshot and
// the per-article converted text. Backends may be files, memory or SQL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context) ([]string, error)
}

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Scheduler controls when recurring pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
