package usecase

import (
	"context"
	"io"
	"log/slog"
	"os"

	"PaperCast/internal/domain"
	"PaperCast/internal/ports"
)

// Loader resolves an article to its converted plain text, consulting the
// per-id cache slot first. Every expected failure mode yields empty text
// and a named outcome instead of an error.
type Loader struct {
	store      ports.Store
	downloader ports.Downloader
	converter  ports.Converter
	logger     *slog.Logger
}

// NewLoader wires the cache store and the external collaborators.
func NewLoader(store ports.Store, downloader ports.Downloader, converter ports.Converter, logger *slog.Logger) *Loader {
	return &Loader{store: store, downloader: downloader, converter: converter, logger: logger}
}

// Load returns the article text. A cache slot, once written, is treated as
// permanently valid. The downloaded document lives in a temporary file that
// is removed on every exit path.
func (l *Loader) Load(ctx context.Context, article domain.Article) (string, Outcome) {
	key := domain.SafeID(article.ID)

	if cached, ok, err := l.store.Get(ctx, key); err != nil {
		l.warn("cache read failed, treating as miss", "id", article.ID, "error", err)
	} else if ok {
		l.debug("converted text cache hit", "id", article.ID)
		return string(cached), OutcomeCacheHit
	}

	if !article.HasDocument() {
		l.warn("article has no document url, skipping conversion", "id", article.ID)
		return "", OutcomeNoDocument
	}

	body, err := l.downloader.Download(ctx, article)
	if err != nil {
		l.warn("document download failed", "id", article.ID, "error", err)
		return "", OutcomeDownloadFailed
	}
	defer body.Close()

	tmpPath, err := stageTempFile(body)
	if err != nil {
		l.warn("staging document failed", "id", article.ID, "error", err)
		return "", OutcomeDownloadFailed
	}
	defer os.Remove(tmpPath)

	text, err := l.converter.Convert(ctx, tmpPath)
	if err != nil {
		l.warn("document conversion failed", "id", article.ID, "error", err)
		return "", OutcomeConvertFailed
	}

	if err := l.store.Put(ctx, key, []byte(text)); err != nil {
		l.warn("persisting converted text failed", "id", article.ID, "error", err)
	}
	return text, OutcomeConverted
}

func stageTempFile(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "papercast-*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (l *Loader) warn(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}

func (l *Loader) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
