package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"PaperCast/internal/domain"
	"PaperCast/internal/jsonx"
	"PaperCast/internal/ports"
)

// Filter partitions candidates into relevant and irrelevant by querying the
// model in fixed-size batches. Batches run concurrently; a failed batch
// contributes nothing and never aborts its siblings.
type Filter struct {
	batchSize int
	workers   int
	logger    *slog.Logger
}

// FilterResult carries the unioned verdicts plus per-batch accounting.
type FilterResult struct {
	IDs           map[string]struct{}
	Batches       int
	FailedBatches int
}

// NewFilter configures batch size and worker pool bounds.
func NewFilter(batchSize, workers int, logger *slog.Logger) *Filter {
	if batchSize <= 0 {
		batchSize = 50
	}
	if workers <= 0 {
		workers = 4
	}
	return &Filter{batchSize: batchSize, workers: workers, logger: logger}
}

// Relevant returns the set of article ids the model judged relevant to
// userInfo. An id is relevant iff its verdict, trimmed and lower-cased, is
// exactly "yes"; everything else, including batch failures, means
// not relevant.
func (f *Filter) Relevant(ctx context.Context, chat ports.ChatModel, articles []domain.Article, userInfo string) FilterResult {
	result := FilterResult{IDs: map[string]struct{}{}}
	if len(articles) == 0 {
		return result
	}

	var batches [][]domain.Article
	for start := 0; start < len(articles); start += f.batchSize {
		end := start + f.batchSize
		if end > len(articles) {
			end = len(articles)
		}
		batches = append(batches, articles[start:end])
	}
	result.Batches = len(batches)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, batch := range batches {
		g.Go(func() error {
			ids, err := f.processBatch(gctx, chat, batch, userInfo)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.FailedBatches++
				f.warn("relevance batch failed", "batch", i, "size", len(batch), "error", err)
				return nil
			}
			for id := range ids {
				result.IDs[id] = struct{}{}
			}
			return nil
		})
	}
	_ = g.Wait()

	f.info("relevance check complete", "articles", len(articles),
		"relevant", len(result.IDs), "failed_batches", result.FailedBatches)
	return result
}

func (f *Filter) processBatch(ctx context.Context, chat ports.ChatModel, batch []domain.Article, userInfo string) (map[string]struct{}, error) {
	reply, err := chat.Complete(ctx, buildFilterPrompt(batch, userInfo))
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	verdicts := map[string]any{}
	if err := jsonx.DecodeObject(reply, &verdicts); err != nil {
		return nil, fmt.Errorf("parse verdicts: %w", err)
	}

	ids := map[string]struct{}{}
	for id, verdict := range verdicts {
		text, ok := verdict.(string)
		if !ok {
			continue
		}
		if strings.ToLower(strings.TrimSpace(text)) == "yes" {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func buildFilterPrompt(batch []domain.Article, userInfo string) string {
	lines := []string{
		fmt.Sprintf("User info: %s\n", userInfo),
		"For each of the following articles, determine if it is relevant to the user. " +
			"Respond in JSON format with keys as the article IDs and values as 'yes' or 'no'. " +
			"Do not add extra text; the response must start with '{'.",
	}
	for _, article := range batch {
		lines = append(lines, fmt.Sprintf("Article ID: %s\nTitle: %s\nAbstract: %s\n",
			article.ID, article.Title, article.Abstract))
	}
	return strings.Join(lines, "\n")
}

func (f *Filter) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

func (f *Filter) info(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Info(msg, args...)
	}
}
