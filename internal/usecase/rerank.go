package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"PaperCast/internal/domain"
	"PaperCast/internal/jsonx"
	"PaperCast/internal/ports"
)

// Reranker asks the model to reorder candidates by estimated importance in
// a single call. Any failure degrades to the input order; the output is
// always a permutation of the input.
type Reranker struct {
	logger *slog.Logger
}

// NewReranker builds the component.
func NewReranker(logger *slog.Logger) *Reranker {
	return &Reranker{logger: logger}
}

// Rerank returns the reordered candidates and the outcome that produced the
// order. Ids the model ranked come first in the model's order; unranked
// input ids follow in their original relative order; unknown ranked ids are
// dropped.
func (r *Reranker) Rerank(ctx context.Context, chat ports.ChatModel, articles []domain.Article, userInfo string) ([]domain.Article, Outcome) {
	if len(articles) == 0 {
		return nil, OutcomeEmptyInput
	}

	reply, err := chat.Complete(ctx, buildRerankPrompt(articles, userInfo))
	if err != nil {
		r.warn("rerank model call failed, keeping input order", "error", err)
		return articles, OutcomeIdentityOrder
	}

	var parsed struct {
		Ranking []string `json:"ranking"`
	}
	if err := jsonx.DecodeObject(reply, &parsed); err != nil {
		r.warn("rerank response unparsable, keeping input order", "error", err)
		return articles, OutcomeIdentityOrder
	}

	remaining := make(map[string]domain.Article, len(articles))
	for _, article := range articles {
		remaining[article.ID] = article
	}

	reordered := make([]domain.Article, 0, len(articles))
	for _, id := range parsed.Ranking {
		article, ok := remaining[id]
		if !ok {
			continue
		}
		reordered = append(reordered, article)
		delete(remaining, id)
	}
	for _, article := range articles {
		if _, ok := remaining[article.ID]; ok {
			reordered = append(reordered, article)
		}
	}

	return reordered, OutcomeRanked
}

func buildRerankPrompt(articles []domain.Article, userInfo string) string {
	lines := []string{
		fmt.Sprintf("User info: %s\n", userInfo),
		`Please rank the following articles from most relevant to least relevant. ` +
			`Return your answer as valid JSON in the format: { "ranking": [ "id1", "id2", ... ] }.`,
	}
	for _, article := range articles {
		lines = append(lines, fmt.Sprintf("Article ID: %s\nTitle: %s\nAbstract: %s\n",
			article.ID, article.Title, article.Abstract))
	}
	return strings.Join(lines, "\n")
}

func (r *Reranker) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
