package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"PaperCast/internal/domain"
	"PaperCast/internal/ports"
)

// Summarizer produces one narrative paragraph per article via the model.
// Failures yield empty text, never an error to the caller.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer builds the component.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	return &Summarizer{logger: logger}
}

// Summarize narrates content for a listener. The prompt demands flowing
// prose opening with a connecting phrase that names the article title.
func (s *Summarizer) Summarize(ctx context.Context, chat ports.ChatModel, article domain.Article, content, userInfo string) string {
	prompt := fmt.Sprintf(
		"User info: %s\n\n"+
			"Please summarize the following article titled '%s' in a fluid narrative prose style "+
			"without lists or visual cues. "+
			"Begin the summary with a connecting segment like 'And now, Article: %s'.\n\n"+
			"Article Content:\n%s",
		userInfo, article.Title, article.Title, content)

	reply, err := chat.Complete(ctx, prompt)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("summarization failed", "id", article.ID, "error", err)
		}
		return ""
	}
	return reply
}
