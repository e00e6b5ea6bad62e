package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"PaperCast/internal/domain"
	"PaperCast/internal/ports"
)

// ModelFactory builds a chat model for per-request endpoint, model or tier
// overrides. Empty arguments mean "keep the configured default".
type ModelFactory func(endpoint, model, tier string) ports.ChatModel

// Request carries one pipeline invocation.
type Request struct {
	UserInfo      string
	MaxArticles   int
	NewOnly       bool
	SourceURL     string
	ModelEndpoint string
	ModelName     string
	Tier          string
}

// PipelineDeps wires all collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Source         ports.ListingSource
	Articles       ports.Store
	Chat           ports.ChatModel
	NewModel       ModelFactory
	Filter         *Filter
	Reranker       *Reranker
	Loader         *Loader
	Summarizer     *Summarizer
	Notifier       ports.Notifier
	Logger         *slog.Logger
	MaxArticles    int
	SummaryWorkers int
	Now            func() time.Time
}

// Pipeline sequences fetch, relevance filtering, reranking, conversion and
// summarization into one spoken-word report.
type Pipeline struct {
	source         ports.ListingSource
	articles       ports.Store
	chat           ports.ChatModel
	newModel       ModelFactory
	filter         *Filter
	reranker       *Reranker
	loader         *Loader
	summarizer     *Summarizer
	notifier       ports.Notifier
	logger         *slog.Logger
	maxArticles    int
	summaryWorkers int
	now            func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	maxArticles := deps.MaxArticles
	if maxArticles <= 0 {
		maxArticles = 5
	}
	workers := deps.SummaryWorkers
	if workers <= 0 {
		workers = 4
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:         deps.Source,
		articles:       deps.Articles,
		chat:           deps.Chat,
		newModel:       deps.NewModel,
		filter:         deps.Filter,
		reranker:       deps.Reranker,
		loader:         deps.Loader,
		summarizer:     deps.Summarizer,
		notifier:       deps.Notifier,
		logger:         deps.Logger,
		maxArticles:    maxArticles,
		summaryWorkers: workers,
		now:            now,
	}
}

// Process executes the full pipeline and returns the final report text.
// Only a listing failure (or a new-only id parse failure) aborts the run;
// every downstream stage degrades per item, batch or call.
func (p *Pipeline) Process(ctx context.Context, req Request) (string, error) {
	runID := uuid.NewString()
	chat := p.resolveModel(req)

	articles, err := p.source.Fetch(ctx, req.NewOnly, req.SourceURL)
	if err != nil {
		return "", fmt.Errorf("fetch listing: %w", err)
	}
	p.info("listing fetched", "run", runID, "articles", len(articles))
	p.progress(ctx, runID, fmt.Sprintf("fetched %d articles", len(articles)))

	if req.NewOnly {
		articles, err = p.dropAlreadyConverted(ctx, articles)
		if err != nil {
			return "", err
		}
		p.info("new-only cut applied", "run", runID, "remaining", len(articles))
	}

	filtered := p.filter.Relevant(ctx, chat, articles, req.UserInfo)
	relevant := make([]domain.Article, 0, len(filtered.IDs))
	for _, article := range articles {
		if _, ok := filtered.IDs[article.ID]; ok {
			relevant = append(relevant, article)
		}
	}
	p.info("relevance filter done", "run", runID, "relevant", len(relevant), "of", len(articles))
	p.progress(ctx, runID, fmt.Sprintf("%d of %d articles are relevant", len(relevant), len(articles)))

	ranked, rankOutcome := p.reranker.Rerank(ctx, chat, relevant, req.UserInfo)
	p.info("rerank done", "run", runID, "outcome", string(rankOutcome))

	limit := req.MaxArticles
	if limit <= 0 {
		limit = p.maxArticles
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	// Conversions run one at a time to bound CPU, network and disk load.
	type item struct {
		article domain.Article
		content string
	}
	selected := make([]item, 0, len(ranked))
	for _, article := range ranked {
		content, outcome := p.loader.Load(ctx, article)
		if content == "" {
			p.warn("no content obtained, dropping article", "run", runID, "id", article.ID, "outcome", string(outcome))
			continue
		}
		selected = append(selected, item{article: article, content: content})
		p.progress(ctx, runID, fmt.Sprintf("converted %s (%s)", article.ID, outcome))
	}

	summaries := make([]string, 0, len(selected))
	results := make(chan string, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.summaryWorkers)
	for _, it := range selected {
		g.Go(func() error {
			summary := p.summarizer.Summarize(gctx, chat, it.article, it.content, req.UserInfo)
			if summary == "" {
				p.warn("no summary generated", "run", runID, "id", it.article.ID)
				return nil
			}
			results <- summary
			p.progress(gctx, runID, fmt.Sprintf("summarized %s", it.article.ID))
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	// Completion order, deliberately: two identical runs may order the
	// report's paragraphs differently.
	for summary := range results {
		summaries = append(summaries, summary)
	}

	report := strings.Join(summaries, "\n\n")
	report += fmt.Sprintf("\n\nThanks for listening to the report. Generated on %s by PaperCast.",
		p.now().Format("January 2, 2006 at 3:04 PM"))

	p.info("report assembled", "run", runID, "summaries", len(summaries), "chars", len(report))
	p.progress(ctx, runID, fmt.Sprintf("report ready with %d summaries", len(summaries)))
	return report, nil
}

// dropAlreadyConverted keeps only candidates newer than the most recent id
// in the converted-text cache. Ids that fail to parse are fatal here: the
// comparator is meaningless on malformed input.
func (p *Pipeline) dropAlreadyConverted(ctx context.Context, articles []domain.Article) ([]domain.Article, error) {
	keys, err := p.articles.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list converted cache: %w", err)
	}
	if len(keys) == 0 {
		return articles, nil
	}

	newest, err := domain.ParseArticleID(keys[0])
	if err != nil {
		return nil, fmt.Errorf("cached id: %w", err)
	}
	for _, key := range keys[1:] {
		parsed, err := domain.ParseArticleID(key)
		if err != nil {
			return nil, fmt.Errorf("cached id: %w", err)
		}
		if parsed.Compare(newest) > 0 {
			newest = parsed
		}
	}

	kept := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		parsed, err := domain.ParseArticleID(article.ID)
		if err != nil {
			return nil, fmt.Errorf("fetched id: %w", err)
		}
		if parsed.Compare(newest) > 0 {
			kept = append(kept, article)
		}
	}
	return kept, nil
}

func (p *Pipeline) resolveModel(req Request) ports.ChatModel {
	if p.newModel != nil && (req.ModelEndpoint != "" || req.ModelName != "" || req.Tier != "") {
		return p.newModel(req.ModelEndpoint, req.ModelName, req.Tier)
	}
	return p.chat
}

func (p *Pipeline) progress(ctx context.Context, runID, message string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Publish(ctx, fmt.Sprintf("[%s] %s", runID[:8], message)); err != nil {
		p.debug("progress publish failed", "error", err)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
