package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperCast/internal/domain"
	"PaperCast/internal/infrastructure/cache"
	"PaperCast/internal/ports"
)

var fixedNow = time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)

const fixedTrailer = "Thanks for listening to the report. Generated on January 15, 2025 at 10:30 AM by PaperCast."

// scriptedChat routes prompts to canned replies by recognizing which stage
// built them.
func scriptedChat(filterReply, rerankReply string, summaries map[string]string) chatFunc {
	return func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "determine if it is relevant"):
			return filterReply, nil
		case strings.Contains(prompt, `"ranking"`):
			return rerankReply, nil
		case strings.Contains(prompt, "Please summarize"):
			for title, summary := range summaries {
				if strings.Contains(prompt, "titled '"+title+"'") {
					return summary, nil
				}
			}
			return "", errStub
		default:
			return "", errStub
		}
	}
}

func newTestPipeline(t *testing.T, chat ports.ChatModel, source ports.ListingSource, store ports.Store, deps func(*PipelineDeps)) *Pipeline {
	t.Helper()
	d := PipelineDeps{
		Source:         source,
		Articles:       store,
		Chat:           chat,
		Filter:         NewFilter(50, 2, nil),
		Reranker:       NewReranker(nil),
		Loader:         NewLoader(store, &stubDownloader{payload: []byte("%PDF-fake")}, &stubConverter{text: "converted text"}, nil),
		Summarizer:     NewSummarizer(nil),
		SummaryWorkers: 2,
		Now:            func() time.Time { return fixedNow },
	}
	if deps != nil {
		deps(&d)
	}
	return NewPipeline(d)
}

func fixedListing(articles ...domain.Article) sourceFunc {
	return func(_ context.Context, _ bool, _ string) ([]domain.Article, error) {
		return articles, nil
	}
}

func TestProcessEndToEnd(t *testing.T) {
	t.Parallel()

	a := domain.Article{ID: "arXiv:2501.00001", Title: "First", Abstract: "aa", PDFURL: "https://arxiv.org/pdf/2501.00001"}
	b := domain.Article{ID: "arXiv:2501.00002", Title: "Second", Abstract: "bb", PDFURL: "https://arxiv.org/pdf/2501.00002"}
	c := domain.Article{ID: "arXiv:2501.00003", Title: "Third", Abstract: "cc", PDFURL: "https://arxiv.org/pdf/2501.00003"}

	// Two of three relevant, rerank puts the third first, limit of one
	// keeps only it.
	chat := scriptedChat(
		`{"arXiv:2501.00001": "yes", "arXiv:2501.00002": "no", "arXiv:2501.00003": "yes"}`,
		`{"ranking": ["arXiv:2501.00003", "arXiv:2501.00001"]}`,
		map[string]string{"Third": "And now, Article: Third. A fine result."},
	)

	pipeline := newTestPipeline(t, chat, fixedListing(a, b, c), cache.NewMemoryStore(), nil)
	report, err := pipeline.Process(context.Background(), Request{UserInfo: "user", MaxArticles: 1})
	require.NoError(t, err)

	assert.Equal(t, "And now, Article: Third. A fine result.\n\n"+fixedTrailer, report)
}

func TestProcessConcatenatesWithBlankLines(t *testing.T) {
	t.Parallel()

	a := domain.Article{ID: "a", Title: "Alpha", Abstract: "aa", PDFURL: "https://arxiv.org/pdf/a"}
	b := domain.Article{ID: "b", Title: "Beta", Abstract: "bb", PDFURL: "https://arxiv.org/pdf/b"}

	chat := scriptedChat(
		`{"a": "yes", "b": "yes"}`,
		`{"ranking": ["a", "b"]}`,
		map[string]string{"Alpha": "Summary of Alpha.", "Beta": "Summary of Beta."},
	)

	pipeline := newTestPipeline(t, chat, fixedListing(a, b), cache.NewMemoryStore(), nil)
	report, err := pipeline.Process(context.Background(), Request{UserInfo: "user"})
	require.NoError(t, err)

	// Summaries land in completion order, so accept either arrangement.
	paragraphs := strings.Split(report, "\n\n")
	require.Len(t, paragraphs, 3)
	assert.ElementsMatch(t, []string{"Summary of Alpha.", "Summary of Beta."}, paragraphs[:2])
	assert.Equal(t, fixedTrailer, paragraphs[2])
}

func TestProcessNewOnlyDropsOlderCandidates(t *testing.T) {
	t.Parallel()

	older := domain.Article{ID: "arXiv:2501.00001", Title: "Old", Abstract: "aa", PDFURL: "https://arxiv.org/pdf/2501.00001"}
	newer := domain.Article{ID: "arXiv:2502.00001", Title: "New", Abstract: "bb", PDFURL: "https://arxiv.org/pdf/2502.00001"}

	store := cache.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), domain.SafeID("arXiv:2501.00005"), []byte("seen")))

	chat := scriptedChat(
		`{"arXiv:2502.00001": "yes"}`,
		`{"ranking": ["arXiv:2502.00001"]}`,
		map[string]string{"New": "Summary of New."},
	)

	pipeline := newTestPipeline(t, chat, fixedListing(older, newer), store, nil)

	report, err := pipeline.Process(context.Background(), Request{UserInfo: "user", NewOnly: true})
	require.NoError(t, err)

	assert.Contains(t, report, "Summary of New.")
	assert.NotContains(t, report, "Old")
}

func TestProcessNewOnlyNothingNewYieldsTrailerOnly(t *testing.T) {
	t.Parallel()

	seen := domain.Article{ID: "arXiv:2501.00001", Title: "Seen", Abstract: "aa", PDFURL: "https://arxiv.org/pdf/2501.00001"}

	store := cache.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), domain.SafeID("arXiv:2502.00009"), []byte("seen")))

	chat := chatFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "determine if it is relevant") {
			return "{}", nil
		}
		return "", errStub
	})

	pipeline := newTestPipeline(t, chat, fixedListing(seen), store, nil)
	report, err := pipeline.Process(context.Background(), Request{UserInfo: "user", NewOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "\n\n"+fixedTrailer, report)
}

func TestProcessListingFailureIsFatal(t *testing.T) {
	t.Parallel()

	source := sourceFunc(func(_ context.Context, _ bool, _ string) ([]domain.Article, error) {
		return nil, errStub
	})
	pipeline := newTestPipeline(t, chatFunc(func(_ context.Context, _ string) (string, error) {
		return "", errStub
	}), source, cache.NewMemoryStore(), nil)

	_, err := pipeline.Process(context.Background(), Request{UserInfo: "user"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch listing")
}

func TestProcessPublishesProgress(t *testing.T) {
	t.Parallel()

	a := domain.Article{ID: "a", Title: "Alpha", Abstract: "aa", PDFURL: "https://arxiv.org/pdf/a"}
	chat := scriptedChat(
		`{"a": "yes"}`,
		`{"ranking": ["a"]}`,
		map[string]string{"Alpha": "Summary of Alpha."},
	)

	notifier := &recordingNotifier{}
	pipeline := newTestPipeline(t, chat, fixedListing(a), cache.NewMemoryStore(), func(d *PipelineDeps) {
		d.Notifier = notifier
	})

	_, err := pipeline.Process(context.Background(), Request{UserInfo: "user"})
	require.NoError(t, err)
	require.NotEmpty(t, notifier.messages)

	// Every message carries the same short run id prefix.
	prefix := notifier.messages[0][:11]
	assert.Regexp(t, `^\[[0-9a-f]{8}\] `, prefix)
	for _, msg := range notifier.messages {
		assert.True(t, strings.HasPrefix(msg, prefix), "message %q lacks run prefix %q", msg, prefix)
	}
	assert.Contains(t, notifier.messages[0], "fetched 1 articles")
}

func TestProcessUsesFactoryForOverrides(t *testing.T) {
	t.Parallel()

	a := domain.Article{ID: "a", Title: "Alpha", Abstract: "aa", PDFURL: "https://arxiv.org/pdf/a"}
	override := scriptedChat(
		`{"a": "yes"}`,
		`{"ranking": ["a"]}`,
		map[string]string{"Alpha": "Override summary."},
	)

	var gotTier string
	defaultChat := chatFunc(func(_ context.Context, _ string) (string, error) {
		return "", errStub
	})
	pipeline := newTestPipeline(t, defaultChat, fixedListing(a), cache.NewMemoryStore(), func(d *PipelineDeps) {
		d.NewModel = func(_, _, tier string) ports.ChatModel {
			gotTier = tier
			return override
		}
	})

	report, err := pipeline.Process(context.Background(), Request{UserInfo: "user", Tier: "high"})
	require.NoError(t, err)
	assert.Equal(t, "high", gotTier)
	assert.Contains(t, report, "Override summary.")
}
