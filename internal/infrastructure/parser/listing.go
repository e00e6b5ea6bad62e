// Package parser implements the listing source against the arXiv daily
// new-submissions page.
package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"PaperCast/internal/domain"
	"PaperCast/internal/ports"
)

const (
	arxivBaseURL = "https://arxiv.org"

	// snapshotKey is the single cache slot holding the latest full listing.
	snapshotKey = "arxiv_list"

	placeholderTitle    = "No title"
	placeholderAbstract = "No abstract"
)

// ArxivListing fetches and parses the daily listing page, with a full-result
// snapshot cache that is reused verbatim unless a refresh is forced.
type ArxivListing struct {
	client     *http.Client
	store      ports.Store
	defaultURL string
	logger     *slog.Logger
}

var _ ports.ListingSource = (*ArxivListing)(nil)

// NewArxivListing wires an HTTP client and the snapshot store.
func NewArxivListing(client *http.Client, store ports.Store, defaultURL string, logger *slog.Logger) *ArxivListing {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ArxivListing{client: client, store: store, defaultURL: defaultURL, logger: logger}
}

// Fetch returns the cached snapshot when present and not forced, otherwise
// performs one network fetch, parses it and overwrites the snapshot slot.
func (l *ArxivListing) Fetch(ctx context.Context, forceRefresh bool, sourceURL string) ([]domain.Article, error) {
	if sourceURL == "" {
		sourceURL = l.defaultURL
	}

	if !forceRefresh {
		if cached, ok := l.loadSnapshot(ctx); ok {
			l.debug("listing snapshot cache hit", "articles", len(cached))
			return cached, nil
		}
	}

	doc, err := l.fetchDocument(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	articles, err := extractArticles(doc)
	if err != nil {
		return nil, err
	}

	l.storeSnapshot(ctx, articles)
	l.debug("listing fetched", "url", sourceURL, "articles", len(articles))
	return articles, nil
}

func (l *ArxivListing) loadSnapshot(ctx context.Context) ([]domain.Article, bool) {
	if l.store == nil {
		return nil, false
	}

	raw, ok, err := l.store.Get(ctx, snapshotKey)
	if err != nil || !ok {
		return nil, false
	}

	var articles []domain.Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		l.warn("listing snapshot unreadable, refetching", "error", err)
		return nil, false
	}
	return articles, true
}

func (l *ArxivListing) storeSnapshot(ctx context.Context, articles []domain.Article) {
	if l.store == nil {
		return
	}

	raw, err := json.Marshal(articles)
	if err != nil {
		l.warn("marshal listing snapshot", "error", err)
		return
	}
	if err := l.store.Put(ctx, snapshotKey, raw); err != nil {
		l.warn("persist listing snapshot", "error", err)
	}
}

func (l *ArxivListing) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "PaperCast/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}
	return doc, nil
}

// extractArticles walks the dl/dt/dd structure of the listing page. Entries
// without an abstract link are skipped; missing title, abstract or PDF link
// fall back to placeholders rather than failing the fetch.
func extractArticles(doc *goquery.Document) ([]domain.Article, error) {
	dl := doc.Find("dl").First()
	if dl.Length() == 0 {
		return nil, fmt.Errorf("no article list found on listing page")
	}

	articles := make([]domain.Article, 0)
	dl.Find("dt").Each(func(i int, dt *goquery.Selection) {
		dd := dt.Next()

		idLink := dt.Find(`a[title="Abstract"]`).First()
		if idLink.Length() == 0 {
			return
		}
		id := strings.TrimSpace(idLink.Text())
		if id == "" {
			return
		}

		pdfURL := ""
		if href, exists := dt.Find(`a[title="Download PDF"]`).First().Attr("href"); exists {
			if strings.HasPrefix(href, "http") {
				pdfURL = href
			} else {
				pdfURL = arxivBaseURL + href
			}
		}

		title := strings.TrimSpace(strings.TrimPrefix(
			strings.TrimSpace(dd.Find("div.list-title").First().Text()), "Title:"))
		if title == "" {
			title = placeholderTitle
		}

		abstract := strings.TrimSpace(strings.TrimPrefix(
			strings.TrimSpace(dd.Find("p.mathjax").First().Text()), "Abstract:"))
		if abstract == "" {
			abstract = placeholderAbstract
		}

		articles = append(articles, domain.Article{
			ID:       id,
			Title:    title,
			Abstract: abstract,
			PDFURL:   pdfURL,
		})
	})

	return articles, nil
}

func (l *ArxivListing) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *ArxivListing) warn(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}
