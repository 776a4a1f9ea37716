package signals

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/cache"
	"github.com/ppiankov/factlens/internal/model"
)

// FeedSearcher matches keywords against items of configured RSS/Atom feeds
type FeedSearcher struct {
	feeds []model.FeedConfig
	opts  Options
}

// NewFeedSearcher creates a new feed searcher
func NewFeedSearcher(feeds []model.FeedConfig, opts Options) *FeedSearcher {
	return &FeedSearcher{
		feeds: append([]model.FeedConfig(nil), feeds...),
		opts:  opts.withDefaults(),
	}
}

// Name returns the adapter name
func (s *FeedSearcher) Name() string {
	return "rss"
}

// Search reads every feed concurrently and keeps items that mention a keyword.
// A feed that fails is skipped; the search fails only if every feed fails.
func (s *FeedSearcher) Search(ctx context.Context, keywords []string) (*model.NewsResult, error) {
	keywords = cleanKeywords(keywords)
	result := &model.NewsResult{Articles: []model.NewsArticle{}}
	if len(keywords) == 0 || len(s.feeds) == 0 {
		return result, nil
	}

	type feedResult struct {
		articles []model.NewsArticle
		err      error
	}

	results := make([]feedResult, len(s.feeds))
	var wg sync.WaitGroup
	for i, fc := range s.feeds {
		wg.Add(1)
		go func(i int, fc model.FeedConfig) {
			defer wg.Done()
			feed, err := s.fetchFeed(ctx, fc.URL)
			if err != nil {
				s.opts.Logger.Warn("feed unavailable", zap.String("feed", fc.URL), zap.Error(err))
				results[i].err = err
				return
			}
			results[i].articles = matchItems(feed, fc.Source, keywords)
		}(i, fc)
	}
	wg.Wait()

	failed := 0
	var lastErr error
	for _, r := range results {
		if r.err != nil {
			failed++
			lastErr = r.err
			continue
		}
		result.Articles = append(result.Articles, r.articles...)
	}
	if failed == len(s.feeds) {
		return nil, fmt.Errorf("all %d feeds failed: %w", failed, lastErr)
	}

	sortByRelevance(result.Articles)
	result.TotalResults = len(result.Articles)
	return result, nil
}

// fetchFeed retrieves and parses a feed, caching the parsed items
func (s *FeedSearcher) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	key := cache.Key("feed", feedURL)
	if cached, ok := cache.GetJSON[gofeed.Feed](s.opts.Cache, key); ok {
		return &cached, nil
	}

	if err := s.opts.wait(ctx, feedURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	if err := cache.SetJSON(s.opts.Cache, key, feed, s.opts.CacheTTL); err != nil {
		s.opts.Logger.Warn("failed to cache feed", zap.String("feed", feedURL), zap.Error(err))
	}
	return feed, nil
}

// matchItems attributes articles to the configured source so they can be
// checked against the reputable outlet list
func matchItems(feed *gofeed.Feed, source string, keywords []string) []model.NewsArticle {
	source = strings.TrimSpace(source)
	if source == "" {
		source = strings.TrimSpace(feed.Title)
	}
	if source == "" {
		source = "Unknown"
	}

	var articles []model.NewsArticle
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		relevance := Relevance(item.Title, item.Description, item.Content, keywords)
		if relevance == 0 {
			continue
		}
		articles = append(articles, model.NewsArticle{
			Title:       item.Title,
			URL:         item.Link,
			Source:      source,
			Description: item.Description,
			PublishedAt: publishDate(item),
			Relevance:   relevance,
		})
	}
	return articles
}

func publishDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	return item.Published
}
