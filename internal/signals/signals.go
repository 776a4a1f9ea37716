package signals

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/cache"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/worker"
)

// NewsSearcher finds news articles related to a set of keywords
type NewsSearcher interface {
	Name() string
	Search(ctx context.Context, keywords []string) (*model.NewsResult, error)
}

// FactCheckSearcher finds reviewed claims related to a set of keywords
type FactCheckSearcher interface {
	Name() string
	Search(ctx context.Context, keywords []string) ([]model.FactCheckClaim, error)
}

// Options are the shared dependencies of every outbound adapter
type Options struct {
	HTTPClient *http.Client
	Limiter    *worker.Limiter
	Cache      cache.Cache
	CacheTTL   time.Duration
	Logger     *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if o.Cache == nil {
		o.Cache = cache.Noop{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func (o Options) wait(ctx context.Context, rawURL string) error {
	if o.Limiter == nil {
		return nil
	}
	if err := o.Limiter.Wait(ctx, rawURL); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// NewNewsSearcher creates the configured news searcher. An empty provider
// disables news search and returns nil.
func NewNewsSearcher(config model.NewsConfig, opts Options) (NewsSearcher, error) {
	switch strings.ToLower(config.Provider) {
	case "":
		return nil, nil
	case "newsapi":
		if config.APIKey == "" {
			return nil, fmt.Errorf("newsapi requires an API key (set NEWS_API_KEY)")
		}
		return NewNewsAPIClient(config, opts), nil
	case "rss":
		if len(config.Feeds) == 0 {
			return nil, fmt.Errorf("rss news search requires at least one feed")
		}
		return NewFeedSearcher(config.Feeds, opts), nil
	default:
		return nil, fmt.Errorf("unsupported news provider: %s (supported: newsapi, rss)", config.Provider)
	}
}

// Relevance scores an article against keywords: +3 per keyword in the title,
// +2 in the description, +1 in the content, capped at 10
func Relevance(title, description, content string, keywords []string) int {
	title = strings.ToLower(title)
	description = strings.ToLower(description)
	content = strings.ToLower(content)

	score := 0
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(title, keyword) {
			score += 3
		}
		if strings.Contains(description, keyword) {
			score += 2
		}
		if strings.Contains(content, keyword) {
			score++
		}
	}

	if score > 10 {
		return 10
	}
	return score
}

func sortByRelevance(articles []model.NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Relevance > articles[j].Relevance
	})
}

func cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
