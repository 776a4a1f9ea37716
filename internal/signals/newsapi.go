package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/cache"
	"github.com/ppiankov/factlens/internal/model"
)

// Only the first few keywords are OR'ed into the query
const newsQueryKeywords = 3

// NewsAPIClient searches the NewsAPI /v2/everything endpoint
type NewsAPIClient struct {
	baseURL  string
	apiKey   string
	language string
	pageSize int
	opts     Options
}

// NewNewsAPIClient creates a new NewsAPI client
func NewNewsAPIClient(config model.NewsConfig, opts Options) *NewsAPIClient {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://newsapi.org"
	}
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	language := config.Language
	if language == "" {
		language = "en"
	}

	return &NewsAPIClient{
		baseURL:  baseURL,
		apiKey:   config.APIKey,
		language: language,
		pageSize: pageSize,
		opts:     opts.withDefaults(),
	}
}

// Name returns the adapter name
func (c *NewsAPIClient) Name() string {
	return "newsapi"
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// Search queries articles matching any of the first three keywords, ranked by relevance
func (c *NewsAPIClient) Search(ctx context.Context, keywords []string) (*model.NewsResult, error) {
	keywords = cleanKeywords(keywords)
	if len(keywords) == 0 {
		return &model.NewsResult{Articles: []model.NewsArticle{}}, nil
	}
	if len(keywords) > newsQueryKeywords {
		keywords = keywords[:newsQueryKeywords]
	}

	key := cache.Key("newsapi", append([]string{c.language, strconv.Itoa(c.pageSize)}, keywords...)...)
	if cached, ok := cache.GetJSON[model.NewsResult](c.opts.Cache, key); ok {
		c.opts.Logger.Debug("news search cache hit", zap.Strings("keywords", keywords))
		return &cached, nil
	}

	params := url.Values{}
	params.Set("q", strings.Join(keywords, " OR "))
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("language", c.language)
	endpoint := c.baseURL + "/v2/everything?" + params.Encode()

	if err := c.opts.wait(ctx, endpoint); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search news: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Status == "error" {
		return nil, fmt.Errorf("newsapi error (status %d): %s %s", resp.StatusCode, parsed.Code, parsed.Message)
	}

	result := &model.NewsResult{
		Articles:     make([]model.NewsArticle, 0, len(parsed.Articles)),
		TotalResults: parsed.TotalResults,
	}
	for _, a := range parsed.Articles {
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		result.Articles = append(result.Articles, model.NewsArticle{
			Title:       a.Title,
			URL:         a.URL,
			Source:      source,
			Description: a.Description,
			PublishedAt: a.PublishedAt,
			Relevance:   Relevance(a.Title, a.Description, a.Content, keywords),
		})
	}
	sortByRelevance(result.Articles)

	if err := cache.SetJSON(c.opts.Cache, key, result, c.opts.CacheTTL); err != nil {
		c.opts.Logger.Warn("failed to cache news result", zap.Error(err))
	}

	return result, nil
}
