package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/cache"
	"github.com/ppiankov/factlens/internal/model"
)

// FactCheckClient queries the Google Fact Check Tools claims:search endpoint
type FactCheckClient struct {
	baseURL string
	apiKey  string
	opts    Options
}

// NewFactCheckSearcher creates the fact-check searcher. An empty API key
// disables fact-check search and returns nil.
func NewFactCheckSearcher(config model.FactCheckConfig, opts Options) FactCheckSearcher {
	if config.APIKey == "" {
		return nil
	}
	return NewFactCheckClient(config, opts)
}

// NewFactCheckClient creates a new fact-check client
func NewFactCheckClient(config model.FactCheckConfig, opts Options) *FactCheckClient {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://factchecktools.googleapis.com"
	}
	return &FactCheckClient{
		baseURL: baseURL,
		apiKey:  config.APIKey,
		opts:    opts.withDefaults(),
	}
}

// Name returns the adapter name
func (c *FactCheckClient) Name() string {
	return "factcheck"
}

type claimSearchResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
				Site string `json:"site"`
			} `json:"publisher"`
			URL           string `json:"url"`
			Title         string `json:"title"`
			ReviewDate    string `json:"reviewDate"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Search returns reviewed claims matching the keywords. Only the first
// review of each claim is used.
func (c *FactCheckClient) Search(ctx context.Context, keywords []string) ([]model.FactCheckClaim, error) {
	keywords = cleanKeywords(keywords)
	if len(keywords) == 0 {
		return []model.FactCheckClaim{}, nil
	}

	query := strings.Join(keywords, " ")
	key := cache.Key("factcheck", query)
	if cached, ok := cache.GetJSON[[]model.FactCheckClaim](c.opts.Cache, key); ok {
		c.opts.Logger.Debug("fact-check cache hit", zap.String("query", query))
		return cached, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + "/v1alpha1/claims:search?" + params.Encode()

	if err := c.opts.wait(ctx, endpoint); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search claims: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact check API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed claimSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	claims := make([]model.FactCheckClaim, 0, len(parsed.Claims))
	for _, claim := range parsed.Claims {
		fc := model.FactCheckClaim{
			Title:        claim.Text,
			Organization: "Unknown",
			Rating:       "Unknown",
		}
		if fc.Title == "" {
			fc.Title = "Fact Check"
		}
		if len(claim.ClaimReview) > 0 {
			review := claim.ClaimReview[0]
			fc.URL = review.URL
			fc.Summary = review.Title
			fc.ReviewDate = review.ReviewDate
			if review.Publisher.Name != "" {
				fc.Organization = review.Publisher.Name
			}
			if review.TextualRating != "" {
				fc.Rating = review.TextualRating
			}
		}
		claims = append(claims, fc)
	}

	if err := cache.SetJSON(c.opts.Cache, key, claims, c.opts.CacheTTL); err != nil {
		c.opts.Logger.Warn("failed to cache fact-check result", zap.Error(err))
	}

	return claims, nil
}
