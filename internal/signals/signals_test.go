package signals

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/factlens/internal/cache"
	"github.com/ppiankov/factlens/internal/heuristic"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/reputation"
	"github.com/ppiankov/factlens/internal/score"
)

func TestRelevance(t *testing.T) {
	tests := []struct {
		title       string
		description string
		content     string
		keywords    []string
		expected    int
		desc        string
	}{
		{title: "Election results", keywords: []string{"election"}, expected: 3, desc: "Title match"},
		{description: "about the election", keywords: []string{"election"}, expected: 2, desc: "Description match"},
		{content: "election night", keywords: []string{"election"}, expected: 1, desc: "Content match"},
		{title: "Election", description: "election", content: "election", keywords: []string{"ELECTION"}, expected: 6, desc: "Case-insensitive everywhere"},
		{
			title:       "vote election count",
			description: "vote election count",
			keywords:    []string{"vote", "election", "count"},
			expected:    10,
			desc:        "Capped at 10",
		},
		{title: "Weather", keywords: []string{"election", " "}, expected: 0, desc: "No match"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := Relevance(tt.title, tt.description, tt.content, tt.keywords)
			if got != tt.expected {
				t.Errorf("Expected relevance %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestNewsAPIClient_Search(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/v2/everything" {
			t.Errorf("Expected /v2/everything, got %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "news-key" {
			t.Errorf("Expected X-Api-Key header, got %q", r.Header.Get("X-Api-Key"))
		}
		q := r.URL.Query()
		if q.Get("q") != "election OR vote OR fraud" {
			t.Errorf("Expected first three keywords OR'ed, got %q", q.Get("q"))
		}
		if q.Get("sortBy") != "relevancy" || q.Get("pageSize") != "10" || q.Get("language") != "en" {
			t.Errorf("Unexpected query parameters: %v", q)
		}

		_, _ = fmt.Fprint(w, `{
			"status": "ok",
			"totalResults": 42,
			"articles": [
				{"source": {"name": ""}, "title": "Unrelated", "url": "https://a.example/1"},
				{"source": {"name": "Reuters"}, "title": "Election fraud claims", "description": "vote counting", "url": "https://reuters.com/x", "publishedAt": "2024-05-01T00:00:00Z"}
			]
		}`)
	}))
	defer server.Close()

	client := NewNewsAPIClient(model.NewsConfig{
		APIKey:  "news-key",
		BaseURL: server.URL,
	}, Options{Cache: cache.NewMemoryCache(time.Minute, time.Minute)})

	keywords := []string{"election", "vote", "fraud", "ignored"}
	result, err := client.Search(context.Background(), keywords)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.TotalResults != 42 {
		t.Errorf("Expected totalResults 42, got %d", result.TotalResults)
	}
	if len(result.Articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(result.Articles))
	}
	if result.Articles[0].Source != "Reuters" {
		t.Errorf("Expected most relevant article first, got %+v", result.Articles[0])
	}
	if result.Articles[0].Relevance != 8 {
		t.Errorf("Expected relevance 8, got %d", result.Articles[0].Relevance)
	}
	if result.Articles[1].Source != "Unknown" {
		t.Errorf("Expected missing source name to become Unknown, got %q", result.Articles[1].Source)
	}

	// Second identical search is served from cache
	if _, err := client.Search(context.Background(), keywords); err != nil {
		t.Fatalf("Cached search failed: %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("Expected 1 upstream request, got %d", requests.Load())
	}
}

func TestNewsAPIClient_Errors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		desc   string
	}{
		{status: http.StatusUnauthorized, body: `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`, desc: "API error"},
		{status: http.StatusOK, body: `<html>`, desc: "Malformed body"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := NewNewsAPIClient(model.NewsConfig{APIKey: "k", BaseURL: server.URL}, Options{})
			if _, err := client.Search(context.Background(), []string{"election"}); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestNewsAPIClient_NoKeywords(t *testing.T) {
	client := NewNewsAPIClient(model.NewsConfig{APIKey: "k", BaseURL: "http://127.0.0.1:1"}, Options{})
	result, err := client.Search(context.Background(), []string{" "})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Articles) != 0 {
		t.Errorf("Expected no articles, got %d", len(result.Articles))
	}
}

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Example Wire</title>
<item>
  <title>Election officials certify results</title>
  <link>https://wire.example/1</link>
  <description>The vote count is final.</description>
  <pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
</item>
<item>
  <title>Local weather</title>
  <link>https://wire.example/2</link>
  <description>Sunny.</description>
</item>
</channel>
</rss>`

func TestFeedSearcher_Search(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/good.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = fmt.Fprint(w, testFeed)
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	searcher := NewFeedSearcher([]model.FeedConfig{{URL: server.URL + "/good.xml"}, {URL: server.URL + "/broken.xml"}}, Options{})
	result, err := searcher.Search(context.Background(), []string{"election", "vote"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(result.Articles) != 1 {
		t.Fatalf("Expected 1 matching article, got %d", len(result.Articles))
	}
	article := result.Articles[0]
	if article.Source != "Example Wire" {
		t.Errorf("Expected feed title as source, got %q", article.Source)
	}
	if article.Relevance != 5 {
		t.Errorf("Expected relevance 5, got %d", article.Relevance)
	}
	if article.PublishedAt != "2024-05-01T10:00:00Z" {
		t.Errorf("Expected RFC3339 publish date, got %q", article.PublishedAt)
	}
	if result.TotalResults != 1 {
		t.Errorf("Expected totalResults 1, got %d", result.TotalResults)
	}
}

func outletFeed(title string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>` + title + `</title>
<item>
  <title>Election officials certify results</title>
  <link>https://outlet.example/1</link>
  <description>The vote count is final.</description>
</item>
</channel>
</rss>`
}

func TestFeedSearcher_ReputableSources(t *testing.T) {
	feeds := map[string]string{
		"/bbc.xml": "BBC News",
		"/npr.xml": "NPR Topics: News",
		"/gazette": "Daily Gazette",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title, ok := feeds[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprint(w, outletFeed(title))
	}))
	defer server.Close()

	searcher := NewFeedSearcher([]model.FeedConfig{
		{URL: server.URL + "/bbc.xml", Source: "BBC"},
		{URL: server.URL + "/npr.xml", Source: "NPR"},
		{URL: server.URL + "/gazette"},
	}, Options{})
	news, err := searcher.Search(context.Background(), []string{"election"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(news.Articles) != 3 {
		t.Fatalf("Expected 3 articles, got %d", len(news.Articles))
	}

	sources := map[string]bool{}
	for _, a := range news.Articles {
		sources[a.Source] = true
	}
	for _, want := range []string{"BBC", "NPR", "Daily Gazette"} {
		if !sources[want] {
			t.Errorf("Expected source %q, got %v", want, sources)
		}
	}

	strategy := score.NewModelBacked(reputation.NewTable(nil))
	result, err := strategy.Score(context.Background(), score.Input{
		Content:   "Election officials certify results after the vote count.",
		Heuristic: heuristic.Analysis{BaseScore: 0.8},
		News:      news,
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	var found bool
	for _, sig := range result.Signals {
		if sig.Type != model.SignalNewsReputability {
			continue
		}
		found = true
		if sig.Data["reputable"] != 2 {
			t.Errorf("Expected 2 reputable articles, got %v", sig.Data["reputable"])
		}
	}
	if !found {
		t.Error("Expected news reputability signal")
	}
}

func TestDefaultFeedsNameReputableOutlets(t *testing.T) {
	table := reputation.NewTable(nil)
	for _, fc := range model.DefaultConfig().News.Feeds {
		if !table.IsReputableOutlet(fc.Source) {
			t.Errorf("Expected default feed %s to name a reputable outlet, got %q", fc.URL, fc.Source)
		}
	}
}

func TestFeedSearcher_AllFeedsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	searcher := NewFeedSearcher([]model.FeedConfig{{URL: server.URL + "/a"}, {URL: server.URL + "/b"}}, Options{})
	if _, err := searcher.Search(context.Background(), []string{"election"}); err == nil {
		t.Error("Expected error when every feed fails")
	}
}

func TestFactCheckClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1alpha1/claims:search" {
			t.Errorf("Expected claims:search path, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "vaccine autism" {
			t.Errorf("Expected space-joined query, got %q", r.URL.Query().Get("query"))
		}
		if r.URL.Query().Get("key") != "fc-key" {
			t.Errorf("Expected API key parameter, got %q", r.URL.Query().Get("key"))
		}
		_, _ = fmt.Fprint(w, `{"claims": [
			{"text": "Vaccines cause autism", "claimReview": [
				{"publisher": {"name": "PolitiFact"}, "url": "https://politifact.com/x", "title": "No link", "textualRating": "False", "reviewDate": "2024-01-01T00:00:00Z"}
			]},
			{"text": "", "claimReview": []}
		]}`)
	}))
	defer server.Close()

	client := NewFactCheckClient(model.FactCheckConfig{APIKey: "fc-key", BaseURL: server.URL}, Options{})
	claims, err := client.Search(context.Background(), []string{"vaccine", "autism"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("Expected 2 claims, got %d", len(claims))
	}

	expected := model.FactCheckClaim{
		Title:        "Vaccines cause autism",
		URL:          "https://politifact.com/x",
		Organization: "PolitiFact",
		Rating:       "False",
		Summary:      "No link",
		ReviewDate:   "2024-01-01T00:00:00Z",
	}
	if claims[0] != expected {
		t.Errorf("Expected %+v, got %+v", expected, claims[0])
	}

	fallback := model.FactCheckClaim{Title: "Fact Check", Organization: "Unknown", Rating: "Unknown"}
	if claims[1] != fallback {
		t.Errorf("Expected defaults %+v, got %+v", fallback, claims[1])
	}
}

func TestFactCheckClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = fmt.Fprint(w, `{"error": "forbidden"}`)
	}))
	defer server.Close()

	client := NewFactCheckClient(model.FactCheckConfig{APIKey: "k", BaseURL: server.URL}, Options{})
	_, err := client.Search(context.Background(), []string{"vaccine"})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("Expected status 403 error, got %v", err)
	}
}

func TestFactories(t *testing.T) {
	if s := NewFactCheckSearcher(model.FactCheckConfig{}, Options{}); s != nil {
		t.Error("Expected nil fact-check searcher without API key")
	}

	tests := []struct {
		config  model.NewsConfig
		name    string
		wantErr bool
		desc    string
	}{
		{config: model.NewsConfig{}, name: "", desc: "Disabled"},
		{config: model.NewsConfig{Provider: "NewsAPI", APIKey: "k"}, name: "newsapi", desc: "NewsAPI"},
		{config: model.NewsConfig{Provider: "newsapi"}, wantErr: true, desc: "NewsAPI without key"},
		{config: model.NewsConfig{Provider: "rss", Feeds: []model.FeedConfig{{URL: "https://x/feed"}}}, name: "rss", desc: "RSS"},
		{config: model.NewsConfig{Provider: "rss"}, wantErr: true, desc: "RSS without feeds"},
		{config: model.NewsConfig{Provider: "gdelt"}, wantErr: true, desc: "Unknown provider"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			s, err := NewNewsSearcher(tt.config, Options{})
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.name == "" {
				if s != nil {
					t.Errorf("Expected nil searcher, got %s", s.Name())
				}
				return
			}
			if s == nil || s.Name() != tt.name {
				t.Errorf("Expected searcher %s, got %v", tt.name, s)
			}
		})
	}
}
