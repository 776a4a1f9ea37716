package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/factlens/internal/model"
)

func testHTTPConfig(robots bool) model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:       5 * time.Second,
		UserAgent:     "factlens-test/1.0",
		MaxBodyBytes:  1 << 20,
		MaxRetries:    3,
		RespectRobots: robots,
	}
}

func noSleep(t *testing.T) {
	t.Helper()
	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = origSleep })
}

func TestFetchWithRetry_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "factlens-test/1.0" {
			t.Errorf("Expected User-Agent header, got %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><head><title>OK page</title></head><body>OK</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(false), nil, nil)
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.HTML != "<html><head><title>OK page</title></head><body>OK</body></html>" {
		t.Errorf("Unexpected HTML: %s", result.HTML)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", result.StatusCode)
	}
	if result.Meta.Title != "OK page" {
		t.Errorf("Expected title 'OK page', got %q", result.Meta.Title)
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	noSleep(t)

	fetcher := NewFetcher(testHTTPConfig(false), nil, nil)
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if result.HTML != "<html>OK</html>" {
		t.Errorf("Unexpected HTML: %s", result.HTML)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	noSleep(t)

	fetcher := NewFetcher(testHTTPConfig(false), nil, nil)
	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
	if got := err.Error(); got != "unexpected status: 404 Not Found" {
		t.Errorf("Unexpected error: %s", got)
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt for non-retryable status, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_AllRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	noSleep(t)

	fetcher := NewFetcher(testHTTPConfig(false), nil, nil)
	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error after all retries exhausted")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected StatusError 503, got %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_429Retried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	noSleep(t)

	fetcher := NewFetcher(testHTTPConfig(false), nil, nil)
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after 429 retry, got %v", err)
	}
	if result.HTML != "<html>OK</html>" {
		t.Errorf("Unexpected HTML: %s", result.HTML)
	}
	if attempts.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts.Load())
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "0123456789abcdef")
	}))
	defer server.Close()

	config := testHTTPConfig(false)
	config.MaxBodyBytes = 10

	result, err := NewFetcher(config, nil, nil).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.HTML != "0123456789" {
		t.Errorf("Expected body truncated to 10 bytes, got %q", result.HTML)
	}
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	var pageHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pageHits.Add(1)
		_, _ = fmt.Fprint(w, "<html>page</html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(true), nil, nil)

	_, err := fetcher.FetchWithRetry(context.Background(), server.URL+"/private/article")
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("Expected ErrDisallowed, got %v", err)
	}
	if pageHits.Load() != 0 {
		t.Errorf("Expected disallowed page not to be requested, got %d hits", pageHits.Load())
	}

	if _, err := fetcher.Fetch(context.Background(), server.URL+"/public"); err != nil {
		t.Errorf("Expected allowed path to fetch, got %v", err)
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
		desc      string
	}{
		{err: &StatusError{Code: 503, Status: "Service Unavailable"}, retryable: true, desc: "503"},
		{err: &StatusError{Code: 500, Status: "Internal Server Error"}, retryable: true, desc: "500"},
		{err: &StatusError{Code: 502, Status: "Bad Gateway"}, retryable: true, desc: "502"},
		{err: &StatusError{Code: 429, Status: "Too Many Requests"}, retryable: true, desc: "429"},
		{err: &StatusError{Code: 404, Status: "Not Found"}, retryable: false, desc: "404"},
		{err: &StatusError{Code: 403, Status: "Forbidden"}, retryable: false, desc: "403"},
		{err: &StatusError{Code: 401, Status: "Unauthorized"}, retryable: false, desc: "401"},
		{
			err:       fmt.Errorf("fetch: %w", &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}),
			retryable: true,
			desc:      "Connection refused",
		},
		{err: fmt.Errorf("fetch: %w", context.Canceled), retryable: false, desc: "Context canceled"},
		{err: fmt.Errorf("create request: invalid URL"), retryable: false, desc: "Bad request"},
		{err: fmt.Errorf("fetch x: %w", ErrDisallowed), retryable: false, desc: "Robots disallowed"},
		{err: nil, retryable: false, desc: "Nil error"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := isRetryableFetchError(tt.err)
			if got != tt.retryable {
				t.Errorf("Expected retryable=%v for %v, got %v", tt.retryable, tt.err, got)
			}
		})
	}
}

func TestExtractMeta(t *testing.T) {
	tests := []struct {
		html     string
		expected PageMeta
		desc     string
	}{
		{
			html: `<html><head>
				<title>Title tag</title>
				<meta property="og:title" content="OG title">
				<meta name="twitter:title" content="Twitter title">
				<meta property="og:site_name" content="Example News">
				<meta name="description" content="Plain description">
				<meta property="article:published_time" content="2024-05-01T10:00:00Z">
				<link rel="canonical" href="https://example.com/a">
			</head><body><h1>Heading</h1></body></html>`,
			expected: PageMeta{
				Title:        "OG title",
				SiteName:     "Example News",
				Description:  "Plain description",
				CanonicalURL: "https://example.com/a",
				PublishedAt:  "2024-05-01T10:00:00Z",
			},
			desc: "OpenGraph wins",
		},
		{
			html:     `<html><head><title>Title tag</title></head><body><h1>  Main   heading </h1></body></html>`,
			expected: PageMeta{Title: "Main heading"},
			desc:     "H1 before title",
		},
		{
			html:     `<html><head><title>Only title</title></head><body><p>text</p></body></html>`,
			expected: PageMeta{Title: "Only title"},
			desc:     "Title tag fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			meta, err := ExtractMeta(tt.html)
			if err != nil {
				t.Fatalf("ExtractMeta failed: %v", err)
			}
			if meta != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, meta)
			}
		})
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	if got := NormalizeUserAgent("factlens/0.1 (+https://example.com)"); got != "factlens" {
		t.Errorf("Expected factlens, got %q", got)
	}
}
