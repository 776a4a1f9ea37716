package cli

import (
	"strings"
	"testing"
)

func TestReportFilename(t *testing.T) {
	tests := []struct {
		desc string
		url  string
		want string
	}{
		{desc: "host and path", url: "https://www.bbc.com/news/world-123", want: "www.bbc.com_news_world-123.json"},
		{desc: "trailing slash", url: "https://example.com/", want: "example.com.json"},
		{desc: "query", url: "https://example.com/a?id=7&x=y", want: "example.com_a_id_7_x_y.json"},
		{desc: "port", url: "http://localhost:8080/page", want: "localhost_8080_page.json"},
		{desc: "not a url", url: "::::", want: "report.json"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := reportFilename(tt.url); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSanitizeFilename_Limit(t *testing.T) {
	got := sanitizeFilename(strings.Repeat("a", 300))
	if len(got) != maxFilenameLen {
		t.Errorf("Expected length %d, got %d", maxFilenameLen, len(got))
	}
}
