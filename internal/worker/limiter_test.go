package worker

import (
	"context"
	"testing"

	"github.com/ppiankov/factlens/internal/model"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("Expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiterFromConfig(model.RateLimitConfig{RequestsPerSecond: 2, BurstSize: -1})
	if l2.defaultBurst != 5 {
		t.Errorf("Expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if err := limiter.Wait(context.Background(), "https://newsapi.org/v2/everything"); err != nil {
		t.Fatalf("First wait failed: %v", err)
	}

	tests := []struct {
		target  string
		allowed bool
		desc    string
	}{
		{target: "https://newsapi.org/v2/top-headlines", allowed: false, desc: "Same host exhausted"},
		{target: "https://www.newsapi.org/", allowed: false, desc: "www prefix shares the bucket"},
		{target: "newsapi.org", allowed: false, desc: "Bare host shares the bucket"},
		{target: "https://factchecktools.googleapis.com/v1alpha1/claims:search", allowed: true, desc: "Other host"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := limiter.Allow(tt.target); got != tt.allowed {
				t.Errorf("Expected Allow(%s)=%v, got %v", tt.target, tt.allowed, got)
			}
		})
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !limiter.Allow("https://example.com") {
			t.Fatalf("Expected unlimited limiter to allow request %d", i)
		}
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetHostRate("www.slow.com", 0.1, 1)

	if !limiter.Allow("http://slow.com/a") {
		t.Error("First request should pass")
	}
	if limiter.Allow("http://slow.com/b") {
		t.Error("Second request should fail")
	}
	if !limiter.Allow("http://fast.com") {
		t.Error("Other host should pass")
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	_ = limiter.Wait(context.Background(), "https://example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "https://example.com"); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestHostOf(t *testing.T) {
	host, err := hostOf("http://WWW.Example.com:8080/foo")
	if err != nil {
		t.Fatalf("hostOf failed: %v", err)
	}
	if host != "example.com" {
		t.Errorf("Expected example.com, got %s", host)
	}

	if _, err := hostOf("http://[::1"); err == nil {
		t.Error("Expected error for invalid URL")
	}
}
