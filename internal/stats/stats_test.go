package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/store"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func record(minutesAgo int, score float64, rawURL string) model.AnalysisRecord {
	return model.AnalysisRecord{
		URL:       rawURL,
		CreatedAt: base.Add(-time.Duration(minutesAgo) * time.Minute),
		Result: model.AnalysisResult{
			Score:          score,
			Classification: model.Classify(score),
		},
	}
}

// series returns n records, the newest first, with scores recent then older
func series(recentScore, olderScore float64, n int) []model.AnalysisRecord {
	out := make([]model.AnalysisRecord, 0, n)
	for i := 0; i < n; i++ {
		s := recentScore
		if i >= TrendWindow {
			s = olderScore
		}
		out = append(out, record(i, s, ""))
	}
	return out
}

func TestCompute_Empty(t *testing.T) {
	stats := Compute(nil)

	if stats.TotalAnalyses != 0 || stats.AverageCredibility != 0 {
		t.Errorf("Expected zero stats, got %+v", stats)
	}
	if stats.Trend != model.TrendStable {
		t.Errorf("Expected stable trend, got %s", stats.Trend)
	}
	if stats.TopSources == nil {
		t.Error("Expected non-nil top sources")
	}
}

func TestCompute_CountsAndAverage(t *testing.T) {
	records := []model.AnalysisRecord{
		record(0, 0.9, "https://www.reuters.com/a"),
		record(1, 0.5, "https://reuters.com/b"),
		record(2, 0.2, ""),
		record(3, 0.8, "https://bbc.com/c"),
	}

	stats := Compute(records)

	if stats.TotalAnalyses != 4 {
		t.Errorf("Expected 4 analyses, got %d", stats.TotalAnalyses)
	}
	if stats.Reliable != 2 || stats.Questionable != 1 || stats.Unreliable != 1 {
		t.Errorf("Expected 2/1/1, got %d/%d/%d", stats.Reliable, stats.Questionable, stats.Unreliable)
	}
	if stats.AverageCredibility < 59.99 || stats.AverageCredibility > 60.01 {
		t.Errorf("Expected average 60, got %f", stats.AverageCredibility)
	}

	expected := []model.SourceCount{
		{Domain: "reuters.com", Count: 2},
		{Domain: "bbc.com", Count: 1},
		{Domain: TextAnalysisSource, Count: 1},
	}
	if len(stats.TopSources) != len(expected) {
		t.Fatalf("Expected %d sources, got %+v", len(expected), stats.TopSources)
	}
	for i, want := range expected {
		if stats.TopSources[i] != want {
			t.Errorf("Source %d: expected %+v, got %+v", i, want, stats.TopSources[i])
		}
	}
}

func TestCompute_Trend(t *testing.T) {
	tests := []struct {
		records  []model.AnalysisRecord
		expected string
		desc     string
	}{
		{records: series(0.9, 0.5, 20), expected: model.TrendUp, desc: "Recent scores higher"},
		{records: series(0.4, 0.8, 20), expected: model.TrendDown, desc: "Recent scores lower"},
		{records: series(0.6, 0.55, 20), expected: model.TrendStable, desc: "Within threshold"},
		{records: series(0.9, 0.5, 10), expected: model.TrendStable, desc: "No previous window"},
		{records: series(0.9, 0.5, 12), expected: model.TrendUp, desc: "Partial previous window"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := Compute(tt.records).Trend; got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestCompute_TrendIgnoresInputOrder(t *testing.T) {
	records := series(0.9, 0.5, 20)
	reversed := make([]model.AnalysisRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	if got := Compute(reversed).Trend; got != model.TrendUp {
		t.Errorf("Expected up, got %s", got)
	}
}

func TestCompute_TopSourcesLimit(t *testing.T) {
	var records []model.AnalysisRecord
	for i := 0; i < 15; i++ {
		records = append(records, record(i, 0.5, fmt.Sprintf("https://site%02d.com/x", i)))
	}
	records = append(records, record(20, 0.5, "://bad"))

	stats := Compute(records)
	if len(stats.TopSources) != TopSourcesLimit {
		t.Errorf("Expected %d sources, got %d", TopSourcesLimit, len(stats.TopSources))
	}
	if stats.TopSources[0].Domain != InvalidURLSource {
		t.Errorf("Expected %s sorted first among equal counts, got %s", InvalidURLSource, stats.TopSources[0].Domain)
	}
}

func TestGenerateDaily(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	for _, user := range []string{"u1", "u2"} {
		if err := s.UpsertProfile(ctx, &model.Profile{UserID: user}); err != nil {
			t.Fatalf("UpsertProfile failed: %v", err)
		}
	}

	yesterday := base.Truncate(24*time.Hour).Add(-12 * time.Hour)
	today := base
	for _, r := range []model.AnalysisRecord{
		{UserID: "u1", ContentExcerpt: "a", CreatedAt: yesterday, Result: model.AnalysisResult{Score: 0.9, Classification: model.ClassReliable}},
		{UserID: "u1", ContentExcerpt: "b", CreatedAt: today, Result: model.AnalysisResult{Score: 0.1, Classification: model.ClassUnreliable}},
	} {
		if err := s.SaveAnalysis(ctx, &r); err != nil {
			t.Fatalf("SaveAnalysis failed: %v", err)
		}
	}

	scheduler := NewScheduler(s, nil)
	scheduler.now = func() time.Time { return base }

	n, err := scheduler.GenerateDaily(ctx)
	if err != nil {
		t.Fatalf("GenerateDaily failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 reports, got %d", n)
	}

	reports, _ := s.ListReports(ctx, "u1")
	if len(reports) != 1 {
		t.Fatalf("Expected 1 report for u1, got %d", len(reports))
	}
	report := reports[0]
	if report.ReportType != model.ReportDaily {
		t.Errorf("Expected daily report, got %s", report.ReportType)
	}
	if report.Title != "Daily report 2024-04-30" {
		t.Errorf("Expected title for 2024-04-30, got %q", report.Title)
	}
	if report.Data.TotalAnalyses != 1 || report.Data.Reliable != 1 {
		t.Errorf("Expected only yesterday's analysis, got %+v", report.Data)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	scheduler := NewScheduler(store.NewMemoryStore(), nil)
	if err := scheduler.Start("not a cron spec"); err == nil {
		t.Error("Expected error for invalid schedule")
	}
}
