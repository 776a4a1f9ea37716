package stats

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/reputation"
	"github.com/ppiankov/factlens/internal/store"
)

// Dashboard constants
const (
	TrendWindow     = 10
	TrendThreshold  = 0.1
	TopSourcesLimit = 10

	TextAnalysisSource = "text-analysis"
	InvalidURLSource   = "invalid-url"
)

// Compute aggregates analyses into dashboard statistics. Records may be in
// any order; the trend compares the newest TrendWindow analyses with the
// TrendWindow before them.
func Compute(records []model.AnalysisRecord) model.DashboardStats {
	stats := model.DashboardStats{
		Trend:      model.TrendStable,
		TopSources: []model.SourceCount{},
	}
	if len(records) == 0 {
		return stats
	}

	sorted := make([]model.AnalysisRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	// 1. Counts and average
	var total float64
	for _, r := range sorted {
		total += r.Result.Score
		switch r.Result.Classification {
		case model.ClassReliable:
			stats.Reliable++
		case model.ClassQuestionable:
			stats.Questionable++
		case model.ClassUnreliable:
			stats.Unreliable++
		}
	}
	stats.TotalAnalyses = len(sorted)
	stats.AverageCredibility = total / float64(len(sorted)) * 100

	// 2. Trend
	stats.Trend = trend(sorted)

	// 3. Top sources
	stats.TopSources = topSources(sorted, TopSourcesLimit)

	return stats
}

func trend(newestFirst []model.AnalysisRecord) string {
	if len(newestFirst) <= TrendWindow {
		return model.TrendStable
	}

	recent := newestFirst[:TrendWindow]
	older := newestFirst[TrendWindow:min(len(newestFirst), 2*TrendWindow)]

	recentAvg, olderAvg := averageScore(recent), averageScore(older)
	switch {
	case recentAvg > olderAvg+TrendThreshold:
		return model.TrendUp
	case recentAvg < olderAvg-TrendThreshold:
		return model.TrendDown
	default:
		return model.TrendStable
	}
}

func averageScore(records []model.AnalysisRecord) float64 {
	var sum float64
	for _, r := range records {
		sum += r.Result.Score
	}
	return sum / float64(len(records))
}

func topSources(records []model.AnalysisRecord, limit int) []model.SourceCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[sourceOf(r.URL)]++
	}

	sources := make([]model.SourceCount, 0, len(counts))
	for domain, count := range counts {
		sources = append(sources, model.SourceCount{Domain: domain, Count: count})
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Count != sources[j].Count {
			return sources[i].Count > sources[j].Count
		}
		return sources[i].Domain < sources[j].Domain
	})

	if len(sources) > limit {
		sources = sources[:limit]
	}
	return sources
}

func sourceOf(rawURL string) string {
	if rawURL == "" {
		return TextAnalysisSource
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return InvalidURLSource
	}
	return reputation.NormalizeDomain(parsed.Host)
}

// Dashboard computes statistics over every analysis of userID
func Dashboard(ctx context.Context, s store.Store, userID string) (model.DashboardStats, error) {
	records, err := s.ListAnalyses(ctx, userID, time.Time{})
	if err != nil {
		return model.DashboardStats{}, fmt.Errorf("list analyses: %w", err)
	}
	return Compute(records), nil
}

// BuildReport computes a report over the analyses userID made in [start, end)
func BuildReport(ctx context.Context, s store.Store, userID, reportType string, start, end time.Time) (*model.Report, error) {
	records, err := s.ListAnalyses(ctx, userID, start)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	inRange := records[:0:0]
	for _, r := range records {
		if r.CreatedAt.Before(end) {
			inRange = append(inRange, r)
		}
	}

	return &model.Report{
		UserID:         userID,
		Title:          reportTitle(reportType, start, end),
		ReportType:     reportType,
		DateRangeStart: start,
		DateRangeEnd:   end,
		Data:           Compute(inRange),
	}, nil
}

func reportTitle(reportType string, start, end time.Time) string {
	switch reportType {
	case model.ReportDaily:
		return "Daily report " + start.Format("2006-01-02")
	case model.ReportWeekly:
		return "Weekly report " + start.Format("2006-01-02")
	default:
		return fmt.Sprintf("Report %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
}
