package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/alert"
	"github.com/ppiankov/factlens/internal/extract"
	"github.com/ppiankov/factlens/internal/heuristic"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/reputation"
	"github.com/ppiankov/factlens/internal/score"
	"github.com/ppiankov/factlens/internal/signals"
	"github.com/ppiankov/factlens/internal/store"
)

// Notifier receives alerts after they are stored
type Notifier interface {
	Publish(alerts []model.TriggeredAlert)
}

// Deps are the components an Analyzer orchestrates. Fetcher, Collector,
// Store and Notifier may be nil.
type Deps struct {
	Fetcher    *Fetcher
	Heuristic  *heuristic.Analyzer
	Reputation *reputation.Table
	Collector  *signals.Collector
	Aggregator *score.Aggregator
	Matcher    *alert.Matcher
	Store      store.Store
	Notifier   Notifier
	Logger     *zap.Logger
}

// Analyzer runs the complete analysis of one submission
type Analyzer struct {
	fetcher    *Fetcher
	heuristic  *heuristic.Analyzer
	table      *reputation.Table
	collector  *signals.Collector
	aggregator *score.Aggregator
	matcher    *alert.Matcher
	store      store.Store
	notifier   Notifier
	logger     *zap.Logger
	newID      func() string
}

// NewAnalyzer creates a new analyzer, filling missing core components with defaults
func NewAnalyzer(deps Deps) *Analyzer {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Heuristic == nil {
		deps.Heuristic = heuristic.NewAnalyzer(nil)
	}
	if deps.Reputation == nil {
		deps.Reputation = reputation.NewTable(nil)
	}
	if deps.Aggregator == nil {
		deps.Aggregator = score.NewAggregator(deps.Reputation, nil, logger)
	}
	if deps.Matcher == nil {
		deps.Matcher = alert.NewMatcher(logger)
	}

	return &Analyzer{
		fetcher:    deps.Fetcher,
		heuristic:  deps.Heuristic,
		table:      deps.Reputation,
		collector:  deps.Collector,
		aggregator: deps.Aggregator,
		matcher:    deps.Matcher,
		store:      deps.Store,
		notifier:   deps.Notifier,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Outcome is everything produced for one submission
type Outcome struct {
	Result    *model.AnalysisResult
	Record    *model.AnalysisRecord
	Insights  *model.SourceInsights // nil without a URL
	Page      *PageMeta             // nil unless the URL was fetched
	Keywords  []string
	Triggered []model.TriggeredAlert
	Failures  []error // adapters that returned no data
}

// Analyze satisfies worker.Analyzer
func (a *Analyzer) Analyze(ctx context.Context, sub model.Submission) (*model.AnalysisResult, error) {
	outcome, err := a.Run(ctx, sub)
	if outcome == nil {
		return nil, err
	}
	return outcome.Result, err
}

// Run analyzes a submission. Storage failures are returned as errors wrapping
// *model.PersistenceError together with a complete outcome; every other
// error leaves the outcome nil.
func (a *Analyzer) Run(ctx context.Context, sub model.Submission) (*Outcome, error) {
	sub.Content = strings.TrimSpace(sub.Content)
	sub.URL = strings.TrimSpace(sub.URL)
	out := &Outcome{}

	// 1. Fetch the page when only a URL was given
	if sub.Content == "" && sub.URL != "" {
		if a.fetcher == nil {
			return nil, &model.InvalidInputError{Reason: "content is required when URL fetching is disabled"}
		}
		page, err := a.fetcher.FetchWithRetry(ctx, sub.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		text, err := extract.PageText(page.HTML)
		if err != nil {
			return nil, &model.InvalidInputError{Reason: err.Error()}
		}
		sub.Content = text
		sub.URL = page.FinalURL
		out.Page = &page.Meta
	}

	// 2. Validate and run text heuristics
	if sub.Content == "" {
		return nil, &model.InvalidInputError{Reason: "content or URL is required"}
	}
	base, err := a.heuristic.Analyze(sub.Content)
	if err != nil {
		return nil, err
	}

	// 3. Fan out to the external adapters
	var collected signals.Collected
	if a.collector != nil {
		collected = a.collector.Collect(ctx, sub.Content)
	}
	out.Keywords = collected.Keywords
	out.Failures = collected.Failures

	// 4. Aggregate
	result, err := a.aggregator.Aggregate(ctx, score.Input{
		Content:    sub.Content,
		URL:        sub.URL,
		Heuristic:  base,
		Model:      collected.Model,
		News:       collected.News,
		FactChecks: collected.FactChecks,
		Keywords:   collected.Keywords,
	})
	if err != nil {
		return nil, err
	}
	result.ID = a.newID()
	out.Result = &result

	// 5. Publisher insights for URL submissions
	if sub.URL != "" {
		var crossRefs []model.NewsArticle
		if collected.News != nil {
			crossRefs = collected.News.Articles
		}
		insights := a.table.Insights(a.table.Lookup(sub.URL), collected.FactChecks, crossRefs)
		out.Insights = &insights
	}

	out.Record = &model.AnalysisRecord{
		ID:                 result.ID,
		UserID:             sub.UserID,
		URL:                sub.URL,
		ContentExcerpt:     model.Truncate(sub.Content, model.AnalysisExcerptLen),
		Result:             result,
		SourceVerification: out.Insights,
	}

	a.logger.Info("analysis complete",
		zap.String("id", result.ID),
		zap.String("url", sub.URL),
		zap.String("strategy", result.Strategy),
		zap.Float64("score", result.Score),
		zap.String("classification", string(result.Classification)),
		zap.Int("adapter_failures", len(collected.Failures)))

	// 6. Persist and evaluate alerts concurrently
	if a.store == nil {
		return out, nil
	}
	return out, a.persist(ctx, sub.Content, out)
}

func (a *Analyzer) persist(ctx context.Context, content string, out *Outcome) error {
	var (
		wg                 sync.WaitGroup
		saveErr, alertsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		saveErr = a.store.SaveAnalysis(ctx, out.Record)
	}()
	go func() {
		defer wg.Done()
		out.Triggered, alertsErr = a.evaluateAlerts(ctx, content, *out.Result)
	}()
	wg.Wait()

	if saveErr != nil {
		a.logger.Error("failed to save analysis", zap.String("id", out.Record.ID), zap.Error(saveErr))
	}
	if alertsErr != nil {
		a.logger.Error("failed to process alerts", zap.String("id", out.Record.ID), zap.Error(alertsErr))
	}

	return errors.Join(saveErr, alertsErr)
}

func (a *Analyzer) evaluateAlerts(ctx context.Context, content string, result model.AnalysisResult) ([]model.TriggeredAlert, error) {
	rules, err := a.store.ActiveAlerts(ctx)
	if err != nil {
		return nil, err
	}

	triggered := a.matcher.Match(content, result.ID, result, rules)
	if len(triggered) == 0 {
		return triggered, nil
	}

	if err := a.store.SaveTriggeredAlerts(ctx, triggered); err != nil {
		return nil, err
	}

	if a.notifier != nil {
		a.notifier.Publish(triggered)
	}
	return triggered, nil
}
