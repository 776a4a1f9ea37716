package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/alert"
	"github.com/ppiankov/factlens/internal/cache"
	"github.com/ppiankov/factlens/internal/classifier"
	"github.com/ppiankov/factlens/internal/extract"
	"github.com/ppiankov/factlens/internal/heuristic"
	"github.com/ppiankov/factlens/internal/llm"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/netutil"
	"github.com/ppiankov/factlens/internal/notify"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/reputation"
	"github.com/ppiankov/factlens/internal/score"
	"github.com/ppiankov/factlens/internal/signals"
	"github.com/ppiankov/factlens/internal/store"
	"github.com/ppiankov/factlens/internal/worker"
)

// keywordLimit is the number of keywords used for news and fact-check searches
const keywordLimit = 5

// app holds the components shared by the analyze, batch and serve commands
type app struct {
	config    *model.Config
	logger    *zap.Logger
	store     store.Store
	table     *reputation.Table
	collector *signals.Collector
	hub       *notify.Hub // nil unless alerts are pushed
	analyzer  *pipeline.Analyzer
}

// newApp wires every component from cfg. Optional adapters that cannot be
// configured are disabled with a warning; only the store is required.
func newApp(ctx context.Context, cfg *model.Config, logger *zap.Logger, withHub bool) (*app, error) {
	// 1. Shared outbound plumbing
	responses := cache.New(cfg.Cache)
	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)
	opts := signals.Options{
		HTTPClient: netutil.NewClient(cfg.HTTP.Timeout, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy),
		Limiter:    limiter,
		Cache:      responses,
		CacheTTL:   cfg.Cache.MemoryTTL,
		Logger:     logger,
	}

	// 2. Signal adapters
	var provider llm.Provider
	if p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP, logger)); err != nil {
		logger.Warn("model analysis disabled", zap.Error(err))
	} else if p != nil {
		provider = p
	}

	news, err := signals.NewNewsSearcher(cfg.News, opts)
	if err != nil {
		logger.Info("news search disabled", zap.Error(err))
	}

	factChecks := signals.NewFactCheckSearcher(cfg.FactCheck, opts)
	keywords := extract.NewKeywordExtractor(cfg.Heuristic.StopWords, keywordLimit)
	collector := signals.NewCollector(provider, news, factChecks, keywords, opts)

	// 3. Scoring
	table := reputation.NewTable(&cfg.Reputation)

	var toxicity classifier.Classifier
	if cfg.Classifier.APIKey != "" {
		c, err := classifier.NewHTTPClassifier(cfg.Classifier.Endpoint, cfg.Classifier.APIKey, time.Duration(cfg.Classifier.Timeout)*time.Second)
		if err != nil {
			logger.Warn("toxicity classifier disabled", zap.Error(err))
		} else {
			toxicity = c
		}
	}

	// 4. Persistence and notification
	records, err := store.New(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var (
		hub      *notify.Hub
		notifier pipeline.Notifier
	)
	if withHub {
		hub = notify.NewHub(logger)
		notifier = hub
	}

	analyzer := pipeline.NewAnalyzer(pipeline.Deps{
		Fetcher:    pipeline.NewFetcher(cfg.HTTP, limiter, logger),
		Heuristic:  heuristic.NewAnalyzer(&cfg.Heuristic),
		Reputation: table,
		Collector:  collector,
		Aggregator: score.NewAggregator(table, toxicity, logger),
		Matcher:    alert.NewMatcher(logger),
		Store:      records,
		Notifier:   notifier,
		Logger:     logger,
	})

	logger.Debug("components ready",
		zap.Strings("adapters", collector.Enabled()),
		zap.Bool("classifier", toxicity != nil),
		zap.String("store", cfg.Store.Driver))

	return &app{
		config:    cfg,
		logger:    logger,
		store:     records,
		table:     table,
		collector: collector,
		hub:       hub,
		analyzer:  analyzer,
	}, nil
}

// setup loads configuration, builds the logger and wires the app
func setup(ctx context.Context, withHub bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Log, verbose)
	if err != nil {
		return nil, err
	}

	a, err := newApp(ctx, cfg, logger, withHub)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

// Close releases the store and disconnects alert subscribers
func (a *app) Close() error {
	if a.hub != nil {
		a.hub.Close()
	}
	err := a.store.Close()
	// Sync fails on terminals; nothing to do about it
	_ = a.logger.Sync()
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// isInvalidInput reports whether err rejects the submission itself
func isInvalidInput(err error) bool {
	var invalid *model.InvalidInputError
	return errors.As(err, &invalid)
}
