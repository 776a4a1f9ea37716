package signals

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/cache"
	"github.com/ppiankov/factlens/internal/extract"
	"github.com/ppiankov/factlens/internal/llm"
	"github.com/ppiankov/factlens/internal/model"
)

// Adapter names reported in AdapterUnavailableError
const (
	AdapterModel     = "model"
	AdapterNews      = "news"
	AdapterFactCheck = "factcheck"
)

// Collected holds adapter outputs for one submission. A nil or empty field
// means the adapter was disabled or failed.
type Collected struct {
	Model      *model.ModelResult
	News       *model.NewsResult
	FactChecks []model.FactCheckClaim
	Keywords   []string
	Failures   []error
}

// Collector fans one submission out to the external signal adapters
type Collector struct {
	provider   llm.Provider
	news       NewsSearcher
	factChecks FactCheckSearcher
	keywords   *extract.KeywordExtractor
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewCollector creates a new collector. Any adapter may be nil.
func NewCollector(provider llm.Provider, news NewsSearcher, factChecks FactCheckSearcher, keywords *extract.KeywordExtractor, opts Options) *Collector {
	opts = opts.withDefaults()
	if keywords == nil {
		keywords = extract.NewKeywordExtractor(nil, 5)
	}
	return &Collector{
		provider:   provider,
		news:       news,
		factChecks: factChecks,
		keywords:   keywords,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		logger:     opts.Logger,
	}
}

// Collect runs the three adapters concurrently and waits for all of them.
// Searches use locally extracted keywords; the reported keywords prefer the
// model's own extraction when it is available.
func (c *Collector) Collect(ctx context.Context, content string) Collected {
	localKeywords := c.keywords.Extract(content)

	var (
		out Collected
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	fail := func(adapter string, err error) {
		unavailable := &model.AdapterUnavailableError{Adapter: adapter, Err: err}
		c.logger.Warn("signal adapter unavailable",
			zap.String("adapter", adapter),
			zap.Error(err))
		mu.Lock()
		out.Failures = append(out.Failures, unavailable)
		mu.Unlock()
	}

	if c.provider != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := c.analyze(ctx, content)
			if err != nil {
				fail(AdapterModel, err)
				return
			}
			mu.Lock()
			out.Model = result
			mu.Unlock()
		}()
	}

	if c.news != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := c.news.Search(ctx, localKeywords)
			if err != nil {
				fail(AdapterNews, err)
				return
			}
			mu.Lock()
			out.News = result
			mu.Unlock()
		}()
	}

	if c.factChecks != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := c.factChecks.Search(ctx, localKeywords)
			if err != nil {
				fail(AdapterFactCheck, err)
				return
			}
			mu.Lock()
			out.FactChecks = result
			mu.Unlock()
		}()
	}

	wg.Wait()

	out.Keywords = localKeywords
	if out.Model != nil && len(out.Model.KeywordExtraction) > 0 {
		out.Keywords = out.Model.KeywordExtraction
	}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}

	return out
}

// analyze calls the model provider, caching successful results by content
func (c *Collector) analyze(ctx context.Context, content string) (*model.ModelResult, error) {
	key := cache.Key("llm", c.provider.Name(), content)
	if cached, ok := cache.GetJSON[model.ModelResult](c.cache, key); ok {
		return &cached, nil
	}

	result, err := c.provider.Analyze(ctx, llm.AnalyzeRequest{Content: content})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New("empty model result")
	}

	if err := cache.SetJSON(c.cache, key, result, c.cacheTTL); err != nil {
		c.logger.Warn("failed to cache model result", zap.Error(err))
	}
	return result, nil
}

// Enabled lists the names of the configured adapters
func (c *Collector) Enabled() []string {
	var names []string
	if c.provider != nil {
		names = append(names, AdapterModel+":"+c.provider.Name())
	}
	if c.news != nil {
		names = append(names, AdapterNews+":"+c.news.Name())
	}
	if c.factChecks != nil {
		names = append(names, AdapterFactCheck+":"+c.factChecks.Name())
	}
	return names
}
