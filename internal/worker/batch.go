package worker

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
)

// Analyzer analyzes one submission
type Analyzer interface {
	Analyze(ctx context.Context, sub model.Submission) (*model.AnalysisResult, error)
}

// AnalyzeJob analyzes one URL
type AnalyzeJob struct {
	Submission model.Submission
	Analyzer   Analyzer
	onDone     func(*BatchResult)
}

// Execute runs the analysis
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	result, err := j.Analyzer.Analyze(ctx, j.Submission)
	r := &BatchResult{URL: j.Submission.URL, Result: result, Error: err}
	if j.onDone != nil {
		j.onDone(r)
	}
	return r
}

// BatchResult is the outcome for one URL. Result may be set alongside a
// persistence error.
type BatchResult struct {
	URL    string
	Result *model.AnalysisResult
	Error  error
}

// GetError returns the error from the batch result
func (r *BatchResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many URLs on a worker pool
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	logger      *zap.Logger

	// OnProgress is called after each URL completes
	OnProgress func(done, total int, r *BatchResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ProcessURLs analyzes each URL on behalf of userID and returns results in input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string, userID string) []*BatchResult {
	if len(urls) == 0 {
		return []*BatchResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	var done int32
	total := len(urls)
	onDone := func(r *BatchResult) {
		n := atomic.AddInt32(&done, 1)
		if r.Error != nil {
			b.logger.Warn("batch analysis failed", zap.String("url", r.URL), zap.Error(r.Error))
		}
		if b.OnProgress != nil {
			b.OnProgress(int(n), total, r)
		}
	}

	for _, u := range urls {
		job := &AnalyzeJob{
			Submission: model.Submission{URL: u, UserID: userID},
			Analyzer:   b.analyzer,
			onDone:     onDone,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	batch := make([]*BatchResult, len(results))
	for i, result := range results {
		batch[i] = result.(*BatchResult)
	}

	b.logger.Info("batch complete",
		zap.Int("submitted", total),
		zap.Int("completed", len(batch)))

	return batch
}

// ProcessFile reads URLs from a file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath, userID string) ([]*BatchResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls, userID), nil
}

// ReadURLsFromFile reads http(s) URLs from a file, one per line. Blank lines
// and # comments are skipped; duplicates are dropped.
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parsed, err := url.Parse(line)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return nil, fmt.Errorf("line %d: not an http(s) URL: %q", lineNo, line)
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
