package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factlens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchUser    string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple URLs from a file in parallel",
	Long: `Batch analyzes many URLs concurrently:
- Read URLs from input file (one per line, # starts a comment)
- Analyze URLs in parallel with configurable worker count
- Share one per-host rate limiter across all workers
- Write one JSON report per URL

Example:
  factlens batch urls.txt
  factlens batch urls.txt --concurrency 10 --output-dir ./reports
  factlens batch urls.txt --user alice --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./factlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchUser, "user", "", "user id to record the analyses under")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	a, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	workers := concurrency
	if workers <= 0 {
		workers = a.config.Concurrency.Workers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "  factlens Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  Adapters:     %s\n", strings.Join(enabledOrNone(a.collector.Enabled()), ", "))
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(a.analyzer, workers, a.logger)
	if verbose {
		processor.OnProgress = func(done, total int, r *worker.BatchResult) {
			fmt.Fprintf(os.Stderr, "  [%d/%d] %s\n", done, total, r.URL)
		}
	}

	fmt.Fprintf(os.Stderr, "⚙️  Analyzing URLs with %d workers...\n\n", workers)
	results, err := processor.ProcessFile(ctx, file, batchUser)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Result == nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.URL, result.Error)
			continue
		}

		report := analysisReport{Result: result.Result, Keywords: []string{}}
		if result.Error != nil {
			report.Warnings = []string{"analysis was not saved: " + result.Error.Error()}
		}

		jsonPath := filepath.Join(outputDir, reportFilename(result.URL))
		if err := writeJSON(jsonPath, report); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.URL, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%.0f%%, %s)\n", result.URL, result.Result.Score*100, result.Result.Classification)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "%s\n", banner)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d URLs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// maxFilenameLen keeps report names well under common filesystem limits
const maxFilenameLen = 100

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	"&", "_",
	"=", "_",
	" ", "-",
)

// reportFilename derives a JSON file name from a URL's host and path
func reportFilename(rawURL string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		name = u.Host + strings.TrimSuffix(u.EscapedPath(), "/")
		if u.RawQuery != "" {
			name += "_" + u.RawQuery
		}
	}
	return sanitizeFilename(name) + ".json"
}

// sanitizeFilename replaces characters that are unsafe in file names
func sanitizeFilename(s string) string {
	s = strings.Trim(filenameReplacer.Replace(strings.TrimSpace(s)), "._")
	if s == "" {
		s = "report"
	}
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	return s
}
