package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factlens/internal/model"
)

var (
	analyzeText    string
	analyzeFile    string
	analyzeUser    string
	analyzeJSON    string
	analyzeTimeout time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyze a piece of text or a web page",
	Long: `Analyze scores the credibility of one submission:
- Text heuristics (emotional language, clickbait, absolutist claims)
- Language-model analysis when a provider is configured
- News cross-references and fact-check lookups on extracted keywords
- Publisher reputation for the source URL

When only a URL is given the page is fetched and its article text analyzed.

Example:
  factlens analyze https://www.reuters.com/world/some-article
  factlens analyze --text "You won't believe what happened next"
  factlens analyze --file article.txt --json report.json
  cat article.txt | factlens analyze --file - https://example.com/source`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "content to analyze")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read content from a file (- for stdin)")
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "user id to record the analysis under")
	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "write the JSON report to this path (- for stdout)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "overall analysis timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sub, err := buildSubmission(args, analyzeText, analyzeFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	sub.UserID = analyzeUser

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	a, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if verbose {
		if sub.URL != "" {
			fmt.Fprintf(os.Stderr, "Analyzing: %s\n", sub.URL)
		}
		fmt.Fprintf(os.Stderr, "Adapters: %s\n", strings.Join(enabledOrNone(a.collector.Enabled()), ", "))
		fmt.Fprintf(os.Stderr, "⚙️  Running analysis...\n")
	}

	outcome, err := a.analyzer.Run(ctx, sub)
	if outcome == nil {
		if isInvalidInput(err) {
			return err
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Scored with %s strategy\n", outcome.Result.Strategy)
		fmt.Fprintf(os.Stderr, "✓ %d signals, %d keywords\n", len(outcome.Result.Signals), len(outcome.Keywords))
		if len(outcome.Triggered) > 0 {
			fmt.Fprintf(os.Stderr, "✓ Triggered %d alerts\n", len(outcome.Triggered))
		}
	}

	report := newReport(outcome, err)
	if analyzeJSON != "" {
		if err := writeJSON(analyzeJSON, report); err != nil {
			return err
		}
		if analyzeJSON == "-" {
			return nil
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", analyzeJSON)
	}

	printSummary(cmd.OutOrStdout(), report)
	return nil
}

// buildSubmission combines the optional URL argument with content from
// --text or --file. A URL alone is fetched by the pipeline.
func buildSubmission(args []string, text, file string, stdin io.Reader) (model.Submission, error) {
	var sub model.Submission
	if len(args) == 1 {
		sub.URL = strings.TrimSpace(args[0])
	}

	switch {
	case text != "" && file != "":
		return sub, fmt.Errorf("use either --text or --file, not both")
	case text != "":
		sub.Content = text
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return sub, fmt.Errorf("read stdin: %w", err)
		}
		sub.Content = string(data)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return sub, fmt.Errorf("read %s: %w", file, err)
		}
		sub.Content = string(data)
	}

	if sub.URL == "" && strings.TrimSpace(sub.Content) == "" {
		return sub, fmt.Errorf("nothing to analyze: pass a URL, --text or --file")
	}
	return sub, nil
}

func enabledOrNone(names []string) []string {
	if len(names) == 0 {
		return []string{"none (heuristics only)"}
	}
	return names
}
