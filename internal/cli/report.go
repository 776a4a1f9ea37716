package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
)

const banner = "═══════════════════════════════════════════════════════════"

// analysisReport is the JSON document written for one analysis
type analysisReport struct {
	Result          *model.AnalysisResult  `json:"result"`
	Page            *pipeline.PageMeta     `json:"page,omitempty"`
	Source          *model.SourceInsights  `json:"sourceVerification,omitempty"`
	Keywords        []string               `json:"keywords"`
	TriggeredAlerts []model.TriggeredAlert `json:"triggeredAlerts,omitempty"`
	Warnings        []string               `json:"warnings,omitempty"`
}

// newReport collects an outcome and its non-fatal errors into a report
func newReport(outcome *pipeline.Outcome, err error) analysisReport {
	report := analysisReport{
		Result:          outcome.Result,
		Page:            outcome.Page,
		Source:          outcome.Insights,
		Keywords:        outcome.Keywords,
		TriggeredAlerts: outcome.Triggered,
	}
	if report.Keywords == nil {
		report.Keywords = []string{}
	}
	for _, failure := range outcome.Failures {
		report.Warnings = append(report.Warnings, failure.Error())
	}
	if err != nil {
		report.Warnings = append(report.Warnings, "analysis was not saved: "+err.Error())
	}
	return report
}

// writeJSON writes v as indented JSON to path, or to stdout when path is "-"
func writeJSON(path string, v interface{}) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printSummary renders a report for the terminal
func printSummary(w io.Writer, report analysisReport) {
	r := report.Result

	fmt.Fprintln(w)
	fmt.Fprintln(w, banner)
	if report.Page != nil && report.Page.Title != "" {
		fmt.Fprintf(w, "  %s\n", report.Page.Title)
	} else {
		fmt.Fprintln(w, "  Credibility Analysis")
	}
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Score:          %.0f%% (%s)\n", r.Score*100, r.Classification)
	fmt.Fprintf(w, "  Confidence:     %.0f%%\n", r.Confidence*100)
	fmt.Fprintf(w, "  Strategy:       %s\n", r.Strategy)
	fmt.Fprintf(w, "  Sentiment:      %s\n", r.Details.Sentiment)
	if r.URL != "" {
		fmt.Fprintf(w, "  URL:            %s\n", r.URL)
	}
	if len(report.Keywords) > 0 {
		fmt.Fprintf(w, "  Keywords:       %s\n", strings.Join(report.Keywords, ", "))
	}

	if s := report.Source; s != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Publisher:      %s (%s)\n", s.Publisher.Name, s.Publisher.Domain)
		fmt.Fprintf(w, "  Credibility:    %d/100, bias %s, factual reporting %s\n",
			s.OverallCredibility, s.Publisher.Bias, s.Publisher.FactualReporting)
		if !s.Publisher.Known {
			fmt.Fprintln(w, "                  (estimated, not in the reputation table)")
		}
	}

	if r.AIAnalysis != nil && r.AIAnalysis.Summary != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Summary: %s\n", r.AIAnalysis.Summary)
	}

	printList(w, "Signals", signalLines(r.Signals))
	printList(w, "Key indicators", r.Details.KeyIndicators)
	if r.AIAnalysis != nil {
		printList(w, "Red flags", r.AIAnalysis.RedFlags)
	}
	if r.Sources != nil {
		printList(w, "Fact checks", factCheckLines(r.Sources.FactCheckArticles))
	}
	printList(w, "Suggestions", r.Details.Suggestions)

	if len(report.TriggeredAlerts) > 0 {
		lines := make([]string, len(report.TriggeredAlerts))
		for i, a := range report.TriggeredAlerts {
			lines[i] = fmt.Sprintf("alert %s matched %s", a.AlertID, strings.Join(a.MatchedKeywords, ", "))
		}
		printList(w, "Triggered alerts", lines)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	fmt.Fprintln(w)
}

func printList(w io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s:\n", title)
	for _, line := range lines {
		fmt.Fprintf(w, "    - %s\n", line)
	}
}

func signalLines(signals []model.Signal) []string {
	lines := make([]string, 0, len(signals))
	for _, s := range signals {
		mark := "✓"
		switch s.Severity {
		case model.SeverityWarning:
			mark = "!"
		case model.SeverityCritical:
			mark = "✗"
		}
		lines = append(lines, fmt.Sprintf("%s [%s] %s", mark, s.Type, s.Description))
	}
	return lines
}

func factCheckLines(claims []model.FactCheckClaim) []string {
	lines := make([]string, 0, len(claims))
	for _, c := range claims {
		lines = append(lines, fmt.Sprintf("%s: %q (%s)", c.Organization, c.Title, c.Rating))
	}
	return lines
}
