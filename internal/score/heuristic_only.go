package score

import (
	"context"
	"fmt"
	"math"

	"github.com/ppiankov/factlens/internal/classifier"
	"github.com/ppiankov/factlens/internal/heuristic"
	"github.com/ppiankov/factlens/internal/model"
)

// Fallback summary when no classifier result is available
const basicSummary = "Basic content analysis (AI model unavailable)"

// HeuristicOnly blends a toxicity classifier with the heuristic base score.
// It degrades to the base score alone when the classifier is missing or fails.
type HeuristicOnly struct {
	classifier classifier.Classifier
}

// NewHeuristicOnly creates a new heuristic-only strategy. c may be nil.
func NewHeuristicOnly(c classifier.Classifier) *HeuristicOnly {
	return &HeuristicOnly{classifier: c}
}

// Name returns the strategy name
func (s *HeuristicOnly) Name() string {
	return StrategyHeuristicOnly
}

// Score never fails; classifier errors select the basic path
func (s *HeuristicOnly) Score(ctx context.Context, in Input) (model.AnalysisResult, error) {
	features := in.Heuristic.Features
	base := in.Heuristic.BaseScore

	baseSignal := model.Signal{
		Type:        model.SignalHeuristicBase,
		Severity:    baseSeverity(base),
		Description: fmt.Sprintf("Heuristic base score: %.2f", base),
		Data: map[string]interface{}{
			"base_score": base,
			"word_count": features.WordCount,
			"formula":    heuristic.BaseFormula,
		},
	}

	if s.classifier == nil {
		return s.basic(in, baseSignal, "No classifier configured"), nil
	}

	label, err := s.classifier.Classify(ctx, in.Content)
	if err != nil {
		return s.basic(in, baseSignal, fmt.Sprintf("Classifier failed: %v", err)), nil
	}

	toxicity := label.Toxicity()
	final := (1-toxicity)*0.6 + base*0.4
	classification := model.Classify(final)

	sentiment := model.SentimentNeutral
	if label.IsToxic() {
		sentiment = model.SentimentPotentiallyBiased
	}

	toxicitySeverity := model.SeverityInfo
	if toxicity >= 0.5 {
		toxicitySeverity = model.SeverityCritical
	} else if toxicity >= 0.2 {
		toxicitySeverity = model.SeverityWarning
	}

	findings, flags := findingsAndFlags(features)

	return model.AnalysisResult{
		Score:          final,
		Confidence:     0.75,
		Classification: classification,
		Details: model.Details{
			Sentiment:     sentiment,
			KeyIndicators: heuristic.KeyIndicators(features),
			Suggestions:   heuristic.Suggestions(classification),
		},
		AIAnalysis: &model.AIAnalysis{
			Summary:       fmt.Sprintf("AI analysis using open-source model. Credibility: %.0f%%", math.Round(final*100)),
			KeyFindings:   findings,
			RedFlags:      flags,
			VerifiedFacts: findings,
		},
		Strategy: StrategyHeuristicOnly,
		Signals: []model.Signal{
			baseSignal,
			{
				Type:        model.SignalToxicity,
				Severity:    toxicitySeverity,
				Description: fmt.Sprintf("Classifier label %s (%.2f), toxicity %.2f", label.Label, label.Score, toxicity),
				Data: map[string]interface{}{
					"label":    label.Label,
					"score":    label.Score,
					"toxicity": toxicity,
					"final":    final,
					"formula":  "(1 - toxicity) * 0.6 + base_score * 0.4",
				},
			},
		},
	}, nil
}

func (s *HeuristicOnly) basic(in Input, baseSignal model.Signal, reason string) model.AnalysisResult {
	features := in.Heuristic.Features
	base := in.Heuristic.BaseScore
	classification := model.Classify(base)

	var flags []string
	if features.HasClickbait {
		flags = append(flags, "Potential clickbait detected")
	}

	return model.AnalysisResult{
		Score:          base,
		Confidence:     0.6,
		Classification: classification,
		Details: model.Details{
			Sentiment:     model.SentimentBasic,
			KeyIndicators: heuristic.KeyIndicators(features),
			Suggestions:   heuristic.Suggestions(classification),
		},
		AIAnalysis: &model.AIAnalysis{
			Summary:       basicSummary,
			KeyFindings:   []string{"Basic text analysis completed"},
			RedFlags:      flags,
			VerifiedFacts: []string{},
		},
		Strategy: StrategyHeuristicOnly,
		Signals: []model.Signal{
			baseSignal,
			{
				Type:        model.SignalFallback,
				Severity:    model.SeverityWarning,
				Description: reason,
				Data: map[string]interface{}{
					"final":   base,
					"formula": "base_score",
				},
			},
		},
	}
}

func findingsAndFlags(f heuristic.Features) (findings, flags []string) {
	findings = []string{}
	flags = []string{}
	if f.HasEmotionalLanguage {
		flags = append(flags, "Contains emotional language")
	}
	if f.HasClickbait {
		flags = append(flags, "Uses clickbait-style phrases")
	}
	if f.HasNumbers {
		findings = append(findings, "Includes statistical information")
	}
	if f.HasQuotes {
		findings = append(findings, "Contains quoted sources")
	}
	return findings, flags
}

func baseSeverity(base float64) model.SignalSeverity {
	switch {
	case base < model.QuestionableThreshold:
		return model.SeverityCritical
	case base < model.ReliableThreshold:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}
