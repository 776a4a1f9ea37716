package heuristic

import (
	"math"
	"regexp"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

var (
	numberPattern   = regexp.MustCompile(`\d+`)
	quotePattern    = regexp.MustCompile(`["']`)
	urlPattern      = regexp.MustCompile(`https?://`)
	shoutPattern    = regexp.MustCompile(`[A-Z]{3,}`)
	sentencePattern = regexp.MustCompile(`[.!?]+`)
)

// Features are the lightweight textual signals extracted from content
type Features struct {
	HasEmotionalLanguage bool    `json:"hasEmotionalLanguage"`
	HasClickbait         bool    `json:"hasClickbait"`
	HasBiasedLanguage    bool    `json:"hasBiasedLanguage"`
	HasNumbers           bool    `json:"hasNumbers"`
	HasQuotes            bool    `json:"hasQuotes"`
	HasURLs              bool    `json:"hasUrls"`
	HasCapitalization    bool    `json:"hasCapitalization"`
	WordCount            int     `json:"wordCount"`
	AvgSentenceLength    float64 `json:"avgSentenceLength"`
}

// Analysis is the output of the heuristic analyzer
type Analysis struct {
	Features  Features
	BaseScore float64 // 0.1-1.0
}

// Analyzer scores text with fixed keyword and phrase lists
type Analyzer struct {
	emotional  []string
	clickbait  []string
	absolutist []string
}

// NewAnalyzer creates a new analyzer. A nil config uses the built-in lists.
func NewAnalyzer(config *model.HeuristicConfig) *Analyzer {
	if config == nil {
		def := model.DefaultHeuristicConfig()
		config = &def
	}

	return &Analyzer{
		emotional:  lowerAll(config.EmotionalWords),
		clickbait:  lowerAll(config.ClickbaitPhrases),
		absolutist: lowerAll(config.AbsolutistWords),
	}
}

// Analyze extracts features and computes the base score
func (a *Analyzer) Analyze(text string) (Analysis, error) {
	if err := ValidateContent(text); err != nil {
		return Analysis{}, err
	}

	features := a.Extract(text)
	return Analysis{
		Features:  features,
		BaseScore: BaseScore(features),
	}, nil
}

// ValidateContent rejects text too short to analyze
func ValidateContent(text string) error {
	if len([]rune(strings.TrimSpace(text))) < model.MinContentLength {
		return &model.InvalidInputError{Reason: "content must be at least 10 characters"}
	}
	return nil
}

// Extract computes features without validating length
func (a *Analyzer) Extract(text string) Features {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)

	sentences := 0
	for _, s := range sentencePattern.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}

	avg := 0.0
	if sentences > 0 {
		avg = float64(len(words)) / float64(sentences)
	}

	return Features{
		HasEmotionalLanguage: countMatches(lower, a.emotional) >= 2,
		HasClickbait:         countMatches(lower, a.clickbait) > 0,
		HasBiasedLanguage:    countMatches(lower, a.absolutist) > 2,
		HasNumbers:           numberPattern.MatchString(text),
		HasQuotes:            quotePattern.MatchString(text),
		HasURLs:              urlPattern.MatchString(text),
		HasCapitalization:    shoutPattern.MatchString(text),
		WordCount:            len(words),
		AvgSentenceLength:    avg,
	}
}

// baseStart is the score before any adjustment
const baseStart = 0.6

// BaseFormula describes BaseScore in result signals
const BaseFormula = "clamp(0.6 + bonuses - penalties, 0.1, 1.0)"

// BaseScore applies the fixed additive adjustments to a 0.6 start
func BaseScore(f Features) float64 {
	score := baseStart

	if f.HasNumbers {
		score += 0.1
	}
	if f.HasQuotes {
		score += 0.1
	}
	if f.WordCount > 100 {
		score += 0.05
	}

	if f.HasEmotionalLanguage {
		score -= 0.1
	} else {
		score += 0.1
	}

	if f.HasClickbait {
		score -= 0.2
	} else {
		score += 0.15
	}

	if f.HasBiasedLanguage {
		score -= 0.05
	}

	return math.Max(0.1, math.Min(1.0, score))
}

// KeyIndicators lists the human-readable findings for a feature set
func KeyIndicators(f Features) []string {
	var indicators []string
	if f.HasEmotionalLanguage {
		indicators = append(indicators, "Contains emotional language")
	}
	if f.HasClickbait {
		indicators = append(indicators, "Uses clickbait-style phrases")
	}
	if f.HasNumbers {
		indicators = append(indicators, "Includes statistical information")
	}
	if f.HasQuotes {
		indicators = append(indicators, "Contains quoted sources")
	}
	if len(indicators) == 0 {
		indicators = append(indicators, "Basic content analysis completed")
	}
	return indicators
}

// countMatches counts list entries that occur as substrings of lower
func countMatches(lower string, list []string) int {
	count := 0
	for _, w := range list {
		if strings.Contains(lower, w) {
			count++
		}
	}
	return count
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
