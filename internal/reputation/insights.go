package reputation

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// IsTrueVerdict reports whether a textual fact-check rating supports the claim
func IsTrueVerdict(rating string) bool {
	r := strings.ToLower(rating)
	return strings.Contains(r, "true") || strings.Contains(r, "correct") || strings.Contains(r, "accurate")
}

// IsFalseVerdict reports whether a textual fact-check rating refutes the claim
func IsFalseVerdict(rating string) bool {
	r := strings.ToLower(rating)
	return strings.Contains(r, "false") || strings.Contains(r, "misleading") || strings.Contains(r, "inaccurate")
}

// Insights combines a publisher profile with fact-check verdicts and
// cross-referenced articles into an overall source assessment
func (t *Table) Insights(publisher model.PublisherProfile, factChecks []model.FactCheckClaim, crossRefs []model.NewsArticle) model.SourceInsights {
	score := publisher.CredibilityScore
	confidence := 0.7

	// 1. Fact-check verdicts: +5 per supporting, -10 per refuting
	negatives := 0
	if len(factChecks) > 0 {
		positive := 0
		for _, fc := range factChecks {
			if IsTrueVerdict(fc.Rating) {
				positive++
			}
			if IsFalseVerdict(fc.Rating) {
				negatives++
			}
		}
		score += positive*5 - negatives*10
		confidence += 0.2
	}

	// 2. Cross-references: +3 per reputable domain
	if len(crossRefs) > 0 {
		reputable := 0
		for _, ref := range crossRefs {
			if t.IsCrossReferenceDomain(ref.URL) {
				reputable++
			}
		}
		score += reputable * 3
		confidence += float64(len(crossRefs)) * 0.05
	}

	score = int(math.Max(0, math.Min(100, float64(score))))

	return model.SourceInsights{
		Publisher:          publisher,
		OverallCredibility: score,
		Confidence:         math.Min(1, confidence),
		Warnings:           warnings(publisher, factChecks),
		Recommendations:    recommendations(score, len(factChecks)),
	}
}

func warnings(publisher model.PublisherProfile, factChecks []model.FactCheckClaim) []string {
	out := []string{}

	if publisher.CredibilityScore < 70 {
		out = append(out, fmt.Sprintf("Source has lower credibility score (%d/100)", publisher.CredibilityScore))
	}
	if publisher.Bias != model.BiasCenter {
		out = append(out, fmt.Sprintf("Source shows %s bias", strings.ToLower(publisher.Bias)))
	}
	if publisher.FactualReporting == model.FactualMixed || publisher.FactualReporting == model.FactualLow {
		out = append(out, "Source has mixed or low factual reporting standards")
	}

	refuted := 0
	for _, fc := range factChecks {
		r := strings.ToLower(fc.Rating)
		if strings.Contains(r, "false") || strings.Contains(r, "misleading") {
			refuted++
		}
	}
	if refuted > 0 {
		out = append(out, fmt.Sprintf("%d related claims have been fact-checked as false or misleading", refuted))
	}

	return out
}

func recommendations(score, factCheckCount int) []string {
	var out []string
	if score < 80 {
		out = append(out,
			"Verify information with additional trusted sources",
			"Look for official statements or documents",
		)
	}
	if factCheckCount == 0 {
		out = append(out, "Search for fact-checks on major fact-checking websites")
	}
	return append(out,
		"Check the article publication date for timeliness",
		"Review the author's credentials and expertise",
	)
}
