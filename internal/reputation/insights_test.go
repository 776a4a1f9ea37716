package reputation

import (
	"strings"
	"testing"

	"github.com/ppiankov/factlens/internal/model"
)

func TestVerdicts(t *testing.T) {
	tests := []struct {
		rating  string
		isTrue  bool
		isFalse bool
		desc    string
	}{
		{rating: "True", isTrue: true, desc: "Plain true"},
		{rating: "Mostly Correct", isTrue: true, desc: "Correct"},
		{rating: "Accurate", isTrue: true, desc: "Accurate"},
		{rating: "False", isFalse: true, desc: "Plain false"},
		{rating: "Misleading", isFalse: true, desc: "Misleading"},
		{rating: "Inaccurate", isTrue: true, isFalse: true, desc: "Inaccurate contains accurate"},
		{rating: "Unproven", desc: "Neither"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := IsTrueVerdict(tt.rating); got != tt.isTrue {
				t.Errorf("IsTrueVerdict(%q) = %v, expected %v", tt.rating, got, tt.isTrue)
			}
			if got := IsFalseVerdict(tt.rating); got != tt.isFalse {
				t.Errorf("IsFalseVerdict(%q) = %v, expected %v", tt.rating, got, tt.isFalse)
			}
		})
	}
}

func TestInsights_OverallCredibility(t *testing.T) {
	table := NewTable(nil)
	publisher := table.Lookup("cnn.com") // 72

	factChecks := []model.FactCheckClaim{
		{Rating: "True"},
		{Rating: "False"},
		{Rating: "Misleading"},
	}
	crossRefs := []model.NewsArticle{
		{URL: "https://www.reuters.com/a"},
		{URL: "https://apnews.com/b"},
		{URL: "https://www.bbc.com/c"},
	}

	insights := table.Insights(publisher, factChecks, crossRefs)

	// 72 + 5 - 20 + 2*3
	if insights.OverallCredibility != 63 {
		t.Errorf("Expected overall credibility 63, got %d", insights.OverallCredibility)
	}

	if insights.Confidence < 1.0-1e-9 {
		t.Errorf("Expected confidence to reach 1.0, got %f", insights.Confidence)
	}

	joined := strings.Join(insights.Warnings, "|")
	for _, want := range []string{
		"Source shows lean left bias",
		"Source has mixed or low factual reporting standards",
		"2 related claims have been fact-checked as false or misleading",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected warning %q in %v", want, insights.Warnings)
		}
	}

	if insights.Recommendations[0] != "Verify information with additional trusted sources" {
		t.Errorf("Unexpected first recommendation: %v", insights.Recommendations)
	}
}

func TestInsights_Clamp(t *testing.T) {
	table := NewTable(nil)
	publisher := table.Lookup("infowars-copy.net") // 55

	var factChecks []model.FactCheckClaim
	for i := 0; i < 10; i++ {
		factChecks = append(factChecks, model.FactCheckClaim{Rating: "False"})
	}

	insights := table.Insights(publisher, factChecks, nil)
	if insights.OverallCredibility != 0 {
		t.Errorf("Expected overall credibility clamped to 0, got %d", insights.OverallCredibility)
	}
	if !strings.Contains(insights.Warnings[0], "lower credibility score (55/100)") {
		t.Errorf("Expected low credibility warning, got %v", insights.Warnings)
	}
}

func TestInsights_TrustedSourceRecommendations(t *testing.T) {
	table := NewTable(nil)
	publisher := table.Lookup("reuters.com") // 92, Center, Very High

	insights := table.Insights(publisher, nil, nil)

	if len(insights.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", insights.Warnings)
	}

	expected := []string{
		"Search for fact-checks on major fact-checking websites",
		"Check the article publication date for timeliness",
		"Review the author's credentials and expertise",
	}
	if strings.Join(insights.Recommendations, "|") != strings.Join(expected, "|") {
		t.Errorf("Expected %v, got %v", expected, insights.Recommendations)
	}
}
