package heuristic

import (
	"fmt"

	"github.com/ppiankov/factlens/internal/model"
)

// Suggestions returns the basic reader guidance for a classification
func Suggestions(c model.Classification) []string {
	switch c {
	case model.ClassUnreliable:
		return []string{"Cross-reference with trusted sources", "Verify with fact-checkers"}
	case model.ClassQuestionable:
		return []string{"Seek additional verification", "Check source credibility"}
	default:
		return []string{"Content appears credible", "Always verify with multiple sources"}
	}
}

// EnrichedSuggestions extends the guidance with what cross-referencing found
func EnrichedSuggestions(c model.Classification, newsCount, factCheckCount int) []string {
	var suggestions []string

	switch c {
	case model.ClassUnreliable:
		suggestions = append(suggestions,
			"Cross-reference with multiple trusted news sources",
			"Verify claims through fact-checking organizations",
			"Check original sources and citations",
		)
	case model.ClassQuestionable:
		suggestions = append(suggestions,
			"Verify with additional reliable sources",
			"Look for supporting statistical evidence",
			"Consider the source's reputation and potential bias",
		)
	default:
		suggestions = append(suggestions,
			"Content shows strong credibility indicators",
			"Cross-reference with other reputable sources for completeness",
		)
	}

	if newsCount > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Found %d related news articles for verification", newsCount))
	}
	if factCheckCount > 0 {
		suggestions = append(suggestions, fmt.Sprintf("%d fact-check articles available for review", factCheckCount))
	}

	return suggestions
}
