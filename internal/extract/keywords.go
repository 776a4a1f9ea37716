package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// KeywordExtractor picks the most frequent meaningful words from text
type KeywordExtractor struct {
	stopWords map[string]bool
	limit     int
}

// NewKeywordExtractor creates a keyword extractor. Nil stop words use the
// built-in list.
func NewKeywordExtractor(stopWords []string, limit int) *KeywordExtractor {
	if stopWords == nil {
		stopWords = model.DefaultHeuristicConfig().StopWords
	}
	if limit <= 0 {
		limit = 5
	}

	stop := make(map[string]bool, len(stopWords))
	for _, w := range stopWords {
		stop[strings.ToLower(w)] = true
	}

	return &KeywordExtractor{stopWords: stop, limit: limit}
}

// Extract returns up to limit keywords ordered by frequency. Ties keep the
// order of first appearance.
func (e *KeywordExtractor) Extract(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")

	counts := make(map[string]int)
	var order []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 || e.stopWords[word] {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > e.limit {
		order = order[:e.limit]
	}
	return order
}
