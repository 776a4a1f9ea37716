package alert

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
)

// Matcher evaluates user alert rules against analyzed content
type Matcher struct {
	logger *zap.Logger
	newID  func() string
	now    func() time.Time
}

// NewMatcher creates a new alert matcher
func NewMatcher(logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		logger: logger,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// Match returns one triggered alert per active rule whose keywords occur in
// content and whose type filter accepts the result. Malformed rules are
// logged and skipped.
func (m *Matcher) Match(content string, analysisID string, result model.AnalysisResult, rules []model.AlertRule) []model.TriggeredAlert {
	lower := strings.ToLower(content)
	excerpt := model.Truncate(content, model.AlertExcerptLen)

	var triggered []model.TriggeredAlert
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}

		if err := Validate(rule); err != nil {
			m.logger.Warn("skipping malformed alert rule",
				zap.String("alert_id", rule.ID),
				zap.String("user_id", rule.UserID),
				zap.Error(err))
			continue
		}

		matched := matchedKeywords(lower, rule.Keywords)
		if len(matched) == 0 {
			continue
		}

		if !accepts(rule.AlertType, result) {
			continue
		}

		triggered = append(triggered, model.TriggeredAlert{
			ID:              m.newID(),
			UserID:          rule.UserID,
			AlertID:         rule.ID,
			AnalysisID:      analysisID,
			ContentExcerpt:  excerpt,
			MatchedKeywords: matched,
			TriggeredAt:     m.now().UTC(),
		})
	}

	m.logger.Debug("evaluated alert rules",
		zap.Int("rules", len(rules)),
		zap.Int("triggered", len(triggered)))

	return triggered
}

// Validate rejects rules with no usable keywords or an unknown type
func Validate(rule model.AlertRule) error {
	usable := 0
	for _, k := range rule.Keywords {
		if strings.TrimSpace(k) != "" {
			usable++
		}
	}
	if usable == 0 {
		return &model.InvalidInputError{Reason: "alert rule has no keywords"}
	}
	if !rule.AlertType.Valid() {
		return &model.InvalidInputError{Reason: "unknown alert type " + string(rule.AlertType)}
	}
	return nil
}

// matchedKeywords lists every rule keyword found in lowerContent
func matchedKeywords(lowerContent string, keywords []string) []string {
	var matched []string
	for _, k := range keywords {
		needle := strings.ToLower(strings.TrimSpace(k))
		if needle == "" {
			continue
		}
		if strings.Contains(lowerContent, needle) {
			matched = append(matched, k)
		}
	}
	return matched
}

// accepts applies the alert type filter
func accepts(t model.AlertType, result model.AnalysisResult) bool {
	switch t {
	case model.AlertMisinformation:
		return result.Classification == model.ClassUnreliable
	case model.AlertBias:
		sentiment := strings.ToLower(result.Details.Sentiment)
		return result.Classification == model.ClassQuestionable ||
			strings.Contains(sentiment, "negative") ||
			strings.Contains(sentiment, "biased")
	case model.AlertSourceReliability:
		return result.Classification == model.ClassUnreliable || result.Classification == model.ClassQuestionable
	case model.AlertAll:
		return true
	}
	return false
}
