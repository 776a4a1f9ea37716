package score

import (
	"context"
	"fmt"

	"github.com/ppiankov/factlens/internal/heuristic"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/reputation"
)

// Factor weights on the 0-100 scale
const (
	weightModel       = 0.4
	weightNews        = 0.3
	weightFactChecks  = 0.2
	weightSourceScore = 0.1
)

// ModelBacked combines the language-model score with cross-referenced news,
// fact-check verdicts and the submitting publisher's credibility
type ModelBacked struct {
	table *reputation.Table
}

// NewModelBacked creates a new model-backed strategy
func NewModelBacked(table *reputation.Table) *ModelBacked {
	if table == nil {
		table = reputation.NewTable(nil)
	}
	return &ModelBacked{table: table}
}

// Name returns the strategy name
func (s *ModelBacked) Name() string {
	return StrategyModelBacked
}

// Score calculates the weighted credibility and generates one signal per factor
func (s *ModelBacked) Score(ctx context.Context, in Input) (model.AnalysisResult, error) {
	if !in.HasAdapterData() {
		return model.AnalysisResult{}, fmt.Errorf("no adapter data to aggregate")
	}

	var signals []model.Signal

	// 1. Model analysis (40%)
	aiTerm, aiSignal := s.modelTerm(in)
	signals = append(signals, aiSignal)

	// 2. Reputable news coverage (30%)
	newsTerm, newsSignal := s.newsTerm(in.News)
	signals = append(signals, newsSignal)

	// 3. Fact-check verdicts (20%)
	factTerm, factSignal := s.factCheckTerm(in.FactChecks)
	signals = append(signals, factSignal)

	// 4. Publisher credibility (10%)
	sourceTerm, sourceMap, sourceSignal := s.sourceTerm(in.URL)
	signals = append(signals, sourceSignal)

	total := clamp(aiTerm+newsTerm+factTerm+sourceTerm, 0, 100)
	classification := model.ClassifyPercent(total)

	newsCount := 0
	newsVolume := 0
	var articles []model.NewsArticle
	if in.News != nil {
		articles = in.News.Articles
		newsCount = len(articles)
		newsVolume = in.News.TotalResults
	}

	ai := &model.AIAnalysis{}
	sentiment := model.SentimentNeutral
	if in.Model != nil {
		ai.Summary = in.Model.Summary
		ai.KeyFindings = in.Model.KeyFindings
		ai.RedFlags = in.Model.RedFlags
		ai.VerifiedFacts = in.Model.VerifiedFacts
		if len(in.Model.RedFlags) > 0 {
			sentiment = model.SentimentPotentiallyBiased
		}
	} else {
		ai.Summary = "Cross-reference analysis (language model unavailable)"
	}

	return model.AnalysisResult{
		Score:          total / 100,
		Confidence:     confidence(in.Model, newsCount, len(in.FactChecks)),
		Classification: classification,
		Details: model.Details{
			Sentiment:     sentiment,
			KeyIndicators: heuristic.KeyIndicators(in.Heuristic.Features),
			Suggestions:   heuristic.EnrichedSuggestions(classification, newsCount, len(in.FactChecks)),
		},
		AIAnalysis: ai,
		Sources: &model.Sources{
			SupportingArticles: nonNilArticles(articles),
			FactCheckArticles:  nonNilClaims(in.FactChecks),
		},
		RealTimeData: &model.RealTimeData{
			TrendingTopics:       in.Keywords,
			NewsVolume:           newsVolume,
			SourceCredibilityMap: sourceMap,
		},
		Strategy: StrategyModelBacked,
		Signals:  signals,
	}, nil
}

// modelTerm uses the heuristic base score in place of a missing model result
func (s *ModelBacked) modelTerm(in Input) (float64, model.Signal) {
	if in.Model == nil {
		base := in.Heuristic.BaseScore * 100
		return base * weightModel, model.Signal{
			Type:        model.SignalModelScore,
			Severity:    model.SeverityWarning,
			Description: "Language model unavailable, using heuristic base score",
			Data: map[string]interface{}{
				"base_score": in.Heuristic.BaseScore,
				"term":       base * weightModel,
				"formula":    "base_score * 100 * 0.4",
			},
		}
	}

	ai := clamp(in.Model.CredibilityScore, 0, 100)
	severity := model.SeverityInfo
	if ai < model.QuestionableThreshold*100 {
		severity = model.SeverityCritical
	} else if ai < model.ReliableThreshold*100 {
		severity = model.SeverityWarning
	}

	return ai * weightModel, model.Signal{
		Type:        model.SignalModelScore,
		Severity:    severity,
		Description: fmt.Sprintf("Language model credibility: %.0f/100", ai),
		Data: map[string]interface{}{
			"credibility_score": ai,
			"term":              ai * weightModel,
			"formula":           "credibility_score * 0.4",
		},
	}
}

func (s *ModelBacked) newsTerm(news *model.NewsResult) (float64, model.Signal) {
	if news == nil || len(news.Articles) == 0 {
		return 0, model.Signal{
			Type:        model.SignalNewsReputability,
			Severity:    model.SeverityWarning,
			Description: "No related news coverage found",
			Data:        map[string]interface{}{"articles": 0, "term": 0.0},
		}
	}

	reputable := 0
	for _, a := range news.Articles {
		if s.table.IsReputableOutlet(a.Source) {
			reputable++
		}
	}

	ratio := float64(reputable) / float64(len(news.Articles))
	term := clamp(ratio*100, 0, 100) * weightNews

	severity := model.SeverityInfo
	if reputable == 0 {
		severity = model.SeverityWarning
	}

	return term, model.Signal{
		Type:        model.SignalNewsReputability,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d related articles from reputable outlets", reputable, len(news.Articles)),
		Data: map[string]interface{}{
			"articles":  len(news.Articles),
			"reputable": reputable,
			"ratio":     ratio,
			"term":      term,
			"formula":   "min(100, reputable / articles * 100) * 0.3",
		},
	}
}

func (s *ModelBacked) factCheckTerm(claims []model.FactCheckClaim) (float64, model.Signal) {
	if len(claims) == 0 {
		return 0, model.Signal{
			Type:        model.SignalFactCheckVerdicts,
			Severity:    model.SeverityInfo,
			Description: "No related fact-checks found",
			Data:        map[string]interface{}{"claims": 0, "term": 0.0},
		}
	}

	verified := 0
	for _, c := range claims {
		if reputation.IsTrueVerdict(c.Rating) {
			verified++
		}
	}

	ratio := float64(verified) / float64(len(claims))
	term := ratio * 100 * weightFactChecks

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityWarning
	}

	return term, model.Signal{
		Type:        model.SignalFactCheckVerdicts,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d related claims rated true", verified, len(claims)),
		Data: map[string]interface{}{
			"claims":   len(claims),
			"verified": verified,
			"ratio":    ratio,
			"term":     term,
			"formula":  "verified / claims * 100 * 0.2",
		},
	}
}

// sourceTerm scores the submitting publisher; text-only submissions contribute nothing
func (s *ModelBacked) sourceTerm(url string) (float64, map[string]int, model.Signal) {
	domain := reputation.NormalizeDomain(url)
	if domain == "" {
		return 0, map[string]int{}, model.Signal{
			Type:        model.SignalSourceCredibility,
			Severity:    model.SeverityInfo,
			Description: "No source URL provided",
			Data:        map[string]interface{}{"term": 0.0},
		}
	}

	sourceScore := s.table.SourceScore(domain)
	term := float64(sourceScore) * weightSourceScore

	severity := model.SeverityInfo
	if sourceScore < 50 {
		severity = model.SeverityCritical
	} else if sourceScore < 70 {
		severity = model.SeverityWarning
	}

	return term, map[string]int{domain: sourceScore}, model.Signal{
		Type:        model.SignalSourceCredibility,
		Severity:    severity,
		Description: fmt.Sprintf("Source %s credibility: %d/100", domain, sourceScore),
		Data: map[string]interface{}{
			"domain":       domain,
			"source_score": sourceScore,
			"term":         term,
			"formula":      "source_score * 0.1",
		},
	}
}

// confidence grows with corroborating data and shrinks with many red flags
func confidence(result *model.ModelResult, newsCount, factCheckCount int) float64 {
	c := 0.6

	if newsCount > 5 {
		c += 0.1
	}
	if factCheckCount > 2 {
		c += 0.1
	}
	if result != nil {
		if len(result.VerifiedFacts) > 3 {
			c += 0.1
		}
		if len(result.RedFlags) > 3 {
			c -= 0.1
		}
	}

	return clamp(c, 0.3, 0.95)
}

func nonNilArticles(in []model.NewsArticle) []model.NewsArticle {
	if in == nil {
		return []model.NewsArticle{}
	}
	return in
}

func nonNilClaims(in []model.FactCheckClaim) []model.FactCheckClaim {
	if in == nil {
		return []model.FactCheckClaim{}
	}
	return in
}
