package model

import "time"

// Classification is the discrete credibility bucket derived from a score
type Classification string

const (
	ClassReliable     Classification = "reliable"
	ClassQuestionable Classification = "questionable"
	ClassUnreliable   Classification = "unreliable"
)

// Classification thresholds on the 0-1 scale. A score equal to a threshold
// belongs to the higher category.
const (
	ReliableThreshold     = 0.75
	QuestionableThreshold = 0.45
)

// Classify maps a 0-1 score to a classification
func Classify(score float64) Classification {
	switch {
	case score >= ReliableThreshold:
		return ClassReliable
	case score >= QuestionableThreshold:
		return ClassQuestionable
	default:
		return ClassUnreliable
	}
}

// ClassifyPercent maps a 0-100 score to a classification
func ClassifyPercent(score float64) Classification {
	return Classify(score / 100)
}

// Valid reports whether c is one of the known classifications
func (c Classification) Valid() bool {
	switch c {
	case ClassReliable, ClassQuestionable, ClassUnreliable:
		return true
	}
	return false
}

// Sentiment labels produced by the aggregation strategies
const (
	SentimentNeutral           = "Neutral"
	SentimentPotentiallyBiased = "Potentially biased"
	SentimentBasic             = "Basic Analysis"
	SentimentNegative          = "NEGATIVE"
)

// AnalysisResult is the outcome of analyzing one submission. It is never
// mutated after the aggregator returns it.
type AnalysisResult struct {
	ID             string         `json:"id,omitempty" bson:"_id,omitempty"`
	Score          float64        `json:"score" bson:"score"`                   // 0-1
	Confidence     float64        `json:"confidence" bson:"confidence"`         // 0.3-0.95
	Classification Classification `json:"classification" bson:"classification"` // derived from Score
	Details        Details        `json:"details" bson:"details"`

	AIAnalysis   *AIAnalysis   `json:"aiAnalysis,omitempty" bson:"aiAnalysis,omitempty"`
	Sources      *Sources      `json:"sources,omitempty" bson:"sources,omitempty"`
	RealTimeData *RealTimeData `json:"realTimeData,omitempty" bson:"realTimeData,omitempty"`

	Strategy  string    `json:"strategy" bson:"strategy"` // model_backed, heuristic_only
	Signals   []Signal  `json:"signals,omitempty" bson:"signals,omitempty"`
	URL       string    `json:"url,omitempty" bson:"url,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Details holds the derived, human-readable part of a result
type Details struct {
	Sentiment     string   `json:"sentiment" bson:"sentiment"`
	KeyIndicators []string `json:"keyIndicators" bson:"keyIndicators"`
	Suggestions   []string `json:"suggestions" bson:"suggestions"`
}

// AIAnalysis is the model adapter's qualitative output carried on a result
type AIAnalysis struct {
	Summary       string   `json:"summary" bson:"summary"`
	KeyFindings   []string `json:"keyFindings" bson:"keyFindings"`
	RedFlags      []string `json:"redFlags" bson:"redFlags"`
	VerifiedFacts []string `json:"verifiedFacts" bson:"verifiedFacts"`
}

// Sources lists the cross-referenced material used for a result
type Sources struct {
	SupportingArticles []NewsArticle    `json:"supportingArticles" bson:"supportingArticles"`
	FactCheckArticles  []FactCheckClaim `json:"factCheckArticles" bson:"factCheckArticles"`
}

// RealTimeData carries search context gathered while analyzing
type RealTimeData struct {
	TrendingTopics       []string       `json:"trendingTopics" bson:"trendingTopics"`
	NewsVolume           int            `json:"newsVolume" bson:"newsVolume"`
	SourceCredibilityMap map[string]int `json:"sourceCredibilityMap" bson:"sourceCredibilityMap"`
}

// ModelResult is the fixed JSON shape returned by the language-model analyzer
type ModelResult struct {
	CredibilityScore  float64  `json:"credibilityScore"` // 0-100
	KeyFindings       []string `json:"keyFindings"`
	RedFlags          []string `json:"redFlags"`
	VerifiedFacts     []string `json:"verifiedFacts"`
	Summary           string   `json:"summary"`
	KeywordExtraction []string `json:"keywordExtraction"`
}

// NewsArticle is a cross-referenced article returned by a news search
type NewsArticle struct {
	Title       string `json:"title" bson:"title"`
	URL         string `json:"url" bson:"url"`
	Source      string `json:"source" bson:"source"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	Relevance   int    `json:"relevance" bson:"relevance"` // 0-10
}

// NewsResult is the output of a news search
type NewsResult struct {
	Articles     []NewsArticle `json:"articles"`
	TotalResults int           `json:"totalResults"`
}

// FactCheckClaim is one reviewed claim returned by a fact-check search
type FactCheckClaim struct {
	Title        string `json:"title" bson:"title"` // claim text
	URL          string `json:"url" bson:"url"`
	Organization string `json:"organization" bson:"organization"`
	Rating       string `json:"rating" bson:"rating"` // textual verdict
	Summary      string `json:"summary" bson:"summary"`
	ReviewDate   string `json:"reviewDate,omitempty" bson:"reviewDate,omitempty"`
}

// Submission is a request to analyze content
type Submission struct {
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
	UserID  string `json:"userId,omitempty"`
}
