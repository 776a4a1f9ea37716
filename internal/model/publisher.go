package model

// PublisherProfile is the reputation record for a content-source domain
type PublisherProfile struct {
	Domain           string   `json:"domain" yaml:"domain" mapstructure:"domain" bson:"domain"`
	Name             string   `json:"name" yaml:"name" mapstructure:"name" bson:"name"`
	CredibilityScore int      `json:"credibilityScore" yaml:"credibility" mapstructure:"credibility" bson:"credibilityScore"` // 0-100
	ReputationScore  int      `json:"reputationScore" yaml:"reputation" mapstructure:"reputation" bson:"reputationScore"`    // 0-100
	Bias             string   `json:"bias" yaml:"bias" mapstructure:"bias" bson:"bias"`
	FactualReporting string   `json:"factualReporting" yaml:"factual_reporting" mapstructure:"factual_reporting" bson:"factualReporting"`
	MediaBiasRating  string   `json:"mediaBiasRating,omitempty" yaml:"media_bias_rating,omitempty" mapstructure:"media_bias_rating" bson:"mediaBiasRating,omitempty"`
	FoundedYear      int      `json:"foundedYear,omitempty" yaml:"founded_year,omitempty" mapstructure:"founded_year" bson:"foundedYear,omitempty"`
	Headquarters     string   `json:"headquarters,omitempty" yaml:"headquarters,omitempty" mapstructure:"headquarters" bson:"headquarters,omitempty"`
	PrimaryTopics    []string `json:"primaryTopics,omitempty" yaml:"primary_topics,omitempty" mapstructure:"primary_topics" bson:"primaryTopics,omitempty"`
	Known            bool     `json:"known" yaml:"-" bson:"known"` // false when estimated
}

// Bias labels
const (
	BiasCenter    = "Center"
	BiasLeanLeft  = "Lean Left"
	BiasLeanRight = "Lean Right"
	BiasMixed     = "Mixed"
)

// Factual reporting labels
const (
	FactualVeryHigh = "Very High"
	FactualHigh     = "High"
	FactualMixed    = "Mixed"
	FactualLow      = "Low"
)

// SourceInsights summarizes what is known about a source for a result
type SourceInsights struct {
	Publisher          PublisherProfile `json:"publisher" bson:"publisher"`
	OverallCredibility int              `json:"overallCredibility" bson:"overallCredibility"`
	Confidence         float64          `json:"confidence" bson:"confidence"`
	Warnings           []string         `json:"warnings" bson:"warnings"`
	Recommendations    []string         `json:"recommendations" bson:"recommendations"`
}
