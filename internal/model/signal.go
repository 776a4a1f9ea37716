package model

// Signal is one transparent factor of an aggregate score
type Signal struct {
	Type        SignalType             `json:"type" bson:"type"`
	Severity    SignalSeverity         `json:"severity" bson:"severity"`
	Description string                 `json:"description" bson:"description"`
	Data        map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"` // inputs and formula
}

// SignalType classifies the scoring factor
type SignalType string

const (
	SignalModelScore        SignalType = "model_score"         // Language-model credibility
	SignalNewsReputability  SignalType = "news_reputability"   // Share of reputable outlets
	SignalFactCheckVerdicts SignalType = "fact_check_verdicts" // Share of true verdicts
	SignalSourceCredibility SignalType = "source_credibility"  // Publisher credibility
	SignalToxicity          SignalType = "toxicity"            // Classifier toxicity
	SignalHeuristicBase     SignalType = "heuristic_base"      // Text heuristics
	SignalFallback          SignalType = "fallback"            // Degraded path taken
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
