package model

import "time"

// AlertType selects which analyses an alert rule reacts to
type AlertType string

const (
	AlertAll               AlertType = "all"
	AlertMisinformation    AlertType = "misinformation"
	AlertBias              AlertType = "bias"
	AlertSourceReliability AlertType = "source_reliability"
)

// Valid reports whether t is a known alert type
func (t AlertType) Valid() bool {
	switch t {
	case AlertAll, AlertMisinformation, AlertBias, AlertSourceReliability:
		return true
	}
	return false
}

// AlertRule is a user-owned keyword filter
type AlertRule struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	Keywords  []string  `json:"keywords" bson:"keywords"`
	AlertType AlertType `json:"alertType" bson:"alertType"`
	IsActive  bool      `json:"isActive" bson:"isActive"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TriggeredAlert records that a rule fired for an analysis
type TriggeredAlert struct {
	ID              string    `json:"id" bson:"_id"`
	UserID          string    `json:"userId" bson:"userId"`
	AlertID         string    `json:"alertId" bson:"alertId"`
	AnalysisID      string    `json:"analysisId" bson:"analysisId"`
	ContentExcerpt  string    `json:"contentExcerpt" bson:"contentExcerpt"`
	MatchedKeywords []string  `json:"matchedKeywords" bson:"matchedKeywords"`
	IsRead          bool      `json:"isRead" bson:"isRead"`
	TriggeredAt     time.Time `json:"triggeredAt" bson:"triggeredAt"`
}
