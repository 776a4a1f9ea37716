package model

import (
	"time"
	"unicode/utf8"
)

// Excerpt lengths stored with records
const (
	AnalysisExcerptLen = 500
	AlertExcerptLen    = 300
)

// AnalysisRecord is a persisted analysis
type AnalysisRecord struct {
	ID                 string          `json:"id" bson:"_id"`
	UserID             string          `json:"userId,omitempty" bson:"userId,omitempty"`
	URL                string          `json:"url,omitempty" bson:"url,omitempty"`
	ContentExcerpt     string          `json:"contentExcerpt" bson:"contentExcerpt"`
	Result             AnalysisResult  `json:"analysisResult" bson:"analysisResult"`
	SourceVerification *SourceInsights `json:"sourceVerification,omitempty" bson:"sourceVerification,omitempty"`
	CreatedAt          time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// Bookmark marks an analysis as saved by a user
type Bookmark struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"userId" bson:"userId"`
	AnalysisID string    `json:"analysisId" bson:"analysisId"`
	Tags       []string  `json:"tags" bson:"tags"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// Profile is a user's profile record
type Profile struct {
	ID          string                 `json:"id" bson:"_id"`
	UserID      string                 `json:"userId" bson:"userId"`
	DisplayName string                 `json:"displayName,omitempty" bson:"displayName,omitempty"`
	AvatarURL   string                 `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
	Preferences map[string]interface{} `json:"preferences,omitempty" bson:"preferences,omitempty"`
	CreatedAt   time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// ProfileStats counts a user's records
type ProfileStats struct {
	Analyses  int `json:"analyses"`
	Bookmarks int `json:"bookmarks"`
	Alerts    int `json:"alerts"`
	Reports   int `json:"reports"`
}

// Report types
const (
	ReportDaily  = "daily"
	ReportWeekly = "weekly"
	ReportCustom = "custom"
)

// Report is a stored statistics snapshot for a date range
type Report struct {
	ID             string         `json:"id" bson:"_id"`
	UserID         string         `json:"userId" bson:"userId"`
	Title          string         `json:"title" bson:"title"`
	ReportType     string         `json:"reportType" bson:"reportType"`
	DateRangeStart time.Time      `json:"dateRangeStart" bson:"dateRangeStart"`
	DateRangeEnd   time.Time      `json:"dateRangeEnd" bson:"dateRangeEnd"`
	Data           DashboardStats `json:"data" bson:"data"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
}

// Trend directions
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// DashboardStats aggregates a set of analyses
type DashboardStats struct {
	TotalAnalyses      int           `json:"totalAnalyses" bson:"totalAnalyses"`
	AverageCredibility float64       `json:"averageCredibility" bson:"averageCredibility"` // percent
	Reliable           int           `json:"reliable" bson:"reliable"`
	Questionable       int           `json:"questionable" bson:"questionable"`
	Unreliable         int           `json:"unreliable" bson:"unreliable"`
	Trend              string        `json:"trend" bson:"trend"`
	TopSources         []SourceCount `json:"topSources" bson:"topSources"`
}

// SourceCount is the number of analyses seen for a domain
type SourceCount struct {
	Domain string `json:"domain" bson:"domain"`
	Count  int    `json:"count" bson:"count"`
}

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
