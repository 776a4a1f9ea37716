package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete factlens configuration
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Classifier   ClassifierConfig  `yaml:"classifier" mapstructure:"classifier"`
	News         NewsConfig        `yaml:"news" mapstructure:"news"`
	FactCheck    FactCheckConfig   `yaml:"fact_check" mapstructure:"fact_check"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Store        StoreConfig       `yaml:"store" mapstructure:"store"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Reports      ReportsConfig     `yaml:"reports" mapstructure:"reports"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
	Heuristic    HeuristicConfig   `yaml:"heuristic" mapstructure:"heuristic"`
	Reputation   ReputationConfig  `yaml:"reputation" mapstructure:"reputation"`
}

// HTTPConfig controls URL fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries    int           `yaml:"max_retries" mapstructure:"max_retries"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// LLMConfig selects the language-model analyzer
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" to disable
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ClassifierConfig points at the toxicity classification endpoint
type ClassifierConfig struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"` // seconds
}

// NewsConfig selects the news cross-reference search
type NewsConfig struct {
	Provider string       `yaml:"provider" mapstructure:"provider"` // newsapi, rss, "" to disable
	APIKey   string       `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string       `yaml:"base_url" mapstructure:"base_url"`
	PageSize int          `yaml:"page_size" mapstructure:"page_size"`
	Language string       `yaml:"language" mapstructure:"language"`
	Feeds    []FeedConfig `yaml:"feeds" mapstructure:"feeds"`
}

// FeedConfig is an RSS/Atom feed used by the rss news provider. Source names
// the outlet its articles are attributed to; empty uses the feed title.
type FeedConfig struct {
	URL    string `yaml:"url" mapstructure:"url"`
	Source string `yaml:"source,omitempty" mapstructure:"source"`
}

// FactCheckConfig configures the fact-check claim search
type FactCheckConfig struct {
	APIKey  string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CacheConfig controls adapter response caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig throttles outbound calls per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"` // memory, postgres, mongo
	DSN      string `yaml:"dsn,omitempty" mapstructure:"dsn"`
	Database string `yaml:"database,omitempty" mapstructure:"database"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// ReportsConfig configures periodic report generation
type ReportsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Schedule string `yaml:"schedule" mapstructure:"schedule"` // cron expression
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// HeuristicConfig holds the fixed word and phrase lists used by text heuristics
type HeuristicConfig struct {
	EmotionalWords   []string `yaml:"emotional_words" mapstructure:"emotional_words"`
	ClickbaitPhrases []string `yaml:"clickbait_phrases" mapstructure:"clickbait_phrases"`
	AbsolutistWords  []string `yaml:"absolutist_words" mapstructure:"absolutist_words"`
	StopWords        []string `yaml:"stop_words" mapstructure:"stop_words"`
}

// ReputationConfig seeds the publisher reputation table
type ReputationConfig struct {
	Publishers            []PublisherProfile `yaml:"publishers" mapstructure:"publishers"`
	SourceScores          map[string]int     `yaml:"source_scores" mapstructure:"source_scores"`
	DefaultSourceScore    int                `yaml:"default_source_score" mapstructure:"default_source_score"`
	ReputableOutlets      []string           `yaml:"reputable_outlets" mapstructure:"reputable_outlets"`
	CrossReferenceDomains []string           `yaml:"cross_reference_domains" mapstructure:"cross_reference_domains"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "factlens/0.1 (+https://github.com/ppiankov/factlens)",
			MaxBodyBytes:  2_000_000,
			MaxRetries:    3,
			RespectRobots: true,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 1500,
		},
		Classifier: ClassifierConfig{
			Endpoint: "https://api-inference.huggingface.co/models/unitary/toxic-bert",
			Timeout:  15,
		},
		News: NewsConfig{
			Provider: "newsapi",
			BaseURL:  "https://newsapi.org",
			PageSize: 10,
			Language: "en",
			Feeds: []FeedConfig{
				{URL: "https://feeds.bbci.co.uk/news/world/rss.xml", Source: "BBC"},
				{URL: "https://feeds.npr.org/1001/rss.xml", Source: "NPR"},
			},
		},
		FactCheck: FactCheckConfig{
			BaseURL: "https://factchecktools.googleapis.com",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Store: StoreConfig{
			Driver:   "memory",
			Database: "factlens",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Reports: ReportsConfig{
			Enabled:  false,
			Schedule: "0 6 * * *",
		},
		Log: LogConfig{
			Level: "info",
		},
		Heuristic:  DefaultHeuristicConfig(),
		Reputation: DefaultReputationConfig(),
	}
}

// DefaultHeuristicConfig returns the built-in word lists
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		EmotionalWords: []string{
			"shocking", "unbelievable", "amazing", "terrible", "awful",
			"incredible", "devastating", "outrageous", "scandal", "explosive",
		},
		ClickbaitPhrases: []string{
			"you won't believe", "this will shock you", "doctors hate",
			"one simple trick", "what happens next", "the truth they don't want",
			"secret that", "they don't want you to know",
		},
		AbsolutistWords: []string{
			"always", "never", "all", "everyone", "nobody", "everything",
			"nothing", "totally", "completely", "absolutely", "definitely", "certainly",
		},
		StopWords: []string{
			"that", "with", "have", "this", "will", "they", "from", "been", "said",
			"each", "which", "their", "time", "would", "about", "there", "could",
			"other", "after", "first", "well", "just", "also", "when", "where",
			"what", "more", "some", "very", "into", "such", "even", "most", "made",
			"only", "over", "like", "before", "through", "these", "should", "being",
			"many", "much", "than", "were", "them",
		},
	}
}

// DefaultReputationConfig returns the built-in publisher seed data
func DefaultReputationConfig() ReputationConfig {
	return ReputationConfig{
		Publishers: []PublisherProfile{
			{Domain: "reuters.com", Name: "Reuters", CredibilityScore: 92, ReputationScore: 95, Bias: BiasCenter, FactualReporting: FactualVeryHigh, MediaBiasRating: "Least Biased", FoundedYear: 1851, Headquarters: "London, UK", PrimaryTopics: []string{"Breaking News", "Business", "World News"}},
			{Domain: "ap.org", Name: "Associated Press", CredibilityScore: 90, ReputationScore: 94, Bias: BiasCenter, FactualReporting: FactualVeryHigh, MediaBiasRating: "Least Biased", FoundedYear: 1846, Headquarters: "New York, USA", PrimaryTopics: []string{"Breaking News", "Politics", "Sports"}},
			{Domain: "bbc.com", Name: "BBC News", CredibilityScore: 85, ReputationScore: 88, Bias: BiasCenter, FactualReporting: FactualHigh, MediaBiasRating: "Least Biased", FoundedYear: 1922, Headquarters: "London, UK", PrimaryTopics: []string{"World News", "UK News", "Technology"}},
			{Domain: "nytimes.com", Name: "The New York Times", CredibilityScore: 82, ReputationScore: 85, Bias: BiasLeanLeft, FactualReporting: FactualHigh, MediaBiasRating: "Left-Center", FoundedYear: 1851, Headquarters: "New York, USA", PrimaryTopics: []string{"Politics", "Business", "Culture"}},
			{Domain: "washingtonpost.com", Name: "The Washington Post", CredibilityScore: 80, ReputationScore: 83, Bias: BiasLeanLeft, FactualReporting: FactualHigh, MediaBiasRating: "Left-Center", FoundedYear: 1877, Headquarters: "Washington D.C., USA", PrimaryTopics: []string{"Politics", "National News", "Investigations"}},
			{Domain: "wsj.com", Name: "The Wall Street Journal", CredibilityScore: 83, ReputationScore: 86, Bias: BiasLeanRight, FactualReporting: FactualHigh, MediaBiasRating: "Right-Center", FoundedYear: 1889, Headquarters: "New York, USA", PrimaryTopics: []string{"Business", "Finance", "Economics"}},
			{Domain: "cnn.com", Name: "CNN", CredibilityScore: 72, ReputationScore: 70, Bias: BiasLeanLeft, FactualReporting: FactualMixed, MediaBiasRating: "Left-Center", FoundedYear: 1980, Headquarters: "Atlanta, USA", PrimaryTopics: []string{"Breaking News", "Politics", "International"}},
			{Domain: "foxnews.com", Name: "Fox News", CredibilityScore: 65, ReputationScore: 68, Bias: BiasLeanRight, FactualReporting: FactualMixed, MediaBiasRating: "Right", FoundedYear: 1996, Headquarters: "New York, USA", PrimaryTopics: []string{"Politics", "Opinion", "Breaking News"}},
			{Domain: "npr.org", Name: "NPR", CredibilityScore: 82, ReputationScore: 77, Bias: BiasLeanLeft, FactualReporting: FactualHigh},
			{Domain: "theguardian.com", Name: "The Guardian", CredibilityScore: 75, ReputationScore: 70, Bias: BiasLeanLeft, FactualReporting: FactualHigh},
		},
		SourceScores: map[string]int{
			"reuters.com":        95,
			"ap.org":             95,
			"bbc.com":            90,
			"npr.org":            88,
			"cnn.com":            75,
			"nytimes.com":        85,
			"washingtonpost.com": 82,
			"theguardian.com":    80,
			"bloomberg.com":      88,
			"wsj.com":            85,
			"abc.com":            75,
			"cbsnews.com":        75,
			"nbcnews.com":        75,
			"foxnews.com":        60,
			"breitbart.com":      35,
			"infowars.com":       15,
			"dailymail.co.uk":    45,
		},
		DefaultSourceScore:    50,
		ReputableOutlets:      []string{"Reuters", "Associated Press", "BBC", "NPR", "Bloomberg"},
		CrossReferenceDomains: []string{"reuters.com", "ap.org", "bbc.com", "npr.org"},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "factlens")
	}
	return filepath.Join(dir, "factlens")
}
