package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
)

// Provider defines the interface for language-model analyzers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Analyze asks the model for a credibility assessment of the content
	Analyze(ctx context.Context, req AnalyzeRequest) (*model.ModelResult, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// AnalyzeRequest contains the input for model analysis
type AnalyzeRequest struct {
	// Content is the text being assessed
	Content string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string

	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 1500,
	}
}

// SystemPrompt frames the model as a fact-checker
const SystemPrompt = "You are an expert fact-checker and misinformation analyst. Analyze content objectively and provide detailed assessments."

// maxPromptContent bounds the content embedded in the prompt
const maxPromptContent = 8000

// BuildPrompt constructs the analysis prompt with the required JSON structure
func BuildPrompt(content string) string {
	return fmt.Sprintf(`Analyze the following content for factual accuracy, credibility, and potential misinformation. Provide:
1. A credibility assessment (0-100 scale)
2. Key claims that need verification
3. Red flags or warning signs
4. Verified factual elements
5. Overall summary of reliability

Content to analyze:
%q

Respond in JSON format with this structure:
{
  "credibilityScore": number,
  "keyFindings": string[],
  "redFlags": string[],
  "verifiedFacts": string[],
  "summary": string,
  "keywordExtraction": string[]
}`, model.Truncate(content, maxPromptContent))
}

// ParseResult decodes the model's JSON answer. Code fences around the JSON are
// tolerated; anything else that is not the expected object is an error.
func ParseResult(text string) (*model.ModelResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var raw struct {
		CredibilityScore  *float64 `json:"credibilityScore"`
		KeyFindings       []string `json:"keyFindings"`
		RedFlags          []string `json:"redFlags"`
		VerifiedFacts     []string `json:"verifiedFacts"`
		Summary           string   `json:"summary"`
		KeywordExtraction []string `json:"keywordExtraction"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal model response: %w", err)
	}
	if raw.CredibilityScore == nil {
		return nil, fmt.Errorf("model response missing credibilityScore")
	}

	score := *raw.CredibilityScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &model.ModelResult{
		CredibilityScore:  score,
		KeyFindings:       nonNil(raw.KeyFindings),
		RedFlags:          nonNil(raw.RedFlags),
		VerifiedFacts:     nonNil(raw.VerifiedFacts),
		Summary:           raw.Summary,
		KeywordExtraction: raw.KeywordExtraction,
	}, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func maxTokens(req AnalyzeRequest, config Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if config.MaxTokens > 0 {
		return config.MaxTokens
	}
	return 1500
}
