package llm

import (
	"strings"
	"testing"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		input   string
		score   float64
		wantErr bool
		desc    string
	}{
		{input: validAnswer, score: 72, desc: "Plain JSON"},
		{input: "```json\n" + validAnswer + "\n```", score: 72, desc: "Fenced JSON"},
		{input: `{"credibilityScore": 140}`, score: 100, desc: "Clamped high"},
		{input: `{"credibilityScore": -5}`, score: 0, desc: "Clamped low"},
		{input: `{"credibilityScore": 0}`, score: 0, desc: "Zero is a valid score"},
		{input: ``, wantErr: true, desc: "Empty"},
		{input: `{"summary": "missing"}`, wantErr: true, desc: "Missing score"},
		{input: `Looks fine to me`, wantErr: true, desc: "Prose"},
		{input: `{"credibilityScore": "high"}`, wantErr: true, desc: "Wrong type"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result, err := ParseResult(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResult failed: %v", err)
			}
			if result.CredibilityScore != tt.score {
				t.Errorf("Expected score %f, got %f", tt.score, result.CredibilityScore)
			}
			if result.KeyFindings == nil || result.RedFlags == nil || result.VerifiedFacts == nil {
				t.Error("Expected list fields to be non-nil")
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("The council approved the budget.")

	for _, want := range []string{
		"A credibility assessment (0-100 scale)",
		"Overall summary of reliability",
		`"The council approved the budget."`,
		`"keywordExtraction": string[]`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		config  Config
		name    string
		wantNil bool
		wantErr bool
		desc    string
	}{
		{config: Config{}, wantNil: true, desc: "Disabled"},
		{config: Config{Provider: "OpenAI", APIKey: "k"}, name: "openai", desc: "OpenAI case-insensitive"},
		{config: Config{Provider: "claude", APIKey: "k"}, name: "anthropic", desc: "Claude alias"},
		{config: Config{Provider: "ollama", Model: "llama3.1"}, name: "ollama", desc: "Ollama"},
		{config: Config{Provider: "openai"}, wantErr: true, desc: "Missing key"},
		{config: Config{Provider: "gemini"}, wantErr: true, desc: "Unknown provider"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			if tt.wantNil {
				if provider != nil {
					t.Errorf("Expected nil provider, got %T", provider)
				}
				return
			}
			if provider.Name() != tt.name {
				t.Errorf("Expected provider %s, got %s", tt.name, provider.Name())
			}
		})
	}
}
