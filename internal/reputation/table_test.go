package reputation

import (
	"testing"

	"github.com/ppiankov/factlens/internal/model"
)

func TestTable_LookupSeeds(t *testing.T) {
	table := NewTable(nil)

	tests := []struct {
		input       string
		credibility int
		reputation  int
		bias        string
		factual     string
		desc        string
	}{
		{input: "bbc.com", credibility: 85, reputation: 88, bias: model.BiasCenter, factual: model.FactualHigh, desc: "Exact seed"},
		{input: "www.reuters.com", credibility: 92, reputation: 95, bias: model.BiasCenter, factual: model.FactualVeryHigh, desc: "Strips www"},
		{input: "https://www.nytimes.com/2024/01/01/world/story.html", credibility: 82, reputation: 85, bias: model.BiasLeanLeft, factual: model.FactualHigh, desc: "Accepts URL"},
		{input: "edition.cnn.com", credibility: 72, reputation: 70, bias: model.BiasLeanLeft, factual: model.FactualMixed, desc: "Subdomain of seed"},
		{input: "FOXNEWS.COM:443", credibility: 65, reputation: 68, bias: model.BiasLeanRight, factual: model.FactualMixed, desc: "Case and port"},
		{input: "npr.org", credibility: 82, reputation: 77, bias: model.BiasLeanLeft, factual: model.FactualHigh, desc: "Secondary seed"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			p := table.Lookup(tt.input)
			if !p.Known {
				t.Errorf("Expected %s to be a known publisher", tt.input)
			}
			if p.CredibilityScore != tt.credibility {
				t.Errorf("Expected credibility %d, got %d", tt.credibility, p.CredibilityScore)
			}
			if p.ReputationScore != tt.reputation {
				t.Errorf("Expected reputation %d, got %d", tt.reputation, p.ReputationScore)
			}
			if p.Bias != tt.bias {
				t.Errorf("Expected bias %q, got %q", tt.bias, p.Bias)
			}
			if p.FactualReporting != tt.factual {
				t.Errorf("Expected factual reporting %q, got %q", tt.factual, p.FactualReporting)
			}
		})
	}
}

func TestTable_LookupUnknown(t *testing.T) {
	table := NewTable(nil)

	tests := []struct {
		input       string
		credibility int
		factual     string
		name        string
		desc        string
	}{
		{input: "random-blog.net", credibility: 55, factual: model.FactualMixed, name: "RANDOM BLOG", desc: "No special suffix"},
		{input: "cdc.gov", credibility: 85, factual: model.FactualHigh, name: "CDC", desc: "Government"},
		{input: "mit.edu", credibility: 85, factual: model.FactualHigh, name: "MIT", desc: "Education"},
		{input: "wikipedia.org", credibility: 75, factual: model.FactualMixed, name: "WIKIPEDIA", desc: "Organization"},
		{input: "daily_news.co", credibility: 65, factual: model.FactualMixed, name: "DAILY NEWS", desc: "News keyword"},
		{input: "socialmedia.io", credibility: 65, factual: model.FactualMixed, name: "SOCIALMEDIA", desc: "Media keyword"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			p := table.Lookup(tt.input)
			if p.Known {
				t.Errorf("Expected %s to be estimated", tt.input)
			}
			if p.CredibilityScore != tt.credibility {
				t.Errorf("Expected credibility %d, got %d", tt.credibility, p.CredibilityScore)
			}
			if p.ReputationScore != tt.credibility-5 {
				t.Errorf("Expected reputation %d, got %d", tt.credibility-5, p.ReputationScore)
			}
			if p.Bias != model.BiasMixed {
				t.Errorf("Expected bias Mixed, got %q", p.Bias)
			}
			if p.FactualReporting != tt.factual {
				t.Errorf("Expected factual reporting %q, got %q", tt.factual, p.FactualReporting)
			}
			if p.Name != tt.name {
				t.Errorf("Expected name %q, got %q", tt.name, p.Name)
			}
		})
	}
}

func TestTable_LookupReturnsCopies(t *testing.T) {
	table := NewTable(nil)

	first := table.Lookup("reuters.com")
	first.PrimaryTopics[0] = "mutated"
	first.CredibilityScore = 1

	second := table.Lookup("reuters.com")
	if second.PrimaryTopics[0] != "Breaking News" {
		t.Errorf("Expected seed topics to be unchanged, got %v", second.PrimaryTopics)
	}
	if second.CredibilityScore != 92 {
		t.Errorf("Expected seed credibility to be unchanged, got %d", second.CredibilityScore)
	}
}

func TestTable_CustomSeeds(t *testing.T) {
	config := &model.ReputationConfig{
		Publishers: []model.PublisherProfile{
			{Domain: "WWW.Example-Times.com", Name: "Example Times", CredibilityScore: 70, ReputationScore: 72, Bias: model.BiasCenter, FactualReporting: model.FactualHigh},
		},
		SourceScores:       map[string]int{"example-times.com": 66},
		DefaultSourceScore: 40,
	}

	table := NewTable(config)

	if p := table.Lookup("example-times.com"); !p.Known || p.Name != "Example Times" {
		t.Errorf("Expected custom seed to be found, got %+v", p)
	}
	if p := table.Lookup("bbc.com"); p.Known {
		t.Error("Expected built-in seeds to be absent when custom config is supplied")
	}
	if got := table.SourceScore("https://example-times.com/a"); got != 66 {
		t.Errorf("Expected source score 66, got %d", got)
	}
	if got := table.SourceScore("unknown.example"); got != 40 {
		t.Errorf("Expected default source score 40, got %d", got)
	}
}

func TestTable_SourceScore(t *testing.T) {
	table := NewTable(nil)

	tests := []struct {
		input    string
		expected int
	}{
		{"bbc.com", 90},
		{"https://www.reuters.com/world", 95},
		{"infowars.com", 15},
		{"dailymail.co.uk", 45},
		{"someblog.example", 50},
	}

	for _, tt := range tests {
		if got := table.SourceScore(tt.input); got != tt.expected {
			t.Errorf("Expected source score %d for %s, got %d", tt.expected, tt.input, got)
		}
	}
}

func TestTable_IsReputableOutlet(t *testing.T) {
	table := NewTable(nil)

	for _, name := range []string{"Reuters", "Associated Press", "BBC", "NPR", "Bloomberg"} {
		if !table.IsReputableOutlet(name) {
			t.Errorf("Expected %s to be reputable", name)
		}
	}
	for _, name := range []string{"reuters", "BBC News", "Daily Mail", ""} {
		if table.IsReputableOutlet(name) {
			t.Errorf("Expected %q not to be reputable", name)
		}
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"bbc.com", "bbc.com"},
		{"  WWW.BBC.COM  ", "bbc.com"},
		{"https://www.bbc.com:8443/news?x=1", "bbc.com"},
		{"bbc.com/news/world", "bbc.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeDomain(tt.input); got != tt.expected {
			t.Errorf("Expected %q for %q, got %q", tt.expected, tt.input, got)
		}
	}
}

func TestTable_LongestSeedWins(t *testing.T) {
	table := NewTable(&model.ReputationConfig{
		Publishers: []model.PublisherProfile{
			{Domain: "co.uk", Name: "Generic UK", CredibilityScore: 50},
			{Domain: "bbc.co.uk", Name: "BBC", CredibilityScore: 85},
			{Domain: "news.bbc.co.uk", Name: "BBC News", CredibilityScore: 88},
		},
		SourceScores:          map[string]int{"co.uk": 50, "bbc.co.uk": 90},
		CrossReferenceDomains: []string{"bbc.co.uk"},
		DefaultSourceScore:    30,
	})

	tests := []struct {
		desc      string
		input     string
		name      string
		source    int
		crossRefs bool
	}{
		{desc: "deep subdomain", input: "https://live.news.bbc.co.uk/x", name: "BBC News", source: 90, crossRefs: true},
		{desc: "subdomain of middle seed", input: "sport.bbc.co.uk", name: "BBC", source: 90, crossRefs: true},
		{desc: "exact seed", input: "bbc.co.uk", name: "BBC", source: 90, crossRefs: true},
		{desc: "shortest seed only", input: "dailymail.co.uk", name: "Generic UK", source: 50, crossRefs: false},
		{desc: "label boundary", input: "notbbc.co.uk", name: "Generic UK", source: 50, crossRefs: false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			// Repeat to catch map iteration order dependence
			for i := 0; i < 50; i++ {
				if p := table.Lookup(tt.input); p.Name != tt.name {
					t.Fatalf("Expected %s, got %s", tt.name, p.Name)
				}
				if got := table.SourceScore(tt.input); got != tt.source {
					t.Fatalf("Expected source score %d, got %d", tt.source, got)
				}
				if got := table.IsCrossReferenceDomain(tt.input); got != tt.crossRefs {
					t.Fatalf("Expected cross-reference %v, got %v", tt.crossRefs, got)
				}
			}
		})
	}
}
