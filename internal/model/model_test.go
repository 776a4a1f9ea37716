package model

import (
	"errors"
	"testing"
)

func TestClassifyPercent(t *testing.T) {
	tests := []struct {
		desc  string
		score float64
		want  Classification
	}{
		{desc: "reliable boundary", score: 75, want: ClassReliable},
		{desc: "just below reliable", score: 74.9, want: ClassQuestionable},
		{desc: "questionable boundary", score: 45, want: ClassQuestionable},
		{desc: "unreliable", score: 44.9, want: ClassUnreliable},
		{desc: "zero", score: 0, want: ClassUnreliable},
		{desc: "max", score: 100, want: ClassReliable},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := ClassifyPercent(tt.score); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestValid(t *testing.T) {
	if !ClassQuestionable.Valid() || Classification("maybe").Valid() {
		t.Error("Expected only known classifications to be valid")
	}
	if !AlertSourceReliability.Valid() || AlertType("spam").Valid() {
		t.Error("Expected only known alert types to be valid")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		desc string
		in   string
		n    int
		want string
	}{
		{desc: "short", in: "abc", n: 5, want: "abc"},
		{desc: "exact", in: "abcde", n: 5, want: "abcde"},
		{desc: "ascii", in: "abcdef", n: 3, want: "abc"},
		{desc: "multibyte", in: "héllo wörld", n: 4, want: "héll"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")

	var err error = &PersistenceError{Op: "save analysis", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("Expected PersistenceError to unwrap to its cause")
	}
	if err.Error() != "persistence save analysis: connection refused" {
		t.Errorf("Expected formatted message, got %q", err.Error())
	}

	err = &AdapterUnavailableError{Adapter: "news", Err: cause}
	var unavailable *AdapterUnavailableError
	if !errors.As(err, &unavailable) || unavailable.Adapter != "news" {
		t.Errorf("Expected AdapterUnavailableError for news, got %v", err)
	}

	err = &PersistenceError{Op: "get analysis", Err: ErrNotFound}
	if !errors.Is(err, ErrNotFound) {
		t.Error("Expected ErrNotFound through PersistenceError")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.Driver != "memory" {
		t.Errorf("Expected memory store by default, got %s", cfg.Store.Driver)
	}
	if len(cfg.Heuristic.StopWords) == 0 || len(cfg.Heuristic.ClickbaitPhrases) == 0 {
		t.Error("Expected seeded word lists")
	}
	if len(cfg.Reputation.Publishers) == 0 || len(cfg.Reputation.SourceScores) == 0 {
		t.Error("Expected seeded reputation tables")
	}
}
