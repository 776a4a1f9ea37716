package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/factlens/internal/llm"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/score"
	"github.com/ppiankov/factlens/internal/signals"
	"github.com/ppiankov/factlens/internal/store"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []model.TriggeredAlert
}

func (n *recordingNotifier) Publish(alerts []model.TriggeredAlert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alerts...)
}

type stubProvider struct {
	result *model.ModelResult
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Analyze(ctx context.Context, req llm.AnalyzeRequest) (*model.ModelResult, error) {
	return p.result, nil
}

func (p *stubProvider) IsAvailable(ctx context.Context) bool { return true }

// brokenStore fails every analysis write
type brokenStore struct {
	*store.MemoryStore
}

func (brokenStore) SaveAnalysis(ctx context.Context, r *model.AnalysisRecord) error {
	return &model.PersistenceError{Op: "save analysis", Err: errors.New("connection refused")}
}

const electionText = "The election results were announced today after officials completed the count."

func TestAnalyzer_TextSubmission(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	notifier := &recordingNotifier{}

	rule := &model.AlertRule{UserID: "u1", Keywords: []string{"election", "vote"}, AlertType: model.AlertAll, IsActive: true}
	if err := s.CreateAlert(ctx, rule); err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}

	analyzer := NewAnalyzer(Deps{Store: s, Notifier: notifier})
	outcome, err := analyzer.Run(ctx, model.Submission{Content: electionText, UserID: "u1"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if outcome.Result.Strategy != score.StrategyHeuristicOnly {
		t.Errorf("Expected %s without adapters, got %s", score.StrategyHeuristicOnly, outcome.Result.Strategy)
	}
	if outcome.Result.ID == "" || outcome.Record.ID != outcome.Result.ID {
		t.Errorf("Expected record and result to share an ID, got %q / %q", outcome.Record.ID, outcome.Result.ID)
	}
	if outcome.Insights != nil {
		t.Error("Expected no source insights without a URL")
	}

	stored, err := s.GetAnalysis(ctx, outcome.Result.ID)
	if err != nil {
		t.Fatalf("Expected stored analysis, got %v", err)
	}
	if stored.UserID != "u1" {
		t.Errorf("Expected userID u1, got %q", stored.UserID)
	}

	if len(outcome.Triggered) != 1 {
		t.Fatalf("Expected 1 triggered alert, got %d", len(outcome.Triggered))
	}
	got := outcome.Triggered[0]
	if got.AnalysisID != outcome.Result.ID || got.AlertID != rule.ID {
		t.Errorf("Expected alert to reference analysis and rule, got %+v", got)
	}
	if len(got.MatchedKeywords) != 1 || got.MatchedKeywords[0] != "election" {
		t.Errorf("Expected matched keywords [election], got %v", got.MatchedKeywords)
	}

	saved, _ := s.ListTriggeredAlerts(ctx, "u1", true)
	if len(saved) != 1 {
		t.Errorf("Expected 1 stored triggered alert, got %d", len(saved))
	}
	if len(notifier.alerts) != 1 {
		t.Errorf("Expected 1 published alert, got %d", len(notifier.alerts))
	}
}

func TestAnalyzer_InvalidInput(t *testing.T) {
	tests := []struct {
		sub  model.Submission
		desc string
	}{
		{sub: model.Submission{}, desc: "Empty submission"},
		{sub: model.Submission{Content: "   short  "}, desc: "Content too short"},
		{sub: model.Submission{URL: "https://example.com/a"}, desc: "URL without fetcher"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			analyzer := NewAnalyzer(Deps{Store: store.NewMemoryStore()})
			outcome, err := analyzer.Run(context.Background(), tt.sub)

			var invalid *model.InvalidInputError
			if !errors.As(err, &invalid) {
				t.Errorf("Expected InvalidInputError, got %v", err)
			}
			if outcome != nil {
				t.Errorf("Expected nil outcome, got %+v", outcome)
			}
		})
	}
}

func TestAnalyzer_URLSubmission(t *testing.T) {
	body := strings.Repeat("Officials confirmed the audit findings in a public statement. ", 5)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprintf(w, `<html><head><meta property="og:title" content="Audit report"></head><body><script>var x=1;</script><p>%s</p></body></html>`, body)
	}))
	defer server.Close()

	analyzer := NewAnalyzer(Deps{
		Fetcher: NewFetcher(testHTTPConfig(false), nil, nil),
		Store:   store.NewMemoryStore(),
	})

	outcome, err := analyzer.Run(context.Background(), model.Submission{URL: server.URL + "/story"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if outcome.Page == nil || outcome.Page.Title != "Audit report" {
		t.Errorf("Expected page title 'Audit report', got %+v", outcome.Page)
	}
	if strings.Contains(outcome.Record.ContentExcerpt, "var x") {
		t.Error("Expected script content stripped from the excerpt")
	}
	if outcome.Record.URL != server.URL+"/story" {
		t.Errorf("Expected record URL %s, got %s", server.URL+"/story", outcome.Record.URL)
	}
	if outcome.Insights == nil || outcome.Record.SourceVerification == nil {
		t.Fatal("Expected source insights for a URL submission")
	}
	if outcome.Insights.Publisher.Known {
		t.Error("Expected an estimated publisher for the test host")
	}
}

func TestAnalyzer_PageTooShort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body>Too little text</body></html>")
	}))
	defer server.Close()

	analyzer := NewAnalyzer(Deps{Fetcher: NewFetcher(testHTTPConfig(false), nil, nil)})
	_, err := analyzer.Run(context.Background(), model.Submission{URL: server.URL})

	var invalid *model.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidInputError, got %v", err)
	}
}

func TestAnalyzer_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	analyzer := NewAnalyzer(Deps{Fetcher: NewFetcher(testHTTPConfig(false), nil, nil)})
	_, err := analyzer.Run(context.Background(), model.Submission{URL: server.URL})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 StatusError, got %v", err)
	}
}

func TestAnalyzer_PersistenceErrorKeepsResult(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	_ = mem.CreateAlert(ctx, &model.AlertRule{UserID: "u1", Keywords: []string{"election"}, AlertType: model.AlertAll, IsActive: true})

	analyzer := NewAnalyzer(Deps{Store: brokenStore{mem}})
	outcome, err := analyzer.Run(ctx, model.Submission{Content: electionText})

	var pe *model.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected PersistenceError, got %v", err)
	}
	if outcome == nil || outcome.Result == nil {
		t.Fatal("Expected the computed result alongside the persistence error")
	}
	if len(outcome.Triggered) != 1 {
		t.Errorf("Expected alert evaluation to complete independently, got %d alerts", len(outcome.Triggered))
	}

	result, err := analyzer.Analyze(ctx, model.Submission{Content: electionText})
	if result == nil || err == nil {
		t.Errorf("Expected result and error from Analyze, got %v / %v", result, err)
	}
}

func TestAnalyzer_ModelBacked(t *testing.T) {
	provider := &stubProvider{result: &model.ModelResult{
		CredibilityScore:  90,
		Summary:           "Consistent with official statements",
		KeywordExtraction: []string{"election", "count"},
	}}
	collector := signals.NewCollector(provider, nil, nil, nil, signals.Options{})

	analyzer := NewAnalyzer(Deps{Collector: collector})
	outcome, err := analyzer.Run(context.Background(), model.Submission{Content: electionText})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if outcome.Result.Strategy != score.StrategyModelBacked {
		t.Errorf("Expected %s, got %s", score.StrategyModelBacked, outcome.Result.Strategy)
	}
	if len(outcome.Keywords) != 2 || outcome.Keywords[0] != "election" {
		t.Errorf("Expected keywords from the model, got %v", outcome.Keywords)
	}
	if outcome.Triggered != nil {
		t.Errorf("Expected no alert evaluation without a store, got %v", outcome.Triggered)
	}
}
