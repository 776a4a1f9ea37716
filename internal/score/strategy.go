package score

import (
	"context"

	"github.com/ppiankov/factlens/internal/heuristic"
	"github.com/ppiankov/factlens/internal/model"
)

// Strategy names reported on every result
const (
	StrategyModelBacked   = "model_backed"
	StrategyHeuristicOnly = "heuristic_only"
)

// Input is everything gathered for one submission before aggregation.
// Nil adapter fields mean the adapter was disabled or failed.
type Input struct {
	Content    string
	URL        string
	Heuristic  heuristic.Analysis
	Model      *model.ModelResult
	News       *model.NewsResult
	FactChecks []model.FactCheckClaim
	Keywords   []string
}

// HasAdapterData reports whether any external adapter contributed data
func (in Input) HasAdapterData() bool {
	if in.Model != nil {
		return true
	}
	if in.News != nil && len(in.News.Articles) > 0 {
		return true
	}
	return len(in.FactChecks) > 0
}

// Strategy turns gathered signals into a scored result
type Strategy interface {
	Name() string
	Score(ctx context.Context, in Input) (model.AnalysisResult, error)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
