package score

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/classifier"
	"github.com/ppiankov/factlens/internal/heuristic"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/reputation"
)

// Aggregator chooses a strategy for each submission and produces the final result
type Aggregator struct {
	modelBacked   Strategy
	heuristicOnly Strategy
	logger        *zap.Logger
	now           func() time.Time
}

// NewAggregator creates a new aggregator. The classifier may be nil.
func NewAggregator(table *reputation.Table, c classifier.Classifier, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		modelBacked:   NewModelBacked(table),
		heuristicOnly: NewHeuristicOnly(c),
		logger:        logger,
		now:           time.Now,
	}
}

// Aggregate scores the gathered input. ModelBacked is used when any adapter
// returned data; otherwise, or when it fails, HeuristicOnly. Content shorter
// than model.MinContentLength fails with *model.InvalidInputError.
func (a *Aggregator) Aggregate(ctx context.Context, in Input) (model.AnalysisResult, error) {
	if err := heuristic.ValidateContent(in.Content); err != nil {
		return model.AnalysisResult{}, err
	}

	var (
		result model.AnalysisResult
		err    error
	)

	if in.HasAdapterData() {
		result, err = a.modelBacked.Score(ctx, in)
		if err != nil {
			a.logger.Warn("model-backed scoring failed, falling back to heuristics",
				zap.String("strategy", a.modelBacked.Name()),
				zap.Error(err))
		}
	}

	if !in.HasAdapterData() || err != nil {
		// HeuristicOnly handles its own failures and never returns an error
		result, _ = a.heuristicOnly.Score(ctx, in)
	}

	result.URL = in.URL
	result.CreatedAt = a.now().UTC()

	a.logger.Debug("aggregated result",
		zap.String("strategy", result.Strategy),
		zap.Float64("score", result.Score),
		zap.Float64("confidence", result.Confidence),
		zap.String("classification", string(result.Classification)))

	return result, nil
}
