package analysis

import (
	"context"
	"log/slog"

	"github.com/siherrmann/crag/core/llm"
	"github.com/siherrmann/crag/model"
)

// QualityStrategy judges whether retrieved chunks answer a query.
// Analyze never fails: implementations fall back to a safe default verdict.
type QualityStrategy interface {
	Name() string
	Analyze(ctx context.Context, query string, chunks []*model.Chunk) *model.QualityVerdict
}

// NewStrategy selects the strategy configured in config. The LLM strategy
// needs complete, a nil complete falls back to the heuristic strategy.
func NewStrategy(config *model.Config, complete llm.CompleteFunc, logger *slog.Logger) QualityStrategy {
	if logger == nil {
		logger = slog.Default()
	}

	switch config.QualityStrategy {
	case model.QualityStrategyLLM:
		if complete != nil {
			return NewLLMStrategy(complete, config.AnalysisTimeout, logger)
		}
		logger.Warn("No language model available, using heuristic quality strategy")
	}

	return NewHeuristicStrategy()
}
