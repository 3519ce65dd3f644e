package analysis

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/crag/model"
)

const (
	// MinContextRunes is the combined chunk length below which local context counts as thin.
	MinContextRunes = 100

	heuristicEscalateScore = 4
	heuristicSufficeScore  = 7
)

// TimeSensitiveKeywords mark queries whose answer likely changes over time.
var TimeSensitiveKeywords = []string{
	"latest", "recent", "current", "today", "now", "new", "news",
	"update", "trend", "price", "stock", "weather",
	"2023", "2024", "2025", "2026",
	"this year", "this month",
}

// HeuristicStrategy decides from keywords and context length without any network call.
type HeuristicStrategy struct {
	keywords []string
	minRunes int
}

// NewHeuristicStrategy creates a heuristic strategy with the default keywords.
func NewHeuristicStrategy() *HeuristicStrategy {
	return &HeuristicStrategy{
		keywords: TimeSensitiveKeywords,
		minRunes: MinContextRunes,
	}
}

func (s *HeuristicStrategy) Name() string {
	return string(model.QualityStrategyHeuristic)
}

// Analyze is a pure function of query and chunks.
func (s *HeuristicStrategy) Analyze(ctx context.Context, query string, chunks []*model.Chunk) *model.QualityVerdict {
	keyword, timeSensitive := s.matchKeyword(query)
	total := totalRunes(chunks)
	thin := total < s.minRunes

	requiresWeb := timeSensitive || thin

	verdict := &model.QualityVerdict{
		RelevanceScore:    heuristicSufficeScore,
		IsSufficient:      !requiresWeb,
		RequiresWebSearch: requiresWeb,
		Strategy:          s.Name(),
	}

	switch {
	case timeSensitive && thin:
		verdict.Reasoning = "query mentions time sensitive term \"" + keyword + "\" and local context is short"
	case timeSensitive:
		verdict.Reasoning = "query mentions time sensitive term \"" + keyword + "\""
	case thin:
		verdict.Reasoning = "local context is short"
	default:
		verdict.Reasoning = "local context looks sufficient"
	}

	if requiresWeb {
		verdict.RelevanceScore = heuristicEscalateScore
		suggested := query
		verdict.SuggestedQuery = &suggested
	}

	return verdict
}

func (s *HeuristicStrategy) matchKeyword(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, keyword := range s.keywords {
		if strings.Contains(lower, keyword) {
			return keyword, true
		}
	}
	return "", false
}

func totalRunes(chunks []*model.Chunk) int {
	total := 0
	for _, chunk := range chunks {
		if chunk != nil {
			total += utf8.RuneCountInString(chunk.Content)
		}
	}
	return total
}
