package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/crag/core/llm"
	"github.com/siherrmann/crag/helper"
	"github.com/siherrmann/crag/model"
)

// PreviewRunes is the number of leading runes of each chunk shown to the model.
const PreviewRunes = 200

const analysisPrompt = `You judge whether retrieved document excerpts are enough to answer a user question.

Question: %s

Retrieved excerpts:
%s

Answer with a single JSON object and nothing else, using exactly these fields:
{
  "relevanceScore": <number from 0 to 10>,
  "isSufficient": <true if the excerpts fully answer the question>,
  "requiresWebSearch": <true if current or external information is needed>,
  "reasoning": "<one short sentence>",
  "suggestedQuery": "<better web search query, or null>"
}`

// LLMStrategy asks a language model for a verdict.
type LLMStrategy struct {
	complete llm.CompleteFunc
	timeout  time.Duration
	log      *slog.Logger
}

// NewLLMStrategy creates a strategy calling complete with the given timeout per analysis.
func NewLLMStrategy(complete llm.CompleteFunc, timeout time.Duration, logger *slog.Logger) *LLMStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMStrategy{
		complete: complete,
		timeout:  timeout,
		log:      logger,
	}
}

func (s *LLMStrategy) Name() string {
	return string(model.QualityStrategyLLM)
}

// Analyze returns the parsed model verdict, or the safe default verdict on any failure.
func (s *LLMStrategy) Analyze(ctx context.Context, query string, chunks []*model.Chunk) *model.QualityVerdict {
	prompt := BuildPrompt(query, chunks)
	answer, err := helper.WithTimeout(ctx, s.timeout, func(ctx context.Context) (string, error) {
		return s.complete(ctx, prompt)
	})
	if err != nil {
		return s.degraded(fmt.Errorf("completion: %w", err))
	}

	verdict, err := parseVerdict(answer)
	if err != nil {
		return s.degraded(fmt.Errorf("parse: %w", err))
	}
	verdict.Strategy = s.Name()

	return verdict
}

func (s *LLMStrategy) degraded(err error) *model.QualityVerdict {
	s.log.Warn("AnalysisDegraded", "strategy", s.Name(), "error", err)
	return model.SafeDefaultVerdict(s.Name(), "analysis failed, trusting local retrieval: "+err.Error())
}

// BuildPrompt renders the analysis prompt with one numbered preview per chunk.
func BuildPrompt(query string, chunks []*model.Chunk) string {
	var excerpts strings.Builder
	n := 0
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		if n > 0 {
			excerpts.WriteString("\n")
		}
		n++
		fmt.Fprintf(&excerpts, "[%d] %s", n, preview(chunk.Content, PreviewRunes))
	}
	if n == 0 {
		excerpts.WriteString("(none)")
	}

	return fmt.Sprintf(analysisPrompt, query, excerpts.String())
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
