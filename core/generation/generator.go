package generation

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

// Generator produces the final answer from a fused context.
type Generator struct {
	complete  llm.CompleteFunc
	tokenizer *Tokenizer
	maxTokens int
	timeout   time.Duration
	log       *slog.Logger
}

// NewGenerator creates a generator bounding the context to maxTokens.
func NewGenerator(complete llm.CompleteFunc, tokenizer *Tokenizer, maxTokens int, timeout time.Duration, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if tokenizer == nil {
		tokenizer = NewTokenizer(DefaultEncoding)
	}
	return &Generator{
		complete:  complete,
		tokenizer: tokenizer,
		maxTokens: maxTokens,
		timeout:   timeout,
		log:       logger,
	}
}

// Answer runs one completion over the augmented prompt.
func (g *Generator) Answer(ctx context.Context, query string, fused *model.FusedContext) (string, error) {
	if g.complete == nil {
		return "", helper.NewError("answer", fmt.Errorf("no language model configured"))
	}

	prompt := Augment(query, fused, g.maxTokens, g.tokenizer)
	g.log.Debug("Generating answer", "prompt_tokens", g.tokenizer.Count(prompt), "estimated", g.tokenizer.Estimating())

	answer, err := helper.WithTimeout(ctx, g.timeout, func(ctx context.Context) (string, error) {
		return g.complete(ctx, prompt)
	})
	if err != nil {
		return "", helper.NewError("answer", err)
	}

	return strings.TrimSpace(answer), nil
}
