package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/siherrmann/crag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticCompletion(answer string, err error) func(ctx context.Context, prompt string) (string, error) {
	return func(ctx context.Context, prompt string) (string, error) {
		return answer, err
	}
}

func assertSafeDefault(t *testing.T, verdict *model.QualityVerdict) {
	t.Helper()
	require.NotNil(t, verdict)
	assert.Equal(t, float64(5), verdict.RelevanceScore)
	assert.True(t, verdict.IsSufficient)
	assert.False(t, verdict.RequiresWebSearch)
	assert.True(t, verdict.Degraded)
	assert.Equal(t, "llm", verdict.Strategy)
}

func TestLLMStrategyAnalyze(t *testing.T) {
	ctx := context.Background()
	chunks := chunksOf(longChunk)

	t.Run("Parsed verdict", func(t *testing.T) {
		strategy := NewLLMStrategy(staticCompletion("```json\n{\"relevanceScore\": 2, \"isSufficient\": false, \"requiresWebSearch\": true, \"suggestedQuery\": \"retrieval 2025\"}\n```", nil), time.Second, nil)

		verdict := strategy.Analyze(ctx, "How does retrieval work?", chunks)

		assert.Equal(t, float64(2), verdict.RelevanceScore)
		assert.True(t, verdict.RequiresWebSearch)
		assert.False(t, verdict.Degraded)
		assert.Equal(t, "retrieval 2025", verdict.SearchQuery("How does retrieval work?"))
	})

	t.Run("Unparseable answer gives safe default", func(t *testing.T) {
		strategy := NewLLMStrategy(staticCompletion("I cannot help", nil), time.Second, nil)

		assertSafeDefault(t, strategy.Analyze(ctx, "How does retrieval work?", chunks))
	})

	t.Run("Completion error gives safe default", func(t *testing.T) {
		strategy := NewLLMStrategy(staticCompletion("", errors.New("503 service unavailable")), time.Second, nil)

		verdict := strategy.Analyze(ctx, "How does retrieval work?", chunks)

		assertSafeDefault(t, verdict)
		assert.Contains(t, verdict.Reasoning, "503")
	})

	t.Run("Timeout gives safe default", func(t *testing.T) {
		slow := func(ctx context.Context, prompt string) (string, error) {
			time.Sleep(500 * time.Millisecond)
			return `{"relevanceScore": 9, "isSufficient": true, "requiresWebSearch": false}`, nil
		}
		strategy := NewLLMStrategy(slow, 20*time.Millisecond, nil)

		start := time.Now()
		verdict := strategy.Analyze(ctx, "How does retrieval work?", chunks)

		assertSafeDefault(t, verdict)
		assert.Less(t, time.Since(start), 400*time.Millisecond)
	})

	t.Run("Nil chunk does not panic", func(t *testing.T) {
		strategy := NewLLMStrategy(staticCompletion(`{"relevanceScore": 3, "isSufficient": false, "requiresWebSearch": true}`, nil), time.Second, nil)

		var verdict *model.QualityVerdict
		assert.NotPanics(t, func() {
			verdict = strategy.Analyze(ctx, "How does retrieval work?", []*model.Chunk{nil, chunks[0]})
		})
		require.NotNil(t, verdict)
		assert.Equal(t, float64(3), verdict.RelevanceScore)
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Run("Previews are truncated to 200 runes", func(t *testing.T) {
		long := strings.Repeat("é", 250)

		prompt := BuildPrompt("What is covered?", chunksOf(long, "short chunk"))

		assert.Contains(t, prompt, "Question: What is covered?")
		assert.Contains(t, prompt, "[1] "+strings.Repeat("é", 200)+"...")
		assert.NotContains(t, prompt, strings.Repeat("é", 201))
		assert.Contains(t, prompt, "[2] short chunk")
	})

	t.Run("No chunks", func(t *testing.T) {
		prompt := BuildPrompt("What is covered?", nil)

		assert.Contains(t, prompt, "(none)")
	})

	t.Run("Nil chunks are skipped", func(t *testing.T) {
		prompt := BuildPrompt("What is covered?", []*model.Chunk{nil, {Content: "kept chunk"}, nil})

		assert.Contains(t, prompt, "[1] kept chunk")
		assert.NotContains(t, prompt, "[2]")

		assert.Contains(t, BuildPrompt("What is covered?", []*model.Chunk{nil}), "(none)")
	})
}
