package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorAnswer(t *testing.T) {
	ctx := context.Background()
	fused := fusedOf("Section 2 covers retrieval.", "")

	t.Run("Returns trimmed answer", func(t *testing.T) {
		var gotPrompt string
		complete := func(ctx context.Context, prompt string) (string, error) {
			gotPrompt = prompt
			return "  Section 2 covers retrieval.\n", nil
		}
		generator := NewGenerator(complete, &Tokenizer{}, 1000, time.Second, nil)

		answer, err := generator.Answer(ctx, "What does section 2 cover?", fused)

		require.NoError(t, err)
		assert.Equal(t, "Section 2 covers retrieval.", answer)
		assert.Contains(t, gotPrompt, fused.Combined)
	})

	t.Run("Model error", func(t *testing.T) {
		complete := func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("context length exceeded")
		}
		generator := NewGenerator(complete, &Tokenizer{}, 1000, time.Second, nil)

		_, err := generator.Answer(ctx, "query", fused)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "context length exceeded")
	})

	t.Run("Timeout", func(t *testing.T) {
		complete := func(ctx context.Context, prompt string) (string, error) {
			time.Sleep(300 * time.Millisecond)
			return "late", nil
		}
		generator := NewGenerator(complete, &Tokenizer{}, 1000, 10*time.Millisecond, nil)

		_, err := generator.Answer(ctx, "query", fused)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("No model", func(t *testing.T) {
		generator := NewGenerator(nil, &Tokenizer{}, 1000, time.Second, nil)

		_, err := generator.Answer(ctx, "query", fused)

		assert.Error(t, err)
	})
}
