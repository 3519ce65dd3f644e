package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/siherrmann/crag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	answer   string
	err      error
	messages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.answer}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestNewModel(t *testing.T) {
	t.Run("Missing api key", func(t *testing.T) {
		config := model.DefaultConfig()
		config.OpenAIAPIKey = ""

		_, err := NewModel(&config)

		assert.Error(t, err)
	})

	t.Run("Valid configuration", func(t *testing.T) {
		config := model.DefaultConfig()
		config.OpenAIAPIKey = "test-key"
		config.OpenAIBaseURL = "http://localhost:1234/v1"

		m, err := NewModel(&config)

		require.NoError(t, err)
		assert.NotNil(t, m)
	})
}

func TestCompleter(t *testing.T) {
	t.Run("Returns the first choice", func(t *testing.T) {
		fake := &fakeModel{answer: "Section 2 covers retrieval."}

		answer, err := Completer(fake)(context.Background(), "What does section 2 cover?")

		require.NoError(t, err)
		assert.Equal(t, "Section 2 covers retrieval.", answer)
		require.Len(t, fake.messages, 1)
		assert.Equal(t, llms.ChatMessageTypeHuman, fake.messages[0].Role)
	})

	t.Run("Propagates model errors", func(t *testing.T) {
		fake := &fakeModel{err: errors.New("rate limited")}

		_, err := Completer(fake)(context.Background(), "prompt")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})
}

func TestImageDescriber(t *testing.T) {
	t.Run("Sends the image as binary part", func(t *testing.T) {
		fake := &fakeModel{answer: "  A scanned invoice totalling 42 EUR.  "}

		description, err := ImageDescriber(fake)(context.Background(), "image/png", []byte{0x89, 'P', 'N', 'G'})

		require.NoError(t, err)
		assert.Equal(t, "A scanned invoice totalling 42 EUR.", description)
		require.Len(t, fake.messages, 1)
		require.Len(t, fake.messages[0].Parts, 2)
		binary, ok := fake.messages[0].Parts[1].(llms.BinaryContent)
		require.True(t, ok, "Expected second part to be binary content")
		assert.Equal(t, "image/png", binary.MIMEType)
	})

	t.Run("Empty image", func(t *testing.T) {
		_, err := ImageDescriber(&fakeModel{})(context.Background(), "image/png", nil)
		assert.Error(t, err)
	})

	t.Run("Model error", func(t *testing.T) {
		_, err := ImageDescriber(&fakeModel{err: errors.New("no vision")})(context.Background(), "image/png", []byte{1})
		assert.Error(t, err)
	})
}
