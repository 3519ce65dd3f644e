package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/siherrmann/crag/model"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// CompleteFunc sends a single prompt to a language model and returns its text answer
type CompleteFunc func(ctx context.Context, prompt string) (string, error)

// DescribeImageFunc describes an image, including any text visible in it
type DescribeImageFunc func(ctx context.Context, mimeType string, data []byte) (string, error)

const describeImagePrompt = "Describe this image for a document search index. " +
	"Transcribe all visible text verbatim, then summarize charts, tables and diagrams in plain sentences."

// NewModel builds the chat model from the configuration.
func NewModel(config *model.Config) (llms.Model, error) {
	if config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("language model requires an api key")
	}

	opts := []openai.Option{
		openai.WithToken(config.OpenAIAPIKey),
		openai.WithModel(config.ChatModel),
	}
	if config.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.OpenAIBaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	return client, nil
}

// Completer wraps a model into a CompleteFunc. Options are applied to every call.
func Completer(m llms.Model, options ...llms.CallOption) CompleteFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		answer, err := llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
		if err != nil {
			return "", fmt.Errorf("completion failed: %w", err)
		}
		return answer, nil
	}
}

// ImageDescriber wraps a multimodal model into a DescribeImageFunc.
func ImageDescriber(m llms.Model) DescribeImageFunc {
	return func(ctx context.Context, mimeType string, data []byte) (string, error) {
		if len(data) == 0 {
			return "", fmt.Errorf("image is empty")
		}

		messages := []llms.MessageContent{
			{
				Role: llms.ChatMessageTypeHuman,
				Parts: []llms.ContentPart{
					llms.TextPart(describeImagePrompt),
					llms.BinaryPart(mimeType, data),
				},
			},
		}

		resp, err := m.GenerateContent(ctx, messages, llms.WithTemperature(0))
		if err != nil {
			return "", fmt.Errorf("image description failed: %w", err)
		}
		if resp == nil || len(resp.Choices) == 0 {
			return "", fmt.Errorf("image description returned no choices")
		}

		return strings.TrimSpace(resp.Choices[0].Content), nil
	}
}
