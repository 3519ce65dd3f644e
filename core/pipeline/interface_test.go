package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/siherrmann/crag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock EmbedFunc for testing
func mockEmbedFunc(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("empty text")
	}
	return []float32{float32(len(text)), 0.2, 0.3}, nil
}

// Mock EmbedFunc that returns an error
func mockEmbedFuncError(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding error")
}

func mockDescribeFunc(ctx context.Context, mimeType string, data []byte) (string, error) {
	return "A bar chart of retrieval latency (" + mimeType + ")", nil
}

func writeFile(t *testing.T, name string, data []byte) string {
	filePath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filePath, data, 0600))
	return filePath
}

// Minimal PNG header, enough for content sniffing
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline(SentenceChunker(2), mockEmbedFunc)

	require.NotNil(t, p, "Expected NewPipeline to return a non-nil instance")
	assert.NotNil(t, p.Chunker)
	assert.NotNil(t, p.Embedder)
	assert.Nil(t, p.Describer, "Expected no describer by default")
}

func TestPipelineProcessText(t *testing.T) {
	t.Run("Process text successfully", func(t *testing.T) {
		p := NewPipeline(SentenceChunker(1), mockEmbedFunc)
		page := 3

		chunks, err := p.ProcessText(context.Background(), "One. Two.", &page, 4)

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "One.", chunks[0].Content)
		assert.Equal(t, model.ContentTypeText, chunks[0].ContentType)
		assert.Equal(t, 4, *chunks[0].ChunkIndex)
		assert.Equal(t, 5, *chunks[1].ChunkIndex)
		assert.Equal(t, 3, *chunks[1].PageNumber)
		assert.Len(t, chunks[0].Embedding, 3)
	})

	t.Run("Embedder error", func(t *testing.T) {
		p := NewPipeline(SentenceChunker(1), mockEmbedFuncError)

		_, err := p.ProcessText(context.Background(), "One.", nil, 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding error")
	})

	t.Run("Embed timeout", func(t *testing.T) {
		p := NewPipeline(SentenceChunker(1), func(ctx context.Context, text string) ([]float32, error) {
			time.Sleep(200 * time.Millisecond)
			return []float32{1}, nil
		})
		p.EmbedTimeout = 10 * time.Millisecond

		_, err := p.ProcessText(context.Background(), "Slow.", nil, 0)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Missing chunker", func(t *testing.T) {
		p := NewPipeline(nil, mockEmbedFunc)

		_, err := p.ProcessText(context.Background(), "One.", nil, 0)

		assert.Error(t, err)
	})
}

func TestPipelineProcessFile(t *testing.T) {
	ctx := context.Background()

	t.Run("Text file", func(t *testing.T) {
		filePath := writeFile(t, "notes.txt", []byte("Section 2 covers retrieval. Section 3 covers fusion."))
		p := NewPipeline(SentenceChunker(1), mockEmbedFunc)

		doc, chunks, err := p.ProcessFile(ctx, filePath)

		require.NoError(t, err)
		assert.Equal(t, "notes", doc.Title)
		assert.Equal(t, "Section 2 covers retrieval. Section 3 covers fusion.", doc.Content)
		assert.Contains(t, doc.Metadata["mime_type"], "text/plain")
		require.Len(t, chunks, 2)
		assert.Nil(t, chunks[0].PageNumber)
	})

	t.Run("Image without describer is rejected", func(t *testing.T) {
		filePath := writeFile(t, "chart.png", pngBytes)
		p := NewPipeline(SentenceChunker(1), mockEmbedFunc)

		_, _, err := p.ProcessFile(ctx, filePath)

		assert.ErrorIs(t, err, ErrUnsupportedContent)
	})

	t.Run("Image with describer", func(t *testing.T) {
		filePath := writeFile(t, "chart.png", pngBytes)
		p := NewPipeline(SentenceChunker(1), mockEmbedFunc)
		p.SetDescriber(mockDescribeFunc)

		doc, chunks, err := p.ProcessFile(ctx, filePath)

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, model.ContentTypeImage, chunks[0].ContentType)
		assert.Equal(t, "A bar chart of retrieval latency (image/png)", chunks[0].Content)
		assert.Equal(t, chunks[0].Content, doc.Content)
	})

	t.Run("Broken pdf", func(t *testing.T) {
		filePath := writeFile(t, "broken.pdf", []byte("%PDF-1.4\nnot really a pdf"))
		p := NewPipeline(SentenceChunker(1), mockEmbedFunc)

		_, _, err := p.ProcessFile(ctx, filePath)

		assert.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		p := NewPipeline(SentenceChunker(1), mockEmbedFunc)

		_, _, err := p.ProcessFile(ctx, "/non/existent/file.txt")

		assert.Error(t, err)
	})
}
