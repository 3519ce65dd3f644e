package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceChunker(t *testing.T) {
	t.Run("Groups sentences", func(t *testing.T) {
		chunker := SentenceChunker(2)
		text := "This is sentence one. This is sentence two. This is sentence three."

		chunks, err := chunker(text)

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "This is sentence one. This is sentence two.", chunks[0].Content)
		assert.Equal(t, "This is sentence three.", chunks[1].Content)
		assert.Equal(t, 2, chunks[0].Metadata["num_sentences"])
		assert.Equal(t, 1, chunks[1].Metadata["num_sentences"])
	})

	t.Run("Single sentence", func(t *testing.T) {
		chunks, err := SentenceChunker(1)("This is a single sentence.")

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "This is a single sentence.", chunks[0].Content)
	})

	t.Run("Question and exclamation marks", func(t *testing.T) {
		chunks, err := SentenceChunker(1)("Is it here? Yes! It is.")

		require.NoError(t, err)
		require.Len(t, chunks, 3)
		assert.Equal(t, "Is it here?", chunks[0].Content)
		assert.Equal(t, "Yes!", chunks[1].Content)
	})

	t.Run("Line breaks do not create empty chunks", func(t *testing.T) {
		chunks, err := SentenceChunker(5)("First line.\nSecond line.\n\n")

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "First line. Second line.", chunks[0].Content)
	})

	t.Run("Empty text", func(t *testing.T) {
		chunks, err := SentenceChunker(3)("   ")

		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("Error with zero max sentences", func(t *testing.T) {
		_, err := SentenceChunker(0)("Some text.")

		assert.Error(t, err, "Expected error when max sentences is zero")
	})
}

func TestParagraphChunker(t *testing.T) {
	t.Run("Splits on blank lines", func(t *testing.T) {
		text := "First paragraph.\n\nSecond paragraph.\r\n\r\nThird."

		chunks, err := ParagraphChunker()(text)

		require.NoError(t, err)
		require.Len(t, chunks, 3)
		assert.Equal(t, "First paragraph.", chunks[0].Content)
		assert.Equal(t, "Third.", chunks[2].Content)
		assert.Equal(t, "paragraph", chunks[1].Metadata["chunking_method"])
	})

	t.Run("Skips empty paragraphs", func(t *testing.T) {
		chunks, err := ParagraphChunker()("\n\n\n\nOnly one.\n\n")

		require.NoError(t, err)
		require.Len(t, chunks, 1)
	})
}
