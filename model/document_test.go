package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	t.Run("Title from filename without extension", func(t *testing.T) {
		doc := NewDocument("/data/reports/annual-report.pdf", Metadata{"year": 2025})

		assert.Equal(t, "annual-report", doc.Title)
		assert.Equal(t, "/data/reports/annual-report.pdf", doc.Source)
		assert.Equal(t, 2025, doc.Metadata["year"])
		assert.Empty(t, doc.Content, "Expected NewDocument to not read the file")
	})

	t.Run("Filename without extension", func(t *testing.T) {
		doc := NewDocument("/data/README", nil)

		assert.Equal(t, "README", doc.Title)
		assert.NotNil(t, doc.Metadata, "Expected nil metadata to be replaced by an empty map")
	})

	t.Run("Hidden file keeps full name", func(t *testing.T) {
		doc := NewDocument("/data/.notes", nil)

		assert.Equal(t, ".notes", doc.Title)
	})
}

func TestNewDocumentFromFile(t *testing.T) {
	t.Run("Reads file content", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(filePath, []byte("Section 2 covers retrieval."), 0600))

		doc, err := NewDocumentFromFile(filePath, Metadata{"author": "test"})

		require.NoError(t, err)
		assert.Equal(t, "notes", doc.Title)
		assert.Equal(t, "Section 2 covers retrieval.", doc.Content)
		assert.Equal(t, "test", doc.Metadata["author"])
	})

	t.Run("Returns error for non-existent file", func(t *testing.T) {
		doc, err := NewDocumentFromFile("/non/existent/file.txt", nil)

		require.Error(t, err)
		assert.Nil(t, doc)
	})
}
