package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/crag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentsNewDocumentsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewDocumentsDBHandler", func(t *testing.T) {
		documentsDbHandler, err := NewDocumentsDBHandler(database, true)
		assert.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")
		require.NotNil(t, documentsDbHandler, "Expected NewDocumentsDBHandler to return a non-nil instance")
		require.NotNil(t, documentsDbHandler.db.Instance, "Expected NewDocumentsDBHandler to have a non-nil database connection instance")
	})

	t.Run("Invalid call NewDocumentsDBHandler with nil database", func(t *testing.T) {
		_, err := NewDocumentsDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating DocumentsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestDocumentsInsertAndSelect(t *testing.T) {
	database := initDB(t)
	ctx := context.Background()

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")

	doc := &model.Document{
		Title:    "Test Document",
		Source:   "test_source.txt",
		Metadata: model.Metadata{"author": "Test Author", "year": 2024},
	}

	err = documentsDbHandler.InsertDocument(ctx, doc)
	require.NoError(t, err, "Expected Insert to not return an error")
	t.Cleanup(func() { _ = documentsDbHandler.DeleteDocument(ctx, doc.RID) })

	assert.NotEqual(t, uuid.Nil, doc.RID, "Expected inserted document to have a RID")
	assert.NotZero(t, doc.ID, "Expected inserted document to have an ID")
	assert.WithinDuration(t, time.Now(), doc.CreatedAt, 5*time.Second, "Expected CreatedAt to be set")

	t.Run("Select by RID", func(t *testing.T) {
		retrieved, err := documentsDbHandler.SelectDocument(ctx, doc.RID)
		require.NoError(t, err, "Expected Select to not return an error")
		assert.Equal(t, doc.ID, retrieved.ID)
		assert.Equal(t, "Test Document", retrieved.Title)
		assert.Equal(t, "test_source.txt", retrieved.Source)
		assert.Equal(t, "Test Author", retrieved.Metadata["author"])
	})

	t.Run("Select unknown RID", func(t *testing.T) {
		_, err := documentsDbHandler.SelectDocument(ctx, uuid.New())
		assert.Error(t, err, "Expected error for unknown document")
	})

	t.Run("Select all contains document", func(t *testing.T) {
		documents, err := documentsDbHandler.SelectAllDocuments(ctx)
		require.NoError(t, err)

		found := false
		for _, d := range documents {
			if d.RID == doc.RID {
				found = true
			}
		}
		assert.True(t, found, "Expected inserted document in list")
	})
}

func TestDocumentsDelete(t *testing.T) {
	database := initDB(t)
	ctx := context.Background()

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)

	doc := &model.Document{Title: "To Delete", Metadata: model.Metadata{}}
	require.NoError(t, documentsDbHandler.InsertDocument(ctx, doc))

	t.Run("Delete existing document", func(t *testing.T) {
		err := documentsDbHandler.DeleteDocument(ctx, doc.RID)
		assert.NoError(t, err, "Expected Delete to not return an error")

		_, err = documentsDbHandler.SelectDocument(ctx, doc.RID)
		assert.Error(t, err, "Expected deleted document to be gone")
	})

	t.Run("Delete unknown document", func(t *testing.T) {
		err := documentsDbHandler.DeleteDocument(ctx, uuid.New())
		assert.Error(t, err, "Expected error when deleting unknown document")
	})
}
