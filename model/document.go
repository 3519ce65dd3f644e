package model

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Document represents an ingested source file
type Document struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Title     string    `json:"title"`
	Source    string    `json:"source,omitempty"`
	Content   string    `json:"content,omitempty" db:"-"` // Temporary field for processing, not stored in DB
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocument creates a Document for the file at filePath without reading it.
// The title defaults to the filename without extension.
func NewDocument(filePath string, metadata Metadata) *Document {
	filename := filepath.Base(filePath)
	title := filename[:len(filename)-len(filepath.Ext(filename))]
	if title == "" {
		title = filename
	}
	if metadata == nil {
		metadata = Metadata{}
	}

	return &Document{
		Title:    title,
		Source:   filePath,
		Metadata: metadata,
	}
}

// NewDocumentFromFile reads a text file and creates a Document with the file content
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(filePath, metadata)
	doc.Content = string(content)
	return doc, nil
}
