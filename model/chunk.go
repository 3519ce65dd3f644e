package model

import (
	"time"

	"github.com/google/uuid"
)

type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
)

// Valid reports whether c is a known content type.
func (c ContentType) Valid() bool {
	return c == ContentTypeText || c == ContentTypeImage
}

// Chunk represents a unit of retrievable evidence.
// Chunks returned by a query are owned by that query and not modified afterwards.
type Chunk struct {
	ID          int64       `json:"id"`
	DocumentID  int64       `json:"document_id"`
	DocumentRID uuid.UUID   `json:"document_rid"`
	Content     string      `json:"content"`
	ContentType ContentType `json:"content_type"`
	PageNumber  *int        `json:"page_number,omitempty"`
	ChunkIndex  *int        `json:"chunk_index,omitempty"`
	Embedding   []float32   `json:"embedding,omitempty"`
	Metadata    Metadata    `json:"metadata,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	// Results
	Distance float64 `json:"distance,omitempty"` // cosine distance, lower is closer
}
