package model

import "errors"

var (
	// ErrRetrievalUnavailable means the embedding service or the vector index failed.
	// It is the only pipeline failure surfaced to callers.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrDimensionMismatch means query embeddings and the stored index disagree on dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrInvalidQuery means the query was blank or topK was not positive.
	ErrInvalidQuery = errors.New("invalid query")
)
