package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/crag/helper"
	"github.com/siherrmann/crag/model"
	loadSql "github.com/siherrmann/crag/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	Dimension() int
	InsertChunk(ctx context.Context, chunk *model.Chunk) error
	DeleteChunk(ctx context.Context, id int64) error
	SelectChunk(ctx context.Context, id int64) (*model.Chunk, error)
	SelectChunksByDocument(ctx context.Context, documentRID uuid.UUID) ([]*model.Chunk, error)
	SelectChunksByDistance(ctx context.Context, embedding []float32, limit int) ([]*model.Chunk, error)
	CountChunks(ctx context.Context) (int64, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db        *helper.Database
	dimension int
}

// NewChunksDBHandler creates a new chunks database handler.
// It loads the chunk-related SQL functions and creates the chunks table with
// the given embedding dimension. An existing table with a different dimension
// results in model.ErrDimensionMismatch.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db:        db,
		dimension: embeddingDim,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler", "dimension", embeddingDim)

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again but verifies that
// the stored embedding dimension matches embeddingDim.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init chunks", err)
	}

	var stored sql.NullInt64
	err = h.db.Instance.QueryRowContext(ctx, `SELECT select_embedding_dimension();`).Scan(&stored)
	if err != nil {
		return helper.NewError("select embedding dimension", err)
	}
	if stored.Valid && int(stored.Int64) != embeddingDim {
		return fmt.Errorf("%w: chunks table stores %d dimensions, embedder produces %d", model.ErrDimensionMismatch, stored.Int64, embeddingDim)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// Dimension returns the embedding dimension of the chunks table.
func (h *ChunksDBHandler) Dimension() int {
	return h.dimension
}

// InsertChunk inserts a new chunk
func (h *ChunksDBHandler) InsertChunk(ctx context.Context, chunk *model.Chunk) error {
	if len(chunk.Embedding) != h.dimension {
		return fmt.Errorf("%w: chunk has %d dimensions, table stores %d", model.ErrDimensionMismatch, len(chunk.Embedding), h.dimension)
	}
	if chunk.ContentType == "" {
		chunk.ContentType = model.ContentTypeText
	}
	if !chunk.ContentType.Valid() {
		return fmt.Errorf("unsupported content type %q", chunk.ContentType)
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7)`,
		chunk.DocumentID,
		chunk.Content,
		string(chunk.ContentType),
		chunk.PageNumber,
		chunk.ChunkIndex,
		pgvector.NewVector(chunk.Embedding),
		chunk.Metadata,
	)

	err := scanChunk(row, chunk)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteChunk deletes a chunk by ID
func (h *ChunksDBHandler) DeleteChunk(ctx context.Context, id int64) error {
	var deleted int64
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT delete_chunk($1)`,
		id,
	).Scan(&deleted)
	if err != nil {
		return helper.NewError("exec", err)
	}
	if deleted == 0 {
		return helper.NewError("delete chunk", sql.ErrNoRows)
	}
	return nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(ctx context.Context, id int64) (*model.Chunk, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_chunk($1)`,
		id,
	)

	chunk := &model.Chunk{}
	err := scanChunk(row, chunk)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByDocument retrieves all chunks for a document ordered by chunk index
func (h *ChunksDBHandler) SelectChunksByDocument(ctx context.Context, documentRID uuid.UUID) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_document($1)`,
		documentRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := scanChunk(rows, chunk)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectChunksByDistance performs an exact cosine distance search.
// Results are ordered by ascending distance with the chunk ID as tie-breaker.
func (h *ChunksDBHandler) SelectChunksByDistance(ctx context.Context, embedding []float32, limit int) ([]*model.Chunk, error) {
	if len(embedding) != h.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, table stores %d", model.ErrDimensionMismatch, len(embedding), h.dimension)
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_distance($1, $2)`,
		pgvector.NewVector(embedding),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := scanChunk(rows, chunk, &chunk.Distance)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// CountChunks returns the number of stored chunks.
func (h *ChunksDBHandler) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_chunks()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("count chunks", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner, chunk *model.Chunk, extra ...any) error {
	var contentType string
	var embedding pgvector.Vector
	var pageNumber, chunkIndex sql.NullInt32

	dest := []any{
		&chunk.ID,
		&chunk.DocumentID,
		&chunk.DocumentRID,
		&chunk.Content,
		&contentType,
		&pageNumber,
		&chunkIndex,
		&embedding,
		&chunk.Metadata,
		&chunk.CreatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	if err != nil {
		return err
	}

	chunk.ContentType = model.ContentType(contentType)
	chunk.Embedding = embedding.Slice()
	chunk.PageNumber = nullIntPtr(pageNumber)
	chunk.ChunkIndex = nullIntPtr(chunkIndex)
	return nil
}

func nullIntPtr(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int32)
	return &i
}
