package database

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/crag/helper"
)

// IndexType is the approximate nearest neighbour index used on chunk embeddings.
type IndexType string

const (
	IndexTypeHNSW    IndexType = "hnsw"
	IndexTypeIVFFlat IndexType = "ivfflat"
)

// IndexParams holds optional index build parameters. Zero values use the defaults.
//   - HNSW: M (default 16), EfConstruction (default 64)
//   - IVFFlat: Lists (default 100)
type IndexParams struct {
	M              int
	EfConstruction int
	Lists          int
}

func (p IndexParams) statement(indexType IndexType) (string, error) {
	switch indexType {
	case IndexTypeHNSW:
		m, efConstruction := 16, 64
		if p.M > 0 {
			m = p.M
		}
		if p.EfConstruction > 0 {
			efConstruction = p.EfConstruction
		}
		return fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		), nil
	case IndexTypeIVFFlat:
		lists := 100
		if p.Lists > 0 {
			lists = p.Lists
		}
		return fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		), nil
	default:
		return "", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType)
	}
}

// ChangeIndexType replaces the vector index on the chunks table.
// The drop and the rebuild run in one transaction so a failed rebuild keeps the old index.
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, indexType IndexType, params IndexParams) error {
	createIndexSQL, err := params.statement(indexType)
	if err != nil {
		return helper.NewError("change index type", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_chunks_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	_, err = tx.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	h.db.Logger.Info("Changed vector index", "type", indexType, "params", params)

	return nil
}
