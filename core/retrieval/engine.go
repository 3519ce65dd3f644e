package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/siherrmann/crag/core/pipeline"
	"github.com/siherrmann/crag/helper"
	"github.com/siherrmann/crag/model"
)

// VectorIndex is the nearest neighbour search over stored chunks.
// database.ChunksDBHandler implements it.
type VectorIndex interface {
	Dimension() int
	SelectChunksByDistance(ctx context.Context, embedding []float32, limit int) ([]*model.Chunk, error)
}

// Options bounds the external calls of the engine.
type Options struct {
	EmbedTimeout  time.Duration
	SearchTimeout time.Duration
	Logger        *slog.Logger
}

// Engine embeds queries and searches the local vector index
type Engine struct {
	index VectorIndex
	embed pipeline.EmbedFunc
	opts  Options
	log   *slog.Logger
}

// NewEngine creates a new retrieval engine
func NewEngine(index VectorIndex, embed pipeline.EmbedFunc, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = helper.DefaultTimeout
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = helper.DefaultTimeout
	}
	return &Engine{
		index: index,
		embed: embed,
		opts:  opts,
		log:   logger,
	}
}

// Retrieve returns at most topK chunks ordered by ascending distance to the query.
// Embedding and index failures are reported as model.ErrRetrievalUnavailable,
// a dimension disagreement as model.ErrDimensionMismatch.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int) ([]*model.Chunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, helper.NewError("retrieve", fmt.Errorf("%w: query is empty", model.ErrInvalidQuery))
	}
	if topK < 1 {
		return nil, helper.NewError("retrieve", fmt.Errorf("%w: topK must be at least 1, got %d", model.ErrInvalidQuery, topK))
	}

	embedding, err := helper.WithTimeout(ctx, e.opts.EmbedTimeout, func(ctx context.Context) ([]float32, error) {
		return e.embed(ctx, query)
	})
	if err != nil {
		return nil, helper.NewError("embed query", fmt.Errorf("%w: %w", model.ErrRetrievalUnavailable, err))
	}

	if len(embedding) != e.index.Dimension() {
		return nil, helper.NewError("embed query", fmt.Errorf("%w: query has %d dimensions, index stores %d", model.ErrDimensionMismatch, len(embedding), e.index.Dimension()))
	}

	chunks, err := helper.WithTimeout(ctx, e.opts.SearchTimeout, func(ctx context.Context) ([]*model.Chunk, error) {
		return e.index.SelectChunksByDistance(ctx, embedding, topK)
	})
	if err != nil {
		return nil, helper.NewError("vector search", fmt.Errorf("%w: %w", model.ErrRetrievalUnavailable, err))
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Distance != chunks[j].Distance {
			return chunks[i].Distance < chunks[j].Distance
		}
		return chunks[i].ID < chunks[j].ID
	})
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}

	e.log.Debug("Retrieved local chunks", "query", query, "top_k", topK, "found", len(chunks))

	return chunks, nil
}
