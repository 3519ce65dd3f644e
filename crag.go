package crag

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/crag/core/analysis"
	"github.com/siherrmann/crag/core/fusion"
	"github.com/siherrmann/crag/core/generation"
	"github.com/siherrmann/crag/core/llm"
	"github.com/siherrmann/crag/core/pipeline"
	"github.com/siherrmann/crag/core/retrieval"
	"github.com/siherrmann/crag/core/websearch"
	"github.com/siherrmann/crag/database"
	"github.com/siherrmann/crag/helper"
	"github.com/siherrmann/crag/model"
	loadSql "github.com/siherrmann/crag/sql"
)

// Crag wires storage, retrieval, quality analysis, web search and generation
type Crag struct {
	DB        *helper.Database
	Chunks    *database.ChunksDBHandler
	Documents *database.DocumentsDBHandler
	Pipeline  *pipeline.Pipeline // Set with UseDefaultPipeline or SetPipeline
	Engine    *retrieval.Engine  // Built together with the pipeline
	Analyzer  analysis.QualityStrategy
	WebSearch fusion.WebSearchFunc // Optional, fusion degrades without it
	Generator *generation.Generator
	// Optional language model collaborators
	complete llm.CompleteFunc
	describe llm.DescribeImageFunc
	config   model.Config
	// Logging
	log *slog.Logger
}

// New creates a Crag instance with all handlers and collaborators initialized from config.
// The ingestion pipeline is not loaded here, call UseDefaultPipeline or SetPipeline.
// Logs are written to stdout.
func New(dbConfig *helper.DatabaseConfiguration, config *model.Config) (*Crag, error) {
	return NewWithLogger(dbConfig, config, helper.NewLogger(os.Stdout, slog.LevelInfo))
}

// NewWithLogger is New with a caller provided logger. A nil logger logs to stdout.
func NewWithLogger(dbConfig *helper.DatabaseConfiguration, config *model.Config, logger *slog.Logger) (*Crag, error) {
	if config == nil {
		return nil, helper.NewError("config validation", fmt.Errorf("config is nil"))
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = helper.NewLogger(os.Stdout, slog.LevelInfo)
	}

	db, err := helper.NewDatabase("crag", dbConfig, logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}

	c, err := newWithDatabase(db, config, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return c, nil
}

func newWithDatabase(db *helper.Database, config *model.Config, logger *slog.Logger) (*Crag, error) {
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Documents first, chunks reference them
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, config.EmbeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	c := &Crag{
		DB:        db,
		Chunks:    chunks,
		Documents: documents,
		config:    *config,
		log:       logger,
	}

	if config.OpenAIAPIKey != "" {
		chatModel, err := llm.NewModel(config)
		if err != nil {
			return nil, helper.NewError("create language model", err)
		}
		c.complete = llm.Completer(chatModel)
		if config.VisionEnabled {
			c.describe = llm.ImageDescriber(chatModel)
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set, answers and LLM analysis are disabled")
	}

	if config.WebSearchAPIKey != "" {
		client, err := websearch.NewClient(config.WebSearchURL, config.WebSearchAPIKey, config.WebSearchTimeout)
		if err != nil {
			return nil, helper.NewError("create web search client", err)
		}
		c.WebSearch = client.Search
	} else {
		logger.Warn("SERPAPI_API_KEY not set, web search context will stay empty")
	}

	c.Analyzer = analysis.NewStrategy(config, c.complete, logger)
	c.Generator = generation.NewGenerator(
		c.complete,
		generation.NewTokenizer(generation.DefaultEncoding),
		config.MaxContextTokens,
		config.GenerateTimeout,
		logger,
	)

	logger.Info("Initialized crag",
		slog.String("quality_strategy", c.Analyzer.Name()),
		slog.String("escalation", string(config.Escalation)),
		slog.Bool("vision", c.describe != nil),
	)

	return c, nil
}

// Config returns a copy of the configuration.
func (c *Crag) Config() model.Config {
	return c.config
}

// Close closes the database connection
func (c *Crag) Close() error {
	return c.DB.Close()
}

// SetPipeline sets the ingestion pipeline and rebuilds the retrieval engine on its embedder
func (c *Crag) SetPipeline(p *pipeline.Pipeline) {
	if p.EmbedTimeout == 0 {
		p.EmbedTimeout = c.config.EmbedTimeout
	}
	if p.Describer == nil && c.describe != nil {
		p.SetDescriber(pipeline.DescribeFunc(c.describe))
	}
	p.SetLogger(c.log)

	c.Pipeline = p
	c.Engine = retrieval.NewEngine(c.Chunks, p.Embedder, retrieval.Options{
		EmbedTimeout:  c.config.EmbedTimeout,
		SearchTimeout: c.config.SearchTimeout,
		Logger:        c.log,
	})
}

// UseDefaultPipeline sets up the configured chunker and embedder.
// The local embedder uses all-MiniLM-L6-v2 (384 dimensions).
func (c *Crag) UseDefaultPipeline() error {
	var embedder pipeline.EmbedFunc
	var err error
	switch c.config.Embedder {
	case model.EmbedderOpenAI:
		embedder, err = pipeline.OpenAIEmbedder(c.config.OpenAIAPIKey, c.config.OpenAIBaseURL, c.config.EmbeddingModel)
	default:
		embedder, err = pipeline.DefaultEmbedder()
	}
	if err != nil {
		return helper.NewError("create embedder", err)
	}

	c.SetPipeline(pipeline.NewPipeline(newChunker(&c.config), embedder))
	return nil
}

func newChunker(config *model.Config) pipeline.ChunkFunc {
	if config.Chunker == model.ChunkerParagraph {
		return pipeline.ParagraphChunker()
	}
	return pipeline.SentenceChunker(config.SentencesPerChunk)
}

// IngestFile extracts, chunks and embeds a PDF, image or text file and stores it.
// Returns the stored document and the number of chunks inserted.
func (c *Crag) IngestFile(ctx context.Context, filePath string) (*model.Document, int, error) {
	if c.Pipeline == nil {
		return nil, 0, helper.NewError("ingest file", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	doc, chunks, err := c.Pipeline.ProcessFile(ctx, filePath)
	if err != nil {
		return nil, 0, helper.NewError("process file", err)
	}

	n, err := c.store(ctx, doc, chunks)
	if err != nil {
		return nil, n, err
	}
	return doc, n, nil
}

// IngestDocument chunks and embeds doc.Content and stores the document with its chunks.
// The content itself is not stored on the document row.
func (c *Crag) IngestDocument(ctx context.Context, doc *model.Document) (int, error) {
	if c.Pipeline == nil {
		return 0, helper.NewError("ingest document", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	if doc.Content == "" {
		return 0, helper.NewError("ingest document", fmt.Errorf("document content is empty"))
	}
	if doc.Metadata == nil {
		doc.Metadata = model.Metadata{}
	}

	chunks, err := c.Pipeline.ProcessText(ctx, doc.Content, nil, 0)
	if err != nil {
		return 0, helper.NewError("process text", err)
	}

	return c.store(ctx, doc, chunks)
}

// store inserts the document and its chunks. A failed chunk insert removes the
// document again so no partially ingested document remains.
func (c *Crag) store(ctx context.Context, doc *model.Document, chunks []*model.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, helper.NewError("store document", fmt.Errorf("no content extracted from %q", doc.Source))
	}

	if err := c.Documents.InsertDocument(ctx, doc); err != nil {
		return 0, helper.NewError("insert document", err)
	}

	c.log.Info("Inserted document", slog.String("document_id", doc.RID.String()), slog.String("title", doc.Title))

	for i, chunk := range chunks {
		chunk.DocumentID = doc.ID
		if err := c.Chunks.InsertChunk(ctx, chunk); err != nil {
			if delErr := c.Documents.DeleteDocument(ctx, doc.RID); delErr != nil {
				c.log.Error("Failed to remove partially ingested document", slog.String("document_id", doc.RID.String()), slog.Any("error", delErr))
			}
			return i, helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}

	c.log.Info("Inserted chunks", slog.Int("num_chunks", len(chunks)), slog.String("document_id", doc.RID.String()))

	return len(chunks), nil
}

// Retrieve returns the topK local chunks closest to the query
func (c *Crag) Retrieve(ctx context.Context, query string, topK int) ([]*model.Chunk, error) {
	if c.Engine == nil {
		return nil, helper.NewError("retrieve", fmt.Errorf("%w: pipeline with embedder not set, use SetPipeline() first", model.ErrRetrievalUnavailable))
	}
	return c.Engine.Retrieve(ctx, query, topK)
}

// Query runs retrieval, quality analysis and context fusion.
// Only retrieval failures are returned, analysis and web search degrade.
func (c *Crag) Query(ctx context.Context, query string, config model.QueryConfig) (*model.QueryResult, error) {
	chunks, err := c.Retrieve(ctx, query, config.TopK)
	if err != nil {
		return nil, err
	}

	verdict := c.Analyzer.Analyze(ctx, query, chunks)
	c.log.Info("Analyzed local context",
		slog.String("strategy", verdict.Strategy),
		slog.Float64("relevance_score", verdict.RelevanceScore),
		slog.Bool("requires_web_search", verdict.RequiresWebSearch),
		slog.Bool("degraded", verdict.Degraded),
	)

	policy := config.Escalation
	if policy == "" {
		policy = c.config.Escalation
	}
	fused := fusion.Fuse(ctx, query, chunks, verdict, c.WebSearch, fusion.Options{
		Policy:     policy,
		WebResults: config.WebResults,
		Timeout:    c.config.WebSearchTimeout,
		Logger:     c.log,
	})

	return &model.QueryResult{
		Query:   query,
		Chunks:  chunks,
		Verdict: verdict,
		Context: fused,
	}, nil
}

// Answer runs Query and generates the final answer from the fused context
func (c *Crag) Answer(ctx context.Context, query string, config model.QueryConfig) (*model.QueryResult, error) {
	result, err := c.Query(ctx, query, config)
	if err != nil {
		return nil, err
	}

	answer, err := c.Generator.Answer(ctx, query, result.Context)
	if err != nil {
		return result, helper.NewError("generate answer", err)
	}
	result.Answer = answer

	return result, nil
}

// ListDocuments returns all stored documents, oldest first
func (c *Crag) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	return c.Documents.SelectAllDocuments(ctx)
}

// DocumentChunks returns the chunks of a document in chunk order
func (c *Crag) DocumentChunks(ctx context.Context, rid uuid.UUID) ([]*model.Chunk, error) {
	return c.Chunks.SelectChunksByDocument(ctx, rid)
}

// DeleteDocument removes a document together with its chunks
func (c *Crag) DeleteDocument(ctx context.Context, rid uuid.UUID) error {
	return c.Documents.DeleteDocument(ctx, rid)
}

// ChangeIndexType rebuilds the vector index
func (c *Crag) ChangeIndexType(ctx context.Context, indexType database.IndexType, params database.IndexParams) error {
	return c.Chunks.ChangeIndexType(ctx, indexType, params)
}
