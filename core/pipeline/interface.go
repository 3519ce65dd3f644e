package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/siherrmann/crag/helper"
	"github.com/siherrmann/crag/model"
)

// ErrUnsupportedContent is returned for files the pipeline cannot turn into chunks.
var ErrUnsupportedContent = errors.New("unsupported content")

// ChunkFunc is a function that splits text into ordered chunks
type ChunkFunc func(text string) ([]TextChunk, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// DescribeFunc turns binary image data into a textual description (vision/OCR)
type DescribeFunc func(ctx context.Context, mimeType string, data []byte) (string, error)

// TextChunk is a piece of text produced by a ChunkFunc
type TextChunk struct {
	Content  string
	Metadata model.Metadata
}

// Pipeline combines content extraction, chunking and embedding
type Pipeline struct {
	Chunker      ChunkFunc
	Embedder     EmbedFunc
	Describer    DescribeFunc // Optional, images are rejected without it
	EmbedTimeout time.Duration
	log          *slog.Logger
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
		log:      slog.Default(),
	}
}

// SetDescriber sets the image description function
func (p *Pipeline) SetDescriber(describer DescribeFunc) {
	p.Describer = describer
}

// SetLogger sets the logger used during ingestion
func (p *Pipeline) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.log = logger
	}
}

// Embed runs the embedder under the configured timeout.
func (p *Pipeline) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.Embedder == nil {
		return nil, helper.NewError("embed", fmt.Errorf("no embedder configured"))
	}
	return helper.WithTimeout(ctx, p.EmbedTimeout, func(ctx context.Context) ([]float32, error) {
		return p.Embedder(ctx, text)
	})
}

// ProcessText chunks and embeds plain text. Every chunk gets the given page number.
// Chunk indexes start at startIndex.
func (p *Pipeline) ProcessText(ctx context.Context, text string, pageNumber *int, startIndex int) ([]*model.Chunk, error) {
	if p.Chunker == nil {
		return nil, helper.NewError("chunk", fmt.Errorf("no chunker configured"))
	}

	textChunks, err := p.Chunker(text)
	if err != nil {
		return nil, helper.NewError("chunk", err)
	}

	chunks := make([]*model.Chunk, 0, len(textChunks))
	for i, tc := range textChunks {
		embedding, err := p.Embed(ctx, tc.Content)
		if err != nil {
			return nil, helper.NewError("embed", err)
		}

		index := startIndex + i
		metadata := tc.Metadata
		if metadata == nil {
			metadata = model.Metadata{}
		}
		chunks = append(chunks, &model.Chunk{
			Content:     tc.Content,
			ContentType: model.ContentTypeText,
			PageNumber:  pageNumber,
			ChunkIndex:  &index,
			Embedding:   embedding,
			Metadata:    metadata,
		})
	}

	return chunks, nil
}

// ProcessFile extracts the content of a PDF, image or text file and returns
// the document together with its embedded chunks.
func (p *Pipeline) ProcessFile(ctx context.Context, filePath string) (*model.Document, []*model.Chunk, error) {
	kind, mimeType, err := DetectContentType(filePath)
	if err != nil {
		return nil, nil, helper.NewError("detect content type", err)
	}

	doc := model.NewDocument(filePath, model.Metadata{"mime_type": mimeType})

	var chunks []*model.Chunk
	switch kind {
	case KindPDF:
		chunks, err = p.processPDF(ctx, doc, filePath)
	case KindImage:
		chunks, err = p.processImage(ctx, doc, filePath, mimeType)
	case KindText:
		doc, err = model.NewDocumentFromFile(filePath, doc.Metadata)
		if err == nil {
			chunks, err = p.ProcessText(ctx, doc.Content, nil, 0)
		}
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedContent, mimeType)
	}
	if err != nil {
		return nil, nil, helper.NewError(fmt.Sprintf("process %s", kind), err)
	}

	p.log.Info("Processed file", "file", filePath, "mime_type", mimeType, "chunks", len(chunks))

	return doc, chunks, nil
}

func (p *Pipeline) processPDF(ctx context.Context, doc *model.Document, filePath string) ([]*model.Chunk, error) {
	pages, err := ExtractPDF(filePath)
	if err != nil {
		return nil, err
	}
	doc.Metadata["pages"] = len(pages)

	var chunks []*model.Chunk
	var content []string
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			p.log.Debug("Skipping page without text layer", "file", filePath, "page", page.Number)
			continue
		}
		content = append(content, page.Text)

		pageNumber := page.Number
		pageChunks, err := p.ProcessText(ctx, page.Text, &pageNumber, len(chunks))
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("page %d", page.Number), err)
		}
		chunks = append(chunks, pageChunks...)
	}
	doc.Content = strings.Join(content, "\n\n")

	return chunks, nil
}

func (p *Pipeline) processImage(ctx context.Context, doc *model.Document, filePath string, mimeType string) ([]*model.Chunk, error) {
	if p.Describer == nil {
		return nil, fmt.Errorf("%w: image description is disabled", ErrUnsupportedContent)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	description, err := p.Describer(ctx, mimeType, data)
	if err != nil {
		return nil, helper.NewError("describe", err)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("empty image description")
	}
	doc.Content = description

	embedding, err := p.Embed(ctx, description)
	if err != nil {
		return nil, helper.NewError("embed", err)
	}

	index := 0
	return []*model.Chunk{{
		Content:     description,
		ContentType: model.ContentTypeImage,
		ChunkIndex:  &index,
		Embedding:   embedding,
		Metadata:    model.Metadata{"mime_type": mimeType},
	}}, nil
}
