package fusion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/crag/helper"
	"github.com/siherrmann/crag/model"
)

const (
	LocalHeader = "=== LOCAL DOCUMENT CONTEXT ==="
	WebHeader   = "=== WEB SEARCH CONTEXT ==="
)

// WebSearchFunc runs a web search returning at most n results
type WebSearchFunc func(ctx context.Context, query string, n int) (*model.WebSearchResponse, error)

// Options controls when and how the web is searched.
type Options struct {
	Policy     model.EscalationPolicy
	WebResults int
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Fuse merges local chunks and web evidence into one context. The local
// section always comes first and does not depend on the web search outcome.
// A failed, empty or skipped web search leaves the web section empty.
func Fuse(ctx context.Context, query string, local []*model.Chunk, verdict *model.QualityVerdict, webSearch WebSearchFunc, opts Options) *model.FusedContext {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = helper.DefaultTimeout
	}

	fused := &model.FusedContext{
		LocalSection: FormatLocal(local),
	}

	if shouldSearch(opts.Policy, verdict) {
		fused.WebQuery = verdict.SearchQuery(query)
		fused.WebSearched = true

		response, err := search(ctx, webSearch, fused.WebQuery, opts)
		switch {
		case err != nil:
			fused.WebDegraded = true
			logger.Warn("WebSearchDegraded", "query", fused.WebQuery, "error", err)
		case response.Empty():
			fused.WebDegraded = true
			logger.Warn("WebSearchDegraded", "query", fused.WebQuery, "error", "no results")
		default:
			fused.WebSection = FormatWeb(response)
		}
	}

	fused.Combined = Combine(fused.LocalSection, fused.WebSection)
	return fused
}

func shouldSearch(policy model.EscalationPolicy, verdict *model.QualityVerdict) bool {
	if policy == model.EscalationOnDemand {
		return verdict.NeedsWebSearch()
	}
	return true
}

func search(ctx context.Context, webSearch WebSearchFunc, query string, opts Options) (*model.WebSearchResponse, error) {
	if webSearch == nil {
		return nil, fmt.Errorf("no web search configured")
	}
	return helper.WithTimeout(ctx, opts.Timeout, func(ctx context.Context) (*model.WebSearchResponse, error) {
		return webSearch(ctx, query, opts.WebResults)
	})
}

// FormatLocal joins chunk texts in retrieval order, separated by blank lines.
func FormatLocal(chunks []*model.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		parts = append(parts, chunk.Content)
	}
	return strings.Join(parts, "\n\n")
}

// FormatWeb renders featured snippet, knowledge panel and numbered results, in that order.
func FormatWeb(response *model.WebSearchResponse) string {
	if response == nil {
		return ""
	}

	var parts []string
	if response.FeaturedSnippet != "" {
		parts = append(parts, "Featured Snippet: "+response.FeaturedSnippet)
	}
	if response.KnowledgePanel != "" {
		parts = append(parts, "Knowledge Panel: "+response.KnowledgePanel)
	}
	for i, result := range response.Results {
		parts = append(parts, fmt.Sprintf("[Web Source %d: %s]\nURL: %s\nContent: %s", i+1, result.Title, result.URL, result.Snippet))
	}

	return strings.Join(parts, "\n\n")
}

// Combine places both sections under their headers. Both headers are always present.
func Combine(localSection string, webSection string) string {
	var b strings.Builder
	b.WriteString(LocalHeader)
	b.WriteString("\n")
	b.WriteString(localSection)
	b.WriteString("\n\n")
	b.WriteString(WebHeader)
	b.WriteString("\n")
	b.WriteString(webSection)
	return b.String()
}
