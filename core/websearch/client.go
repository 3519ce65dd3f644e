package websearch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/siherrmann/crag/model"
	"github.com/tidwall/gjson"
)

// Client queries a SerpAPI compatible search endpoint.
type Client struct {
	http   *resty.Client
	url    string
	apiKey string
	engine string
}

// NewClient creates a web search client. Every request is bounded by timeout.
func NewClient(url string, apiKey string, timeout time.Duration) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("web search url is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("web search api key is required")
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		url:    url,
		apiKey: apiKey,
		engine: "google",
	}, nil
}

// Search returns at most n results in engine order, plus the featured snippet
// and knowledge panel when the engine provides them.
func (c *Client) Search(ctx context.Context, query string, n int) (*model.WebSearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("web search query is empty")
	}
	if n <= 0 {
		return &model.WebSearchResponse{}, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":       query,
			"engine":  c.engine,
			"num":     strconv.Itoa(n),
			"api_key": c.apiKey,
		}).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("web search returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	return parseResponse(resp.Body(), n)
}

func parseResponse(body []byte, n int) (*model.WebSearchResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("web search returned invalid json")
	}
	if apiErr := gjson.GetBytes(body, "error"); apiErr.Exists() && apiErr.String() != "" {
		return nil, fmt.Errorf("web search error: %s", apiErr.String())
	}

	response := &model.WebSearchResponse{}

	for _, r := range gjson.GetBytes(body, "organic_results").Array() {
		if len(response.Results) >= n {
			break
		}
		result := model.WebResult{
			Title:   strings.TrimSpace(r.Get("title").String()),
			URL:     strings.TrimSpace(r.Get("link").String()),
			Snippet: strings.TrimSpace(r.Get("snippet").String()),
		}
		if result.Title == "" && result.URL == "" && result.Snippet == "" {
			continue
		}
		response.Results = append(response.Results, result)
	}

	answerBox := gjson.GetBytes(body, "answer_box")
	for _, field := range []string{"snippet", "answer", "result"} {
		if v := strings.TrimSpace(answerBox.Get(field).String()); v != "" {
			response.FeaturedSnippet = v
			break
		}
	}

	knowledge := gjson.GetBytes(body, "knowledge_graph")
	title := strings.TrimSpace(knowledge.Get("title").String())
	description := strings.TrimSpace(knowledge.Get("description").String())
	switch {
	case title != "" && description != "":
		response.KnowledgePanel = title + ": " + description
	case description != "":
		response.KnowledgePanel = description
	case title != "":
		response.KnowledgePanel = title
	}

	return response, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
