package model

import (
	"fmt"
	"time"

	"github.com/siherrmann/crag/helper"
)

type QualityStrategyType string

const (
	QualityStrategyLLM       QualityStrategyType = "llm"
	QualityStrategyHeuristic QualityStrategyType = "heuristic"
)

// EscalationPolicy decides when context fusion calls the web search.
type EscalationPolicy string

const (
	// EscalationAlways searches the web for every query regardless of the verdict.
	EscalationAlways EscalationPolicy = "always"
	// EscalationOnDemand searches only when the verdict asks for web evidence.
	EscalationOnDemand EscalationPolicy = "on_demand"
)

type EmbedderType string

const (
	EmbedderLocal  EmbedderType = "local"
	EmbedderOpenAI EmbedderType = "openai"
)

type ChunkerType string

const (
	ChunkerSentence  ChunkerType = "sentence"
	ChunkerParagraph ChunkerType = "paragraph"
)

const DefaultSerpAPIURL = "https://serpapi.com/search.json"

// Config holds the application settings resolved once at startup.
type Config struct {
	// Language model
	OpenAIAPIKey  string `json:"-"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`
	ChatModel     string `json:"chat_model"`

	// Embeddings
	Embedder       EmbedderType `json:"embedder"`
	EmbeddingModel string       `json:"embedding_model"`
	EmbeddingDim   int          `json:"embedding_dim"`

	// Web search
	WebSearchAPIKey string `json:"-"`
	WebSearchURL    string `json:"web_search_url"`
	WebResults      int    `json:"web_results"`

	// Capabilities
	QualityStrategy QualityStrategyType `json:"quality_strategy"`
	Escalation      EscalationPolicy    `json:"escalation"`
	VisionEnabled   bool                `json:"vision_enabled"`

	// Retrieval and augmentation
	Chunker           ChunkerType `json:"chunker"`
	TopK              int         `json:"top_k"`
	SentencesPerChunk int         `json:"sentences_per_chunk"`
	MaxContextTokens  int         `json:"max_context_tokens"`

	// Timeouts of external calls
	EmbedTimeout     time.Duration `json:"embed_timeout"`
	SearchTimeout    time.Duration `json:"search_timeout"`
	AnalysisTimeout  time.Duration `json:"analysis_timeout"`
	WebSearchTimeout time.Duration `json:"web_search_timeout"`
	GenerateTimeout  time.Duration `json:"generate_timeout"`
}

// DefaultConfig returns the configuration used when no environment overrides are set.
func DefaultConfig() Config {
	return Config{
		ChatModel:         "gpt-4o-mini",
		Embedder:          EmbedderLocal,
		EmbeddingModel:    "text-embedding-3-small",
		EmbeddingDim:      384,
		WebSearchURL:      DefaultSerpAPIURL,
		WebResults:        5,
		QualityStrategy:   QualityStrategyLLM,
		Escalation:        EscalationAlways,
		VisionEnabled:     false,
		Chunker:           ChunkerSentence,
		TopK:              5,
		SentencesPerChunk: 5,
		MaxContextTokens:  6000,
		EmbedTimeout:      30 * time.Second,
		SearchTimeout:     10 * time.Second,
		AnalysisTimeout:   30 * time.Second,
		WebSearchTimeout:  15 * time.Second,
		GenerateTimeout:   60 * time.Second,
	}
}

// NewConfigFromEnv applies environment overrides to DefaultConfig and validates the result.
func NewConfigFromEnv() (*Config, error) {
	config := DefaultConfig()
	var err error

	config.OpenAIAPIKey = helper.GetEnvString("OPENAI_API_KEY", "")
	config.OpenAIBaseURL = helper.GetEnvString("OPENAI_BASE_URL", "")
	config.ChatModel = helper.GetEnvString("CRAG_CHAT_MODEL", config.ChatModel)
	config.Embedder = EmbedderType(helper.GetEnvString("CRAG_EMBEDDER", string(config.Embedder)))
	config.EmbeddingModel = helper.GetEnvString("CRAG_EMBEDDING_MODEL", config.EmbeddingModel)
	config.WebSearchAPIKey = helper.GetEnvString("SERPAPI_API_KEY", "")
	config.WebSearchURL = helper.GetEnvString("CRAG_WEB_SEARCH_URL", config.WebSearchURL)
	config.QualityStrategy = QualityStrategyType(helper.GetEnvString("CRAG_QUALITY_STRATEGY", string(config.QualityStrategy)))
	config.Escalation = EscalationPolicy(helper.GetEnvString("CRAG_ESCALATION", string(config.Escalation)))
	config.Chunker = ChunkerType(helper.GetEnvString("CRAG_CHUNKER", string(config.Chunker)))

	ints := []struct {
		key    string
		target *int
	}{
		{"CRAG_EMBEDDING_DIM", &config.EmbeddingDim},
		{"CRAG_WEB_RESULTS", &config.WebResults},
		{"CRAG_TOP_K", &config.TopK},
		{"CRAG_SENTENCES_PER_CHUNK", &config.SentencesPerChunk},
		{"CRAG_MAX_CONTEXT_TOKENS", &config.MaxContextTokens},
	}
	for _, i := range ints {
		if *i.target, err = helper.GetEnvInt(i.key, *i.target); err != nil {
			return nil, helper.NewError("config", err)
		}
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"CRAG_EMBED_TIMEOUT", &config.EmbedTimeout},
		{"CRAG_SEARCH_TIMEOUT", &config.SearchTimeout},
		{"CRAG_ANALYSIS_TIMEOUT", &config.AnalysisTimeout},
		{"CRAG_WEB_SEARCH_TIMEOUT", &config.WebSearchTimeout},
		{"CRAG_GENERATE_TIMEOUT", &config.GenerateTimeout},
	}
	for _, d := range durations {
		if *d.target, err = helper.GetEnvDuration(d.key, *d.target); err != nil {
			return nil, helper.NewError("config", err)
		}
	}

	if config.VisionEnabled, err = helper.GetEnvBool("CRAG_VISION_ENABLED", config.VisionEnabled); err != nil {
		return nil, helper.NewError("config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks enum values and positive limits.
func (c *Config) Validate() error {
	switch c.QualityStrategy {
	case QualityStrategyLLM, QualityStrategyHeuristic:
	default:
		return helper.NewError("config validation", fmt.Errorf("unknown quality strategy %q (use %q or %q)", c.QualityStrategy, QualityStrategyLLM, QualityStrategyHeuristic))
	}

	switch c.Escalation {
	case EscalationAlways, EscalationOnDemand:
	default:
		return helper.NewError("config validation", fmt.Errorf("unknown escalation policy %q (use %q or %q)", c.Escalation, EscalationAlways, EscalationOnDemand))
	}

	switch c.Embedder {
	case EmbedderLocal, EmbedderOpenAI:
	default:
		return helper.NewError("config validation", fmt.Errorf("unknown embedder %q (use %q or %q)", c.Embedder, EmbedderLocal, EmbedderOpenAI))
	}

	switch c.Chunker {
	case ChunkerSentence, ChunkerParagraph:
	default:
		return helper.NewError("config validation", fmt.Errorf("unknown chunker %q (use %q or %q)", c.Chunker, ChunkerSentence, ChunkerParagraph))
	}

	if c.Embedder == EmbedderOpenAI && c.OpenAIAPIKey == "" {
		return helper.NewError("config validation", fmt.Errorf("embedder %q requires OPENAI_API_KEY", EmbedderOpenAI))
	}
	if c.EmbeddingDim <= 0 {
		return helper.NewError("config validation", fmt.Errorf("embedding dimension must be positive, got %d", c.EmbeddingDim))
	}
	if c.TopK <= 0 {
		return helper.NewError("config validation", fmt.Errorf("top k must be positive, got %d", c.TopK))
	}
	if c.WebResults <= 0 {
		return helper.NewError("config validation", fmt.Errorf("web results must be positive, got %d", c.WebResults))
	}
	if c.SentencesPerChunk <= 0 {
		return helper.NewError("config validation", fmt.Errorf("sentences per chunk must be positive, got %d", c.SentencesPerChunk))
	}
	if c.MaxContextTokens <= 0 {
		return helper.NewError("config validation", fmt.Errorf("max context tokens must be positive, got %d", c.MaxContextTokens))
	}

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"embed", c.EmbedTimeout},
		{"search", c.SearchTimeout},
		{"analysis", c.AnalysisTimeout},
		{"web search", c.WebSearchTimeout},
		{"generate", c.GenerateTimeout},
	}
	for _, timeout := range timeouts {
		if timeout.value <= 0 {
			return helper.NewError("config validation", fmt.Errorf("%s timeout must be positive, got %s", timeout.name, timeout.value))
		}
	}

	return nil
}

// QueryConfig returns the per-query settings derived from c.
func (c *Config) QueryConfig() QueryConfig {
	return QueryConfig{
		TopK:       c.TopK,
		WebResults: c.WebResults,
		Escalation: c.Escalation,
	}
}

// QueryConfig represents configuration for a single query
type QueryConfig struct {
	TopK       int              `json:"top_k"`
	WebResults int              `json:"web_results"`
	Escalation EscalationPolicy `json:"escalation"`
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	config := DefaultConfig()
	return config.QueryConfig()
}
