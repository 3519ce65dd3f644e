package model

// FusedContext is the combined local and web evidence handed to prompt augmentation.
type FusedContext struct {
	LocalSection string `json:"local_section"`
	WebSection   string `json:"web_section"`
	Combined     string `json:"combined"`
	// Observability
	WebQuery    string `json:"web_query,omitempty"`
	WebSearched bool   `json:"web_searched"`
	WebDegraded bool   `json:"web_degraded,omitempty"`
}

// QueryResult is everything produced for one query.
type QueryResult struct {
	Query   string          `json:"query"`
	Chunks  []*Chunk        `json:"chunks"`
	Verdict *QualityVerdict `json:"verdict"`
	Context *FusedContext   `json:"context"`
	Answer  string          `json:"answer,omitempty"`
}
