package model

// WebResult is a single ranked result of a web search.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSearchResponse holds results in the ranking order of the search engine.
type WebSearchResponse struct {
	Results         []WebResult `json:"results"`
	FeaturedSnippet string      `json:"featured_snippet,omitempty"`
	KnowledgePanel  string      `json:"knowledge_panel,omitempty"`
}

// Empty reports whether the response carries no usable evidence.
func (r *WebSearchResponse) Empty() bool {
	return r == nil || (len(r.Results) == 0 && r.FeaturedSnippet == "" && r.KnowledgePanel == "")
}
