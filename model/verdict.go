package model

import "strings"

// QualityVerdict is the outcome of judging whether retrieved chunks answer a query.
type QualityVerdict struct {
	RelevanceScore    float64 `json:"relevance_score"`
	IsSufficient      bool    `json:"is_sufficient"`
	RequiresWebSearch bool    `json:"requires_web_search"`
	Reasoning         string  `json:"reasoning,omitempty"`
	SuggestedQuery    *string `json:"suggested_query,omitempty"`
	// Observability
	Strategy string `json:"strategy,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// SafeDefaultVerdict trusts local retrieval. It is returned when analysis fails.
func SafeDefaultVerdict(strategy string, reasoning string) *QualityVerdict {
	return &QualityVerdict{
		RelevanceScore:    5,
		IsSufficient:      true,
		RequiresWebSearch: false,
		Reasoning:         reasoning,
		Strategy:          strategy,
		Degraded:          true,
	}
}

// NeedsWebSearch reports whether either signal of the verdict asks for web evidence.
// Analyzers may set IsSufficient and RequiresWebSearch inconsistently, in that case escalation wins.
func (v *QualityVerdict) NeedsWebSearch() bool {
	if v == nil {
		return false
	}
	return v.RequiresWebSearch || !v.IsSufficient
}

// SearchQuery returns the suggested query if present, otherwise the original query.
func (v *QualityVerdict) SearchQuery(original string) string {
	if v != nil && v.SuggestedQuery != nil {
		if suggested := strings.TrimSpace(*v.SuggestedQuery); suggested != "" {
			return suggested
		}
	}
	return original
}

// ClampScore limits a relevance score to the 0-10 range.
func ClampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 10:
		return 10
	default:
		return score
	}
}
