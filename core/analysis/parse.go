package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/siherrmann/crag/model"
	"github.com/tidwall/gjson"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// extractJSON returns the JSON object embedded in a model answer. It accepts a
// bare object, an object inside a fenced code block, or an object surrounded by prose.
func extractJSON(answer string) (string, error) {
	candidate := strings.TrimSpace(answer)
	if m := fencedBlock.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	}

	if gjson.Valid(candidate) && strings.HasPrefix(candidate, "{") {
		return candidate, nil
	}
	if !strings.Contains(candidate, "{") {
		return "", fmt.Errorf("no json object in answer")
	}

	// Prose may contain braces of its own. Take the first object that parses
	// and carries a score, otherwise the first one that parses.
	var opens, closes []int
	for i, r := range candidate {
		switch r {
		case '{':
			opens = append(opens, i)
		case '}':
			closes = append(closes, i)
		}
	}

	first := ""
	for _, start := range opens {
		for _, end := range closes {
			if end <= start {
				continue
			}
			raw := candidate[start : end+1]
			if !gjson.Valid(raw) {
				continue
			}
			if lookup(raw, "relevanceScore", "relevance_score").Exists() {
				return raw, nil
			}
			if first == "" {
				first = raw
			}
			break
		}
	}

	if first == "" {
				first = raw
			}
		}
		next := strings.Index(candidate[i+1:], "{")
		if next < 0 {
			break
		}
		i += next + 1
	}

	if first == "" {
		return "", fmt.Errorf("invalid json in answer")
	}
	return first, nil
}

// lookup returns the first existing field among the given names.
func lookup(json string, names ...string) gjson.Result {
	for _, name := range names {
		if r := gjson.Get(json, name); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

// parseVerdict maps a model answer to a verdict. Score and both flags are required.
func parseVerdict(answer string) (*model.QualityVerdict, error) {
	json, err := extractJSON(answer)
	if err != nil {
		return nil, err
	}

	score := lookup(json, "relevanceScore", "relevance_score")
	if score.Type != gjson.Number {
		return nil, fmt.Errorf("missing numeric relevanceScore")
	}
	sufficient := lookup(json, "isSufficient", "is_sufficient")
	if !sufficient.IsBool() {
		return nil, fmt.Errorf("missing boolean isSufficient")
	}
	requiresWeb := lookup(json, "requiresWebSearch", "requires_web_search")
	if !requiresWeb.IsBool() {
		return nil, fmt.Errorf("missing boolean requiresWebSearch")
	}

	verdict := &model.QualityVerdict{
		RelevanceScore:    model.ClampScore(score.Float()),
		IsSufficient:      sufficient.Bool(),
		RequiresWebSearch: requiresWeb.Bool(),
		Reasoning:         lookup(json, "reasoning").String(),
	}

	suggested := lookup(json, "suggestedQuery", "suggested_query")
	if suggested.Type == gjson.String && strings.TrimSpace(suggested.String()) != "" {
		q := strings.TrimSpace(suggested.String())
		verdict.SuggestedQuery = &q
	}

	return verdict, nil
}
