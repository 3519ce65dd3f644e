package generation

import (
	"fmt"
	"strings"

	"github.com/siherrmann/crag/core/fusion"
	"github.com/siherrmann/crag/model"
)

const truncationMarker = "\n[context truncated]"

const answerPrompt = `Answer the question using the context below. The context has a local document section and a web search section.
Prefer the local documents, use the web results for recent or missing facts, and cite web sources by their number.
If the context does not contain the answer, say so.

%s

Question: %s

Answer:`

// Augment builds the final prompt. The fused context is limited to maxTokens;
// the web section is shortened first so local evidence survives longest.
func Augment(query string, fused *model.FusedContext, maxTokens int, tokenizer *Tokenizer) string {
	bounded := BoundContext(fused, maxTokens, tokenizer)
	return fmt.Sprintf(answerPrompt, bounded, strings.TrimSpace(query))
}

// BoundContext returns the combined context limited to maxTokens tokens.
func BoundContext(fused *model.FusedContext, maxTokens int, tokenizer *Tokenizer) string {
	if fused == nil {
		return fusion.Combine("", "")
	}
	if tokenizer.Count(fused.Combined) <= maxTokens {
		return fused.Combined
	}

	headers := tokenizer.Count(fusion.Combine("", ""))
	marker := tokenizer.Count(truncationMarker)
	budget := maxTokens - headers
	if budget <= 0 {
		return fusion.Combine("", "")
	}

	local := fused.LocalSection
	if tokenizer.Count(local) > budget {
		local = tokenizer.Truncate(local, max(budget-marker, 0)) + truncationMarker
		return fusion.Combine(local, "")
	}

	remaining := budget - tokenizer.Count(local)
	web := fused.WebSection
	if tokenizer.Count(web) > remaining {
		if remaining <= marker {
			web = ""
		} else {
			web = tokenizer.Truncate(web, remaining-marker) + truncationMarker
		}
	}

	return fusion.Combine(local, web)
}
