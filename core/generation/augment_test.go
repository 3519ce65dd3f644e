package generation

import (
	"strings"
	"testing"

	"github.com/siherrmann/crag/core/fusion"
	"github.com/siherrmann/crag/model"
	"github.com/stretchr/testify/assert"
)

func fusedOf(local, web string) *model.FusedContext {
	return &model.FusedContext{
		LocalSection: local,
		WebSection:   web,
		Combined:     fusion.Combine(local, web),
	}
}

func TestAugment(t *testing.T) {
	tokenizer := &Tokenizer{}
	fused := fusedOf("Section 2 covers retrieval.", "[Web Source 1: T]\nURL: U\nContent: S")

	prompt := Augment("  What does section 2 cover?  ", fused, 1000, tokenizer)

	assert.Contains(t, prompt, fused.Combined, "Expected unbounded context when it fits")
	assert.Contains(t, prompt, "Question: What does section 2 cover?\n")
	assert.Less(t, strings.Index(prompt, fusion.LocalHeader), strings.Index(prompt, "Question:"))
}

func TestBoundContext(t *testing.T) {
	tokenizer := &Tokenizer{}
	headers := tokenizer.Count(fusion.Combine("", ""))

	t.Run("Fits unchanged", func(t *testing.T) {
		fused := fusedOf("local", "web")

		assert.Equal(t, fused.Combined, BoundContext(fused, 1000, tokenizer))
	})

	t.Run("Web section is shortened first", func(t *testing.T) {
		local := strings.Repeat("l", 40)
		web := strings.Repeat("w", 400)
		maxTokens := headers + 10 + 30

		bounded := BoundContext(fusedOf(local, web), maxTokens, tokenizer)

		assert.LessOrEqual(t, tokenizer.Count(bounded), maxTokens)
		assert.Contains(t, bounded, local, "Expected local section to survive intact")
		assert.Contains(t, bounded, truncationMarker)
		assert.Contains(t, bounded, fusion.WebHeader)
	})

	t.Run("Local section is shortened when it alone is too long", func(t *testing.T) {
		local := strings.Repeat("l", 400)
		maxTokens := headers + 20

		bounded := BoundContext(fusedOf(local, "web evidence"), maxTokens, tokenizer)

		assert.LessOrEqual(t, tokenizer.Count(bounded), maxTokens)
		assert.NotContains(t, bounded, "web evidence")
		assert.True(t, strings.HasPrefix(bounded, fusion.LocalHeader))
	})

	t.Run("Budget below headers keeps only headers", func(t *testing.T) {
		bounded := BoundContext(fusedOf(strings.Repeat("l", 400), "web"), 1, tokenizer)

		assert.Equal(t, fusion.Combine("", ""), bounded)
	})

	t.Run("Nil context", func(t *testing.T) {
		assert.Equal(t, fusion.Combine("", ""), BoundContext(nil, 100, tokenizer))
	})
}
