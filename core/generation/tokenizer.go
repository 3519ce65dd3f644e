package generation

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding shared by the gpt-4 and gpt-3.5 model families.
const DefaultEncoding = "cl100k_base"

// Tokenizer counts and truncates text in model tokens.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenizer loads the named encoding. If it cannot be loaded the tokenizer
// estimates four runes per token.
func NewTokenizer(encoding string) *Tokenizer {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return &Tokenizer{}
	}
	return &Tokenizer{encoding: enc}
}

// Estimating reports whether the tokenizer fell back to the rune estimate.
func (t *Tokenizer) Estimating() bool {
	return t.encoding == nil
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	if t.encoding == nil {
		return (utf8.RuneCountInString(text) + 3) / 4
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// Truncate returns the longest prefix of text with at most maxTokens tokens.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}

	if t.encoding == nil {
		runes := []rune(text)
		if len(runes) <= maxTokens*4 {
			return text
		}
		return string(runes[:maxTokens*4])
	}

	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.encoding.Decode(tokens[:maxTokens])
}
