package pipeline

import (
	"fmt"
	"strings"

	"github.com/siherrmann/crag/model"
)

// splitSentences splits on sentence terminators followed by whitespace.
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "! ", "!|")
	text = strings.ReplaceAll(text, "? ", "?|")
	text = strings.ReplaceAll(text, ". ", ".|")

	var sentences []string
	for _, s := range strings.Split(text, "|") {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// SentenceChunker creates a chunker that groups maxSentencesPerChunk sentences per chunk
func SentenceChunker(maxSentencesPerChunk int) ChunkFunc {
	return func(text string) ([]TextChunk, error) {
		if maxSentencesPerChunk <= 0 {
			return nil, fmt.Errorf("max sentences per chunk must be positive")
		}

		sentences := splitSentences(text)
		chunks := []TextChunk{}
		for start := 0; start < len(sentences); start += maxSentencesPerChunk {
			end := min(start+maxSentencesPerChunk, len(sentences))
			chunks = append(chunks, TextChunk{
				Content: strings.Join(sentences[start:end], " "),
				Metadata: model.Metadata{
					"chunking_method": "sentence",
					"num_sentences":   end - start,
				},
			})
		}

		return chunks, nil
	}
}

// ParagraphChunker creates a chunker that splits by blank lines
func ParagraphChunker() ChunkFunc {
	return func(text string) ([]TextChunk, error) {
		text = strings.ReplaceAll(text, "\r\n", "\n")

		chunks := []TextChunk{}
		for _, para := range strings.Split(text, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}

			chunks = append(chunks, TextChunk{
				Content:  para,
				Metadata: model.Metadata{"chunking_method": "paragraph"},
			})
		}

		return chunks, nil
	}
}
