package usecase

import (
	"strings"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

const (
	fallbackResults = 3

	// NoContextMessage is returned when even the keyword fallback finds
	// nothing. It is an answer, not an error.
	NoContextMessage = "I could not find relevant information. Could you rephrase your question?"
)

// keywordFallback is the degraded path used only when both primary retrieval
// signals come back empty. It lowercases and whitespace-splits the query and
// scans the corpus in original order; a chunk qualifies when any keyword is a
// substring of its lowercased text. Fusion and reranking are bypassed.
func keywordFallback(chunks []domain.Chunk, query string) string {
	keywords := strings.Fields(strings.ToLower(query))

	matched := make([]string, 0, fallbackResults)
	for _, chunk := range chunks {
		if len(matched) == fallbackResults {
			break
		}
		text := strings.ToLower(chunk.Text)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, chunk.Text)
				break
			}
		}
	}

	if len(matched) == 0 {
		return NoContextMessage
	}
	return strings.Join(matched, "\n")
}
