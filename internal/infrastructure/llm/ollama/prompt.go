package ollama

import (
	"fmt"
	"strings"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

// promptHistoryTurns bounds how much raw dialogue is replayed to the model.
const promptHistoryTurns = 6

func buildAnswerPrompt(question, contextText string, history []domain.Turn) string {
	var historyBuilder strings.Builder
	start := len(history) - promptHistoryTurns
	if start < 0 {
		start = 0
	}
	for _, turn := range history[start:] {
		historyBuilder.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
	}

	return fmt.Sprintf(`Answer user question only from context below.
If context is insufficient, say it directly.

Conversation so far:
%s
Question:
%s

Context:
%s
`, historyBuilder.String(), question, contextText)
}
