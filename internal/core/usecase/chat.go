package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/athenus-project/rag-engine/internal/core/domain"
	"github.com/athenus-project/rag-engine/internal/core/ports"
	"github.com/athenus-project/rag-engine/internal/core/session"
)

// ChatUseCase answers a question from retrieved context and records both
// sides of the exchange in the user's session.
type ChatUseCase struct {
	retriever ports.ContextRetriever
	generator ports.AnswerGenerator
	sessions  *session.Store
	logger    *slog.Logger
}

func NewChatUseCase(
	retriever ports.ContextRetriever,
	generator ports.AnswerGenerator,
	sessions *session.Store,
	logger *slog.Logger,
) *ChatUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatUseCase{
		retriever: retriever,
		generator: generator,
		sessions:  sessions,
		logger:    logger,
	}
}

func (uc *ChatUseCase) Ask(ctx context.Context, role, userID, question string) (*domain.Answer, error) {
	contextText, err := uc.retriever.Retrieve(ctx, role, userID, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	history := uc.sessions.Get(userID).Turns()
	answerText, err := uc.generator.GenerateAnswer(ctx, question, contextText, history)
	if err != nil {
		uc.logger.Error("answer_generation_failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answerText = strings.TrimSpace(answerText)

	uc.sessions.Get(userID).AppendAssistant(answerText)

	return &domain.Answer{
		Text:    answerText,
		Context: contextText,
	}, nil
}
