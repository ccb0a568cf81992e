package ports

import (
	"context"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

// ContextRetriever is the inbound contract for hybrid retrieval: it resolves
// the role corpus and the user session, runs fusion ranking and returns the
// final context text. Internal retrieval failures degrade the result, they
// never surface as errors; the only error cases are invalid input and an
// unavailable role corpus.
type ContextRetriever interface {
	Retrieve(ctx context.Context, role, userID, query string) (string, error)
}

// ChatService answers a question using retrieved context.
type ChatService interface {
	Ask(ctx context.Context, role, userID, question string) (*domain.Answer, error)
}

// FeedbackRecorder records a user rating for an answered query.
type FeedbackRecorder interface {
	Record(ctx context.Context, query, answer string, rating int) error
}
