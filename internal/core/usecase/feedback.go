package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/athenus-project/rag-engine/internal/core/domain"
	"github.com/athenus-project/rag-engine/internal/core/ports"
)

// FeedbackObserver counts accepted feedback by rating.
type FeedbackObserver interface {
	ObserveFeedback(rating int)
}

type noopFeedbackObserver struct{}

func (noopFeedbackObserver) ObserveFeedback(int) {}

// FeedbackUseCase appends ratings to the local feedback log and publishes
// them for durable storage by the worker. The log append is the contract;
// the publish is best-effort.
type FeedbackUseCase struct {
	log      ports.FeedbackLog
	queue    ports.FeedbackQueue
	logger   *slog.Logger
	observer FeedbackObserver
}

func NewFeedbackUseCase(log ports.FeedbackLog, queue ports.FeedbackQueue, logger *slog.Logger, observer FeedbackObserver) *FeedbackUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = noopFeedbackObserver{}
	}
	return &FeedbackUseCase{log: log, queue: queue, logger: logger, observer: observer}
}

func (uc *FeedbackUseCase) Record(ctx context.Context, query, answer string, rating int) error {
	fb := domain.Feedback{Query: query, Answer: answer, Rating: rating}
	if !fb.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "record feedback", fmt.Errorf("rating must be 1..5, got %d", rating))
	}

	if err := uc.log.Append(fb); err != nil {
		return fmt.Errorf("append feedback log: %w", err)
	}
	uc.observer.ObserveFeedback(fb.Rating)

	if uc.queue != nil {
		if err := uc.queue.PublishFeedback(ctx, fb); err != nil {
			uc.logger.Error("feedback_publish_failed", "error", err)
		}
	}
	return nil
}
