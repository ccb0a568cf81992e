package ports

import (
	"context"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

// DenseRetriever performs embedding similarity search over one role's corpus.
// Results are ordered by descending similarity, length at most k.
type DenseRetriever interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]domain.Chunk, error)
}

// DenseIndexer loads a role corpus into the vector backend at startup.
type DenseIndexer interface {
	IndexChunks(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
}

// SparseIndex scores a query against the corpus it was built from.
// Implementations are immutable after construction.
type SparseIndex interface {
	Retrieve(query string, topK int) []domain.DocScore
}

// TermWeightIndex exposes the fitted TF-IDF weighting of a query. The
// returned vector is indexed by corpus document position by the fusion step.
type TermWeightIndex interface {
	QueryWeights(query string) []float64
}

// CrossEncoder scores (query, text) pairs with a pairwise relevance model.
// The returned slice is aligned with the input texts.
type CrossEncoder interface {
	Predict(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// AnswerGenerator creates the final user-facing answer from retrieved context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextText string, history []domain.Turn) (string, error)
}

// DocumentLoader turns a role's document paths into an ordered chunk sequence.
type DocumentLoader interface {
	Load(ctx context.Context, paths []string) ([]domain.Chunk, error)
}

// FeedbackStore persists feedback durably.
type FeedbackStore interface {
	Save(ctx context.Context, fb domain.Feedback) error
}

// FeedbackLog appends feedback records to the local JSONL log. Append-only;
// no read path.
type FeedbackLog interface {
	Append(fb domain.Feedback) error
}

// FeedbackQueue publishes/consumes feedback events.
type FeedbackQueue interface {
	PublishFeedback(ctx context.Context, fb domain.Feedback) error
	SubscribeFeedback(ctx context.Context, handler func(context.Context, domain.Feedback) error) error
}
