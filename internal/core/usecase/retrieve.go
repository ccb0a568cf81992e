package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/athenus-project/rag-engine/internal/core/domain"
	"github.com/athenus-project/rag-engine/internal/core/ports"
	"github.com/athenus-project/rag-engine/internal/core/session"
)

const (
	retrievalTopK = 10

	rerankModelWeight    = 0.7
	rerankOriginalWeight = 0.3
)

// Outcomes reported to the retrieval observer.
const (
	OutcomeFused    = "fused"
	OutcomeFallback = "fallback"
)

// RetrievalObserver receives pipeline events for metrics. Implementations
// must be safe for concurrent use.
type RetrievalObserver interface {
	ObserveRetrieval(role, outcome string, duration time.Duration)
	ObserveSourceFailure(source string)
	ObserveRerankSkipped()
}

type noopObserver struct{}

func (noopObserver) ObserveRetrieval(string, string, time.Duration) {}
func (noopObserver) ObserveSourceFailure(string)                   {}
func (noopObserver) ObserveRerankSkipped()                         {}

// RetrieveUseCase is the hybrid retrieval pipeline: history-weighted query
// expansion, a concurrent dense+sparse join, term-weight-boosted heap
// fusion, cross-encoder reranking and the keyword fallback. Nothing inside
// the pipeline escapes as an error; every internal failure shrinks a signal
// or routes to the fallback.
type RetrieveUseCase struct {
	registry *RoleCorpusRegistry
	sessions *session.Store
	reranker ports.CrossEncoder
	logger   *slog.Logger
	observer RetrievalObserver
}

func NewRetrieveUseCase(
	registry *RoleCorpusRegistry,
	sessions *session.Store,
	reranker ports.CrossEncoder,
	logger *slog.Logger,
	observer RetrievalObserver,
) *RetrieveUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &RetrieveUseCase{
		registry: registry,
		sessions: sessions,
		reranker: reranker,
		logger:   logger,
		observer: observer,
	}
}

// Retrieve returns the context text for a query. The only error cases are a
// blank query and a role whose corpus is unavailable; retrieval failures
// degrade the result instead of surfacing.
func (uc *RetrieveUseCase) Retrieve(ctx context.Context, role, userID, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "retrieve", fmt.Errorf("query is required"))
	}
	if strings.TrimSpace(userID) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "retrieve", fmt.Errorf("user id is required"))
	}

	ci, substituted, err := uc.registry.Resolve(role)
	if err != nil {
		return "", fmt.Errorf("resolve role %q: %w", role, err)
	}
	if substituted {
		uc.logger.Warn("unknown_role_substituted",
			"requested_role", role,
			"default_role", uc.registry.DefaultRole(),
		)
	}

	start := time.Now()

	// The weighted history includes the turn just appended, so the current
	// question appears both raw and weighted in the combined query.
	turns := uc.sessions.Get(userID).AppendUser(query)
	weighted := weightHistory(turns, historyMaxMessages, historyDecay)
	combined := fmt.Sprintf("%s %s", query, weighted)

	dense, sparse := uc.gatherCandidates(ctx, ci, combined)

	if len(dense) == 0 && len(sparse) == 0 {
		uc.logger.Warn("primary_retrieval_empty",
			"role", ci.Role,
			"user_id", userID,
		)
		uc.observer.ObserveRetrieval(ci.Role, OutcomeFallback, time.Since(start))
		return keywordFallback(ci.Chunks, combined), nil
	}

	candidates := fuseCandidates(ci, combined, dense, sparse)
	ranked := uc.rerank(ctx, combined, candidates)

	limit := contextResults
	if len(ranked) < limit {
		limit = len(ranked)
	}
	texts := make([]string, 0, limit)
	for _, c := range ranked[:limit] {
		texts = append(texts, c.Text)
	}

	uc.observer.ObserveRetrieval(ci.Role, OutcomeFused, time.Since(start))
	return strings.Join(texts, "\n"), nil
}

// gatherCandidates fans out the dense and sparse retrievals and joins both
// results. Neither call cancels the other; a failure yields an empty slice
// for that source and is logged, never raised.
func (uc *RetrieveUseCase) gatherCandidates(ctx context.Context, ci *CorpusIndex, combined string) ([]domain.Chunk, []domain.DocScore) {
	var (
		dense  []domain.Chunk
		sparse []domain.DocScore
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := ci.Dense.SimilaritySearch(gctx, combined, retrievalTopK)
		if err != nil {
			uc.logger.Error("dense_search_failed", "role", ci.Role, "error", err)
			uc.observer.ObserveSourceFailure(domain.SourceDense)
			return nil
		}
		dense = hits
		return nil
	})
	g.Go(func() error {
		sparse = ci.Sparse.Retrieve(combined, retrievalTopK)
		return nil
	})
	_ = g.Wait()

	return dense, sparse
}

// rerank reorders the fused candidates with the cross-encoder, blending its
// score with the pre-rerank fused score. On reranker failure the fused order
// is kept as-is; the no-raise contract wins over the better ordering.
func (uc *RetrieveUseCase) rerank(ctx context.Context, combined string, candidates []domain.Candidate) []domain.Candidate {
	if uc.reranker == nil || len(candidates) == 0 {
		return candidates
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	scores, err := uc.reranker.Predict(ctx, combined, texts)
	if err != nil || len(scores) != len(candidates) {
		uc.logger.Error("rerank_failed_keeping_fused_order",
			"candidates", len(candidates),
			"error", err,
		)
		uc.observer.ObserveRerankSkipped()
		return candidates
	}

	out := make([]domain.Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].Score = rerankModelWeight*scores[i] + rerankOriginalWeight*out[i].Score
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
