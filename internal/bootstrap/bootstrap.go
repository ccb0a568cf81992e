package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	httpadapter "github.com/athenus-project/rag-engine/internal/adapters/http"
	"github.com/athenus-project/rag-engine/internal/config"
	"github.com/athenus-project/rag-engine/internal/core/domain"
	"github.com/athenus-project/rag-engine/internal/core/ports"
	"github.com/athenus-project/rag-engine/internal/core/session"
	"github.com/athenus-project/rag-engine/internal/core/usecase"
	"github.com/athenus-project/rag-engine/internal/infrastructure/lexical"
	"github.com/athenus-project/rag-engine/internal/infrastructure/llm/ollama"
	"github.com/athenus-project/rag-engine/internal/infrastructure/loader"
	"github.com/athenus-project/rag-engine/internal/infrastructure/queue/nats"
	"github.com/athenus-project/rag-engine/internal/infrastructure/reranker/tei"
	"github.com/athenus-project/rag-engine/internal/infrastructure/repository/postgres"
	"github.com/athenus-project/rag-engine/internal/infrastructure/resilience"
	"github.com/athenus-project/rag-engine/internal/infrastructure/storage/localfs"
	"github.com/athenus-project/rag-engine/internal/infrastructure/vector/memory"
	"github.com/athenus-project/rag-engine/internal/infrastructure/vector/qdrant"
	"github.com/athenus-project/rag-engine/internal/observability/metrics"
)

type API struct {
	Config  config.Config
	Handler http.Handler
	Metrics *metrics.HTTPServerMetrics

	closeFn func()
}

func NewAPI(ctx context.Context, cfg config.Config, logger *slog.Logger) (*API, error) {
	if logger == nil {
		logger = slog.Default()
	}

	roles, err := config.LoadRoles(cfg.RolesConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	exec := resilience.NewExecutor(resilience.DefaultConfig(), logger)
	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, exec)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)
	reranker := tei.New(cfg.RerankerURL, exec)

	docs := loader.NewService(loader.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap), logger)

	registry := usecase.NewRoleCorpusRegistry(roles.DefaultRole)
	for role, paths := range roles.Roles {
		registry.MarkConfigured(role)

		ci, err := buildCorpus(ctx, cfg, role, paths, docs, embedder, exec, logger)
		if err != nil {
			logger.Error("role_corpus_build_failed", "role", role, "error", err)
			continue
		}
		registry.Register(ci)
		logger.Info("role_corpus_ready", "role", role, "chunks", len(ci.Chunks))
	}
	if len(registry.Roles()) == 0 {
		return nil, fmt.Errorf("no role corpus could be built")
	}

	feedbackLog, err := localfs.NewFeedbackLog(cfg.FeedbackLogPath)
	if err != nil {
		return nil, fmt.Errorf("init feedback log: %w", err)
	}

	var queue ports.FeedbackQueue
	var closeQueue func()
	natsQueue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: exec})
	if err != nil {
		// Feedback publishing is best-effort; the api serves without a broker.
		logger.Warn("nats_unavailable", "error", err)
	} else {
		queue = natsQueue
		closeQueue = natsQueue.Close
	}

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	sessions := session.NewStore()

	retrieveUC := usecase.NewRetrieveUseCase(registry, sessions, reranker, logger, httpMetrics.RetrievalObserver("api"))
	chatUC := usecase.NewChatUseCase(retrieveUC, generator, sessions, logger)
	feedbackUC := usecase.NewFeedbackUseCase(feedbackLog, queue, logger, httpMetrics.FeedbackObserver("api"))

	limiter := httpadapter.NewClientLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	router := httpadapter.NewRouter(chatUC, feedbackUC, limiter, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", httpMetrics.Handler())
	mux.Handle("/", httpMetrics.Middleware("api", router.Handler()))

	return &API{
		Config:  cfg,
		Handler: mux,
		Metrics: httpMetrics,
		closeFn: func() {
			if closeQueue != nil {
				closeQueue()
			}
		},
	}, nil
}

func (a *API) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// buildCorpus loads one role's documents and derives every retrieval view
// from the same chunk ordering.
func buildCorpus(
	ctx context.Context,
	cfg config.Config,
	role string,
	paths []string,
	docs ports.DocumentLoader,
	embedder ports.Embedder,
	exec *resilience.Executor,
	logger *slog.Logger,
) (*usecase.CorpusIndex, error) {
	chunks, err := docs.Load(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks loaded")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	sparse := lexical.NewBM25L(texts, cfg.BM25K1, cfg.BM25B, cfg.BM25Delta)
	terms := lexical.NewTFIDF(texts)

	dense, err := buildDenseIndex(ctx, cfg, role, chunks, embedder, exec, logger)
	if err != nil {
		return nil, fmt.Errorf("build dense index: %w", err)
	}

	return &usecase.CorpusIndex{
		Role:   role,
		Chunks: chunks,
		Sparse: sparse,
		Terms:  terms,
		Dense:  dense,
	}, nil
}

func buildDenseIndex(
	ctx context.Context,
	cfg config.Config,
	role string,
	chunks []domain.Chunk,
	embedder ports.Embedder,
	exec *resilience.Executor,
	logger *slog.Logger,
) (ports.DenseRetriever, error) {
	var (
		indexer   ports.DenseIndexer
		retriever ports.DenseRetriever
	)
	switch cfg.VectorBackend {
	case "memory":
		store := memory.NewStore()
		indexer = store
		retriever = memory.NewRetriever(store, embedder)
	default:
		client := qdrant.New(cfg.QdrantURL, fmt.Sprintf("%s_%s", cfg.QdrantCollectionPrefix, role), exec)
		indexer = client
		retriever = qdrant.NewRetriever(client, embedder)
	}

	batch := cfg.EmbedBatchSize
	if batch <= 0 {
		batch = 64
	}
	for start := 0; start < len(chunks); start += batch {
		end := start + batch
		if end > len(chunks) {
			end = len(chunks)
		}
		part := chunks[start:end]

		texts := make([]string, len(part))
		for i, c := range part {
			texts[i] = c.Text
		}
		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d..%d: %w", start, end, err)
		}
		if len(vectors) != len(part) {
			return nil, fmt.Errorf("embedding count mismatch: %d vs %d", len(vectors), len(part))
		}
		if err := indexer.IndexChunks(ctx, part, vectors); err != nil {
			return nil, fmt.Errorf("index chunks %d..%d: %w", start, end, err)
		}
	}
	logger.Info("dense_index_built", "role", role, "chunks", len(chunks), "backend", cfg.VectorBackend)
	return retriever, nil
}

type Worker struct {
	Config  config.Config
	Queue   ports.FeedbackQueue
	Store   ports.FeedbackStore
	Metrics *metrics.WorkerMetrics

	closeFn func()
}

func NewWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Worker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewFeedbackRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	exec := resilience.NewExecutor(resilience.DefaultConfig(), logger)
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: exec})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	return &Worker{
		Config:  cfg,
		Queue:   queue,
		Store:   repo,
		Metrics: metrics.NewWorkerMetrics("worker"),
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (w *Worker) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
