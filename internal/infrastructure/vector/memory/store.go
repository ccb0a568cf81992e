package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/athenus-project/rag-engine/internal/core/domain"
	"github.com/athenus-project/rag-engine/internal/core/ports"
)

// Store is an in-process vector index used when no qdrant instance is
// configured. Brute-force cosine scan; fine for the corpus sizes a single
// role carries.
type Store struct {
	mu      sync.RWMutex
	chunks  []domain.Chunk
	vectors [][]float32
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) IndexChunks(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d vs %d", len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns up to limit chunks by descending cosine similarity.
func (s *Store) Search(_ context.Context, queryVector []float32, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		chunk domain.Chunk
		score float64
	}
	hits := make([]scored, 0, len(s.chunks))
	for i, vec := range s.vectors {
		hits = append(hits, scored{chunk: s.chunks[i], score: cosine(queryVector, vec)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if limit > len(hits) {
		limit = len(hits)
	}
	out := make([]domain.Chunk, 0, limit)
	for _, h := range hits[:limit] {
		out = append(out, h.chunk)
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Retriever embeds the query and scans the store.
type Retriever struct {
	store    *Store
	embedder ports.Embedder
}

func NewRetriever(store *Store, embedder ports.Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

func (r *Retriever) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.store.Search(ctx, vector, k)
}
