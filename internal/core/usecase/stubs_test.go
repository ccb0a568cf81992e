package usecase

import (
	"context"
	"sync"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

type stubDense struct {
	mu      sync.Mutex
	chunks  []domain.Chunk
	err     error
	queries []string
}

func (s *stubDense) SimilaritySearch(_ context.Context, query string, _ int) ([]domain.Chunk, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks, nil
}

func (s *stubDense) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.queries))
	copy(out, s.queries)
	return out
}

type stubSparse struct {
	hits []domain.DocScore
}

func (s *stubSparse) Retrieve(string, int) []domain.DocScore { return s.hits }

type stubTerms struct {
	weights []float64
}

func (s *stubTerms) QueryWeights(string) []float64 { return s.weights }

type stubCross struct {
	scores []float64
	err    error
	called bool
}

func (s *stubCross) Predict(_ context.Context, _ string, texts []string) ([]float64, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	if s.scores != nil {
		return s.scores, nil
	}
	return make([]float64, len(texts)), nil
}

func chunksOf(texts ...string) []domain.Chunk {
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.Chunk{Index: i, Text: t}
	}
	return out
}

func corpusFor(role string, dense *stubDense, sparse *stubSparse, terms *stubTerms, texts ...string) *CorpusIndex {
	if sparse == nil {
		sparse = &stubSparse{}
	}
	if terms == nil {
		terms = &stubTerms{}
	}
	if dense == nil {
		dense = &stubDense{}
	}
	return &CorpusIndex{
		Role:   role,
		Chunks: chunksOf(texts...),
		Sparse: sparse,
		Terms:  terms,
		Dense:  dense,
	}
}
