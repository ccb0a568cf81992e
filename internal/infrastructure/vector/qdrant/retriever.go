package qdrant

import (
	"context"
	"fmt"

	"github.com/athenus-project/rag-engine/internal/core/domain"
	"github.com/athenus-project/rag-engine/internal/core/ports"
)

// Retriever embeds the query and searches the collection. It binds one
// embedder to one role's collection.
type Retriever struct {
	client   *Client
	embedder ports.Embedder
}

func NewRetriever(client *Client, embedder ports.Embedder) *Retriever {
	return &Retriever{client: client, embedder: embedder}
}

func (r *Retriever) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.client.Search(ctx, vector, k)
}
