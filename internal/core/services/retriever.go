package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
)

// Ensure Retriever implements the interface.
var _ driving.Retriever = (*Retriever)(nil)

// DefaultTopK is the result count when neither the caller nor the
// configuration says otherwise.
const DefaultTopK = 4

// Retriever answers similarity queries against the vector store.
type Retriever struct {
	vectorStore driven.VectorStore
	defaultTopK int
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithDefaultTopK sets the result count used when a query does not specify one.
func WithDefaultTopK(topK int) RetrieverOption {
	return func(r *Retriever) {
		if topK > 0 {
			r.defaultTopK = topK
		}
	}
}

// NewRetriever creates a retriever over the vector store.
func NewRetriever(vectorStore driven.VectorStore, opts ...RetrieverOption) *Retriever {
	retriever := &Retriever{
		vectorStore: vectorStore,
		defaultTopK: DefaultTopK,
	}
	for _, opt := range opts {
		opt(retriever)
	}
	return retriever
}

// Retrieve returns up to topK chunks by ascending distance, deduplicated by
// chunk id. A query that matches nothing returns an empty slice, not an error.
func (s *Retriever) Retrieve(ctx context.Context, collection, queryText string, topK int) ([]domain.RetrievedChunk, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: collection is required", domain.ErrInvalidInput)
	}
	if queryText == "" {
		return nil, fmt.Errorf("%w: query text is required", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	chunks, err := s.vectorStore.Query(ctx, collection, queryText, topK)
	if err != nil {
		return nil, fmt.Errorf("querying vector store: %w", err)
	}

	// Backends may return the same chunk more than once; keep the nearest.
	seen := make(map[string]bool, len(chunks))
	results := make([]domain.RetrievedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if seen[chunk.ID] {
			continue
		}
		seen[chunk.ID] = true
		results = append(results, chunk)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
