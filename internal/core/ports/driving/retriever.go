package driving

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// Retriever answers semantic-similarity queries over a collection.
type Retriever interface {
	// Retrieve returns up to topK chunks ranked by ascending distance,
	// deduplicated by chunk id. An empty result is a non-nil empty slice,
	// never an error. topK <= 0 uses the configured default.
	Retrieve(ctx context.Context, collection, queryText string, topK int) ([]domain.RetrievedChunk, error)
}
