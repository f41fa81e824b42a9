package driven

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// VectorStore owns embedded chunk vectors per named collection. Embedding
// happens inside the adapter; callers pass text, never vectors. Collections
// are created lazily on first upsert.
type VectorStore interface {
	// UpsertChunk embeds text and stores it under the chunk id in the
	// collection, together with denormalised metadata for query-time use.
	UpsertChunk(ctx context.Context, collection, chunkID, text string, meta domain.ChunkMetadata) error

	// Query embeds queryText and returns the topK nearest chunks ordered by
	// ascending distance.
	Query(ctx context.Context, collection, queryText string, topK int) ([]domain.RetrievedChunk, error)

	// DeleteChunk removes one vector entry.
	DeleteChunk(ctx context.Context, collection, chunkID string) error

	// DeleteDocument bulk-removes all entries whose metadata carries the
	// document id.
	DeleteDocument(ctx context.Context, collection, documentID string) error

	// DeleteCollection removes the collection and everything in it.
	DeleteCollection(ctx context.Context, collection string) error

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// Reset drops all collections.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
