package driving

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// DocumentService manages indexed documents, chunks and collections across
// both stores. All deletions keep the stores consistent: vector entries go
// first, then relational rows.
type DocumentService interface {
	// ListCollections returns the names of all vector collections.
	ListCollections(ctx context.Context) ([]string, error)

	// DeleteCollection removes a collection and all its documents, chunks
	// and vector entries.
	DeleteCollection(ctx context.Context, collection string) error

	// ListDocumentHeaders lists headers, optionally filtered by collection
	// (empty string lists all).
	ListDocumentHeaders(ctx context.Context, collection string) ([]domain.DocumentHeader, error)

	// GetDocument returns the full document.
	GetDocument(ctx context.Context, collection, id string) (*domain.Document, error)

	// GetDocumentHeader returns the document without raw bytes.
	GetDocumentHeader(ctx context.Context, collection, id string) (*domain.DocumentHeader, error)

	// UpdateDocument updates metadata fields only.
	UpdateDocument(ctx context.Context, collection, id string, meta domain.DocumentMetadata) (*domain.DocumentHeader, error)

	// DeleteDocument removes a document from both stores.
	DeleteDocument(ctx context.Context, collection, id string) error

	// DeleteChunkGroup removes one chunk group and its chunks from both
	// stores.
	DeleteChunkGroup(ctx context.Context, collection, chunkGroupID string) error

	// ListChunksByDocument returns a document's chunks in split order.
	ListChunksByDocument(ctx context.Context, collection, documentID string) ([]domain.Chunk, error)

	// GetChunk returns one chunk with its content.
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// DeleteChunk removes one chunk from both stores.
	DeleteChunk(ctx context.Context, collection, chunkID string) error

	// CollectionChunkCount counts the chunks stored for a collection.
	CollectionChunkCount(ctx context.Context, collection string) (int, error)
}
