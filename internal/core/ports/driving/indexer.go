package driving

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// IndexRequest describes one document to index.
type IndexRequest struct {
	// Collection names the target partition.
	Collection string

	// FileName and FileType describe the source file.
	FileName string
	FileType string

	// Data is the raw file content.
	Data []byte

	// Metadata carries the free-text document fields.
	Metadata domain.DocumentMetadata

	// ChunkSize overrides the configured default when positive.
	ChunkSize int

	// ChunkOverlap overrides the configured default when set. A pointer so
	// an explicit zero overlap is distinguishable from "use the default".
	ChunkOverlap *int
}

// Indexer coordinates hashing, splitting and the dual-store writes that
// make a document retrievable.
type Indexer interface {
	// IndexDocument indexes one document and returns its content-derived
	// id. On any failure the partial state created so far is rolled back
	// from both stores before the error is returned: a document is either
	// fully indexed or absent.
	IndexDocument(ctx context.Context, req IndexRequest) (string, error)

	// DocumentHash computes the content hash a document would index under
	// and fails with domain.ErrDuplicateDocument if it already exists in
	// the collection. Persists nothing.
	DocumentHash(ctx context.Context, collection string, fileName, fileType string, data []byte) (string, error)
}
