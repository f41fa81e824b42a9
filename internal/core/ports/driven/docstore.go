package driven

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// DocumentContent is the raw input to indexing: the original bytes plus the
// name and type they arrived with.
type DocumentContent struct {
	FileName string
	FileType string
	Data     []byte
}

// DocumentStore persists document headers, chunk groups and chunk records.
// Backed by SQLite for metadata storage. Every write operation runs inside
// one short-lived transaction scoped to that single logical operation, never
// spanning a whole multi-step indexing call.
type DocumentStore interface {
	// CreateDocumentHash extracts text from content, hashes it and checks
	// for an existing active document with the same id in the collection.
	// Returns domain.ErrDuplicateDocument if found. Read-only: persists
	// nothing.
	CreateDocumentHash(ctx context.Context, collection string, content DocumentContent) (string, error)

	// CreateDocumentHeader re-validates uniqueness inside its transaction
	// and persists the document row, including the raw bytes.
	CreateDocumentHeader(ctx context.Context, id, collection string, content DocumentContent, meta domain.DocumentMetadata) (*domain.Document, error)

	// CreateChunkGroup loads the stored document content, re-extracts its
	// text, splits it with the given splitter and persists the group.
	// The resulting ordered fragments are returned in memory, each carrying
	// the hash declared for it at split time.
	CreateChunkGroup(ctx context.Context, documentID, collection string, chunkSize, chunkOverlap int, splitter Splitter) (*domain.ChunkGroup, []domain.Fragment, error)

	// CreateChunks persists one chunk row per fragment. Each fragment's
	// hash is recomputed from its text and compared against the declared
	// hash; any mismatch fails with domain.ErrIntegrityMismatch and rolls
	// the whole batch back. Hashes already present in another group are
	// flagged as duplicates, not rejected.
	CreateChunks(ctx context.Context, chunkGroupID string, fragments []domain.Fragment) ([]domain.ChunkInfo, error)

	// MarkChunkIndexed records that a chunk has been embedded into the
	// vector store.
	MarkChunkIndexed(ctx context.Context, chunkID string) error

	// GetDocument returns the full document including raw bytes and chunk groups.
	GetDocument(ctx context.Context, collection, id string) (*domain.Document, error)

	// GetDocumentHeader returns the document without raw bytes or chunk bodies.
	GetDocumentHeader(ctx context.Context, collection, id string) (*domain.DocumentHeader, error)

	// ListDocumentHeaders lists headers, optionally filtered by collection
	// (empty string lists all).
	ListDocumentHeaders(ctx context.Context, collection string) ([]domain.DocumentHeader, error)

	// UpdateDocument updates metadata fields only; content and id are immutable.
	UpdateDocument(ctx context.Context, collection, id string, meta domain.DocumentMetadata) (*domain.DocumentHeader, error)

	// DeleteDocument removes the document and cascades to its chunk groups
	// and chunks.
	DeleteDocument(ctx context.Context, collection, id string) error

	// DeleteCollection removes every document in the collection, cascading.
	DeleteCollection(ctx context.Context, collection string) error

	// GetChunkGroup retrieves a chunk group by id.
	GetChunkGroup(ctx context.Context, chunkGroupID string) (*domain.ChunkGroup, error)

	// DeleteChunkGroup removes the group and its chunks.
	DeleteChunkGroup(ctx context.Context, chunkGroupID string) error

	// GetChunk retrieves a chunk with its content.
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// ListChunksByDocument returns all chunks of a document in split order.
	ListChunksByDocument(ctx context.Context, collection, documentID string) ([]domain.Chunk, error)

	// DeleteChunk removes a single chunk row.
	DeleteChunk(ctx context.Context, chunkID string) error

	// CollectionChunkCount counts the chunks stored for a collection.
	CollectionChunkCount(ctx context.Context, collection string) (int, error)

	// Reset drops all data from the store.
	Reset(ctx context.Context) error

	// Close releases the underlying database handle.
	Close() error
}

// Splitter is a pluggable text segmentation strategy. Implementations must
// be deterministic: identical inputs yield identical, identically-ordered
// output.
type Splitter interface {
	// Name identifies the algorithm, recorded on the chunk group.
	Name() string

	// Split segments text into ordered chunks.
	Split(text string, chunkSize, chunkOverlap int) ([]string, error)
}
