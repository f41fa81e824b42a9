package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
	"github.com/custodia-labs/ragstore/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages indexed documents across both stores. Deletions go
// vector store first: losing a vector entry degrades recall, losing the
// relational row while vectors remain would serve orphaned results.
type DocumentService struct {
	docStore    driven.DocumentStore
	vectorStore driven.VectorStore
	gate        *WriteGate
}

// NewDocumentService creates a document service sharing the write gate with
// the indexer.
func NewDocumentService(docStore driven.DocumentStore, vectorStore driven.VectorStore, gate *WriteGate) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		vectorStore: vectorStore,
		gate:        gate,
	}
}

// ListCollections returns the names of all vector collections.
func (s *DocumentService) ListCollections(ctx context.Context) ([]string, error) {
	return s.vectorStore.ListCollections(ctx)
}

// DeleteCollection removes a collection from both stores.
func (s *DocumentService) DeleteCollection(ctx context.Context, collection string) error {
	if collection == "" {
		return fmt.Errorf("%w: collection is required", domain.ErrInvalidInput)
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	if err := s.vectorStore.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("deleting collection vectors: %w", err)
	}
	if err := s.docStore.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("deleting collection documents: %w", err)
	}
	logger.Info("Deleted collection %s", collection)
	return nil
}

// ListDocumentHeaders lists headers, optionally filtered by collection.
func (s *DocumentService) ListDocumentHeaders(ctx context.Context, collection string) ([]domain.DocumentHeader, error) {
	return s.docStore.ListDocumentHeaders(ctx, collection)
}

// GetDocument returns the full document.
func (s *DocumentService) GetDocument(ctx context.Context, collection, id string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, collection, id)
}

// GetDocumentHeader returns the document without raw bytes.
func (s *DocumentService) GetDocumentHeader(ctx context.Context, collection, id string) (*domain.DocumentHeader, error) {
	return s.docStore.GetDocumentHeader(ctx, collection, id)
}

// UpdateDocument updates metadata fields only.
func (s *DocumentService) UpdateDocument(
	ctx context.Context, collection, id string, meta domain.DocumentMetadata,
) (*domain.DocumentHeader, error) {
	s.gate.Lock()
	defer s.gate.Unlock()
	return s.docStore.UpdateDocument(ctx, collection, id, meta)
}

// DeleteDocument removes a document from both stores, vector side first.
func (s *DocumentService) DeleteDocument(ctx context.Context, collection, id string) error {
	s.gate.Lock()
	defer s.gate.Unlock()

	// Verify existence up front so a missing document fails before any store
	// is touched.
	if _, err := s.docStore.GetDocumentHeader(ctx, collection, id); err != nil {
		return err
	}

	if err := s.vectorStore.DeleteDocument(ctx, collection, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("deleting document vectors: %w", err)
	}
	if err := s.docStore.DeleteDocument(ctx, collection, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	logger.Info("Deleted document %s from collection %s", id, collection)
	return nil
}

// DeleteChunkGroup removes one chunk group and its chunks from both stores,
// vector side first. The owning document stays; re-splitting it later creates
// a fresh group.
func (s *DocumentService) DeleteChunkGroup(ctx context.Context, collection, chunkGroupID string) error {
	s.gate.Lock()
	defer s.gate.Unlock()

	group, err := s.docStore.GetChunkGroup(ctx, chunkGroupID)
	if err != nil {
		return err
	}
	// Group ids are global but documents are collection-scoped; make sure the
	// owning document actually lives in this collection.
	if _, err := s.docStore.GetDocumentHeader(ctx, collection, group.DocumentID); err != nil {
		return err
	}

	chunks, err := s.docStore.ListChunksByDocument(ctx, collection, group.DocumentID)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if chunk.ChunkGroupID != chunkGroupID {
			continue
		}
		if err := s.vectorStore.DeleteChunk(ctx, collection, chunk.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("deleting chunk vector: %w", err)
		}
	}
	if err := s.docStore.DeleteChunkGroup(ctx, chunkGroupID); err != nil {
		return fmt.Errorf("deleting chunk group: %w", err)
	}
	logger.Info("Deleted chunk group %s from collection %s", chunkGroupID, collection)
	return nil
}

// ListChunksByDocument returns a document's chunks in split order.
func (s *DocumentService) ListChunksByDocument(ctx context.Context, collection, documentID string) ([]domain.Chunk, error) {
	return s.docStore.ListChunksByDocument(ctx, collection, documentID)
}

// GetChunk returns one chunk with its content.
func (s *DocumentService) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	return s.docStore.GetChunk(ctx, chunkID)
}

// DeleteChunk removes one chunk from both stores, vector side first. A chunk
// that never reached the vector store still deletes cleanly.
func (s *DocumentService) DeleteChunk(ctx context.Context, collection, chunkID string) error {
	s.gate.Lock()
	defer s.gate.Unlock()

	if _, err := s.docStore.GetChunk(ctx, chunkID); err != nil {
		return err
	}

	if err := s.vectorStore.DeleteChunk(ctx, collection, chunkID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("deleting chunk vector: %w", err)
	}
	if err := s.docStore.DeleteChunk(ctx, chunkID); err != nil {
		return fmt.Errorf("deleting chunk: %w", err)
	}
	return nil
}

// CollectionChunkCount counts the chunks stored for a collection.
func (s *DocumentService) CollectionChunkCount(ctx context.Context, collection string) (int, error) {
	return s.docStore.CollectionChunkCount(ctx, collection)
}
