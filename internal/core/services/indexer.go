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

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// Indexer performs the dual-store indexing sequence. Each failure point
// rolls back everything created before it, so a document is either fully
// indexed in both stores or absent from both.
type Indexer struct {
	docStore    driven.DocumentStore
	vectorStore driven.VectorStore
	splitter    driven.Splitter
	gate        *WriteGate

	chunkSize    int
	chunkOverlap int
	progress     driven.ProgressSink
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithChunkDefaults sets the chunk size and overlap used when a request
// does not override them.
func WithChunkDefaults(size, overlap int) IndexerOption {
	return func(i *Indexer) {
		i.chunkSize = size
		i.chunkOverlap = overlap
	}
}

// WithProgressSink attaches a sink that receives per-chunk progress.
func WithProgressSink(sink driven.ProgressSink) IndexerOption {
	return func(i *Indexer) {
		i.progress = sink
	}
}

// NewIndexer creates an indexer over the two stores. The gate must be the
// same instance shared with the document service, so writes never interleave.
func NewIndexer(
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
	splitter driven.Splitter,
	gate *WriteGate,
	opts ...IndexerOption,
) *Indexer {
	indexer := &Indexer{
		docStore:    docStore,
		vectorStore: vectorStore,
		splitter:    splitter,
		gate:        gate,
	}
	for _, opt := range opts {
		opt(indexer)
	}
	return indexer
}

// DocumentHash computes the id the document would index under, failing with
// domain.ErrDuplicateDocument if it already exists in the collection.
func (s *Indexer) DocumentHash(ctx context.Context, collection, fileName, fileType string, data []byte) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("%w: collection is required", domain.ErrInvalidInput)
	}
	return s.docStore.CreateDocumentHash(ctx, collection, driven.DocumentContent{
		FileName: fileName,
		FileType: fileType,
		Data:     data,
	})
}

// IndexDocument indexes one document end to end.
//
//nolint:gocyclo // Sequential steps, each with its own rollback path
func (s *Indexer) IndexDocument(ctx context.Context, req driving.IndexRequest) (string, error) {
	if req.Collection == "" {
		return "", fmt.Errorf("%w: collection is required", domain.ErrInvalidInput)
	}

	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = s.chunkSize
	}
	chunkOverlap := s.chunkOverlap
	if req.ChunkOverlap != nil {
		chunkOverlap = *req.ChunkOverlap
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	content := driven.DocumentContent{
		FileName: req.FileName,
		FileType: req.FileType,
		Data:     req.Data,
	}

	// 1. Hash and probe for a duplicate. Persists nothing, so a duplicate
	// or extraction failure leaves no trace.
	id, err := s.docStore.CreateDocumentHash(ctx, req.Collection, content)
	if err != nil {
		return "", s.classify(err)
	}

	// 2. Persist the document header.
	doc, err := s.docStore.CreateDocumentHeader(ctx, id, req.Collection, content, req.Metadata)
	if err != nil {
		return "", s.classify(err)
	}

	// 3. Split into a chunk group. On failure, remove the header.
	group, fragments, err := s.docStore.CreateChunkGroup(
		ctx, id, req.Collection, chunkSize, chunkOverlap, s.splitter)
	if err != nil {
		s.rollbackRelational(ctx, req.Collection, id)
		return "", s.classify(err)
	}

	// 4. Persist the chunks. On failure, remove the group and the header.
	infos, err := s.docStore.CreateChunks(ctx, group.ID, fragments)
	if err != nil {
		s.rollbackChunkGroup(ctx, group.ID)
		s.rollbackRelational(ctx, req.Collection, id)
		return "", s.classify(err)
	}

	// 5. Embed chunk by chunk. Any failure rolls back both stores.
	meta := chunkMetadata(doc, group.ID)
	total := len(infos)
	for i, info := range infos {
		if err := s.vectorStore.UpsertChunk(ctx, req.Collection, info.ID, fragments[i].Text, meta); err != nil {
			s.rollbackBoth(ctx, req.Collection, id)
			return "", s.classify(err)
		}
		if err := s.docStore.MarkChunkIndexed(ctx, info.ID); err != nil {
			s.rollbackBoth(ctx, req.Collection, id)
			return "", s.classify(err)
		}
		s.notifyProgress(i+1, total)
	}

	s.notifyComplete()
	logger.Info("Indexed document %s into collection %s (%d chunks)", id, req.Collection, total)
	return id, nil
}

// rollbackRelational removes the document (and whatever hangs off it) from
// the relational store. Best effort: a failing rollback is logged, not
// returned, so the original error reaches the caller.
func (s *Indexer) rollbackRelational(ctx context.Context, collection, id string) {
	if err := s.docStore.DeleteDocument(ctx, collection, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("Rollback of document %s failed: %v", id, err)
	}
}

func (s *Indexer) rollbackChunkGroup(ctx context.Context, chunkGroupID string) {
	if err := s.docStore.DeleteChunkGroup(ctx, chunkGroupID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("Rollback of chunk group %s failed: %v", chunkGroupID, err)
	}
}

func (s *Indexer) rollbackBoth(ctx context.Context, collection, id string) {
	if err := s.vectorStore.DeleteDocument(ctx, collection, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("Rollback of vectors for document %s failed: %v", id, err)
	}
	s.rollbackRelational(ctx, collection, id)
}

// classify passes taxonomy errors through unchanged and converts anything
// unexpected into an InternalError whose correlation id is logged here.
func (s *Indexer) classify(err error) error {
	for _, sentinel := range []error{
		domain.ErrNotFound,
		domain.ErrDuplicateDocument,
		domain.ErrIntegrityMismatch,
		domain.ErrUnsupportedFileType,
		domain.ErrFileNotFound,
		domain.ErrStoreUnavailable,
		domain.ErrInvalidInput,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	internal := domain.NewInternalError(err)
	logger.Error("Indexing failed [%s]: %v", internal.CorrelationID, err)
	return internal
}

// notifyProgress and notifyComplete shield the indexer from sink behaviour:
// a panicking sink must not abort an index that already succeeded.
func (s *Indexer) notifyProgress(current, total int) {
	if s.progress == nil {
		return
	}
	defer func() { _ = recover() }()
	s.progress.OnProgress(current, total)
}

func (s *Indexer) notifyComplete() {
	if s.progress == nil {
		return
	}
	defer func() { _ = recover() }()
	s.progress.OnComplete()
}

// chunkMetadata projects retrieval-relevant document fields onto each chunk.
func chunkMetadata(doc *domain.Document, chunkGroupID string) domain.ChunkMetadata {
	meta := domain.ChunkMetadata{
		DocumentID:   doc.ID,
		ChunkGroupID: chunkGroupID,
		Source:       doc.Source,
		Title:        doc.Title,
		Abstract:     doc.Abstract,
		Keywords:     doc.Keywords,
	}
	if doc.PublishedDate != nil {
		meta.PublishedDate = doc.PublishedDate.Format("2006-01-02")
	}
	return meta
}
