// Package memory provides in-memory implementations of the storage ports,
// used in tests and for ephemeral setups. The fakes support fault injection
// so service-level tests can exercise rollback paths.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/hash"
)

var _ driven.DocumentStore = (*DocStore)(nil)

type documentKey struct {
	collection string
	id         string
}

type storedChunk struct {
	chunk        domain.Chunk
	chunkGroupID string
}

// DocStore is an in-memory document store.
type DocStore struct {
	mu        sync.RWMutex
	extractor driven.TextExtractor
	documents map[documentKey]*domain.Document
	groups    map[string]*domain.ChunkGroup
	// groupCollections tracks which collection each group belongs to, since
	// group ids are globally unique but documents are collection-scoped.
	groupCollections map[string]string
	chunks           map[string]*storedChunk
	seq              int

	// Fault injection. When set, the corresponding operation fails with the
	// given error instead of mutating state.
	ErrCreateDocumentHeader error
	ErrCreateChunkGroup     error
	ErrCreateChunks         error
	ErrMarkChunkIndexed     error
}

// NewDocStore creates an empty in-memory document store.
func NewDocStore(extractor driven.TextExtractor) *DocStore {
	return &DocStore{
		extractor:        extractor,
		documents:        make(map[documentKey]*domain.Document),
		groups:           make(map[string]*domain.ChunkGroup),
		groupCollections: make(map[string]string),
		chunks:           make(map[string]*storedChunk),
	}
}

func (s *DocStore) CreateDocumentHash(ctx context.Context, collection string, content driven.DocumentContent) (string, error) {
	if len(content.Data) == 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrFileNotFound, content.FileName)
	}

	text, err := s.extractor.Extract(ctx, content.Data, content.FileType)
	if err != nil {
		return "", err
	}
	id := hash.Text(text)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.documents[documentKey{collection, id}]; ok {
		return "", fmt.Errorf("%w: %s in collection %s", domain.ErrDuplicateDocument, id, collection)
	}
	return id, nil
}

func (s *DocStore) CreateDocumentHeader(
	ctx context.Context, id, collection string, content driven.DocumentContent, meta domain.DocumentMetadata,
) (*domain.Document, error) {
	if s.ErrCreateDocumentHeader != nil {
		return nil, s.ErrCreateDocumentHeader
	}
	if len(content.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, content.FileName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := documentKey{collection, id}
	if _, ok := s.documents[key]; ok {
		return nil, fmt.Errorf("%w: %s in collection %s", domain.ErrDuplicateDocument, id, collection)
	}

	now := time.Now().UTC()
	fileName := meta.FileName
	if fileName == "" {
		fileName = content.FileName
	}

	doc := &domain.Document{
		ID:             id,
		CollectionName: collection,
		FileName:       fileName,
		FileType:       content.FileType,
		ByteSize:       int64(len(content.Data)),
		File:           append([]byte(nil), content.Data...),
		Title:          meta.Title,
		Source:         meta.Source,
		Abstract:       meta.Abstract,
		Authors:        meta.Authors,
		Publisher:      meta.Publisher,
		PublishedDate:  meta.PublishedDate,
		Comments:       meta.Comments,
		Keywords:       meta.Keywords,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.documents[key] = doc

	result := *doc
	return &result, nil
}

func (s *DocStore) CreateChunkGroup(
	ctx context.Context, documentID, collection string, chunkSize, chunkOverlap int, split driven.Splitter,
) (*domain.ChunkGroup, []domain.Fragment, error) {
	if s.ErrCreateChunkGroup != nil {
		return nil, nil, s.ErrCreateChunkGroup
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[documentKey{collection, documentID}]
	if !ok {
		return nil, nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
	}

	text, err := s.extractor.Extract(ctx, doc.File, doc.FileType)
	if err != nil {
		return nil, nil, err
	}

	pieces, err := split.Split(text, chunkSize, chunkOverlap)
	if err != nil {
		return nil, nil, err
	}

	fragments := make([]domain.Fragment, len(pieces))
	for i, piece := range pieces {
		fragments[i] = domain.Fragment{Hash: hash.Text(piece), Text: piece}
	}

	group := &domain.ChunkGroup{
		ID:           uuid.New().String(),
		DocumentID:   documentID,
		SplitAlgo:    split.Name(),
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		ChunkCount:   len(fragments),
		IsActive:     true,
	}
	s.groups[group.ID] = group
	s.groupCollections[group.ID] = collection

	result := *group
	return &result, fragments, nil
}

func (s *DocStore) CreateChunks(ctx context.Context, chunkGroupID string, fragments []domain.Fragment) ([]domain.ChunkInfo, error) {
	if s.ErrCreateChunks != nil {
		return nil, s.ErrCreateChunks
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[chunkGroupID]; !ok {
		return nil, fmt.Errorf("%w: chunk group %s", domain.ErrNotFound, chunkGroupID)
	}

	// Validate the whole batch before mutating anything.
	for _, fragment := range fragments {
		if recomputed := hash.Text(fragment.Text); recomputed != fragment.Hash {
			return nil, fmt.Errorf("%w: %s != %s", domain.ErrIntegrityMismatch, recomputed, fragment.Hash)
		}
	}

	seen := make(map[string]bool, len(s.chunks))
	for _, stored := range s.chunks {
		seen[stored.chunk.Hash] = true
	}

	infos := make([]domain.ChunkInfo, 0, len(fragments))
	for i, fragment := range fragments {
		chunk := domain.Chunk{
			ID:           uuid.New().String(),
			ChunkGroupID: chunkGroupID,
			Hash:         fragment.Hash,
			ByteSize:     len(fragment.Text),
			Content:      fragment.Text,
			Position:     i,
			IsDuplicate:  seen[fragment.Hash],
		}
		seen[fragment.Hash] = true
		s.chunks[chunk.ID] = &storedChunk{chunk: chunk, chunkGroupID: chunkGroupID}
		infos = append(infos, domain.ChunkInfo{
			ID:          chunk.ID,
			Hash:        chunk.Hash,
			IsDuplicate: chunk.IsDuplicate,
		})
	}
	return infos, nil
}

func (s *DocStore) MarkChunkIndexed(ctx context.Context, chunkID string) error {
	if s.ErrMarkChunkIndexed != nil {
		return s.ErrMarkChunkIndexed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.chunks[chunkID]
	if !ok {
		return fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
	}
	stored.chunk.IsIndexed = true
	return nil
}

func (s *DocStore) GetDocument(ctx context.Context, collection, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[documentKey{collection, id}]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	result := *doc
	result.ChunkGroups = s.groupsForDocument(collection, id)
	return &result, nil
}

func (s *DocStore) GetDocumentHeader(ctx context.Context, collection, id string) (*domain.DocumentHeader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[documentKey{collection, id}]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	header := doc.Header()
	header.ChunkGroups = s.groupsForDocument(collection, id)
	return &header, nil
}

func (s *DocStore) ListDocumentHeaders(ctx context.Context, collection string) ([]domain.DocumentHeader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var headers []domain.DocumentHeader
	for key, doc := range s.documents {
		if collection != "" && key.collection != collection {
			continue
		}
		header := doc.Header()
		header.ChunkGroups = s.groupsForDocument(key.collection, key.id)
		headers = append(headers, header)
	}
	sort.Slice(headers, func(i, j int) bool {
		return headers[i].CreatedAt.Before(headers[j].CreatedAt)
	})
	return headers, nil
}

func (s *DocStore) UpdateDocument(
	ctx context.Context, collection, id string, meta domain.DocumentMetadata,
) (*domain.DocumentHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[documentKey{collection, id}]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}

	doc.FileName = meta.FileName
	doc.Title = meta.Title
	doc.Source = meta.Source
	doc.Abstract = meta.Abstract
	doc.Authors = meta.Authors
	doc.Publisher = meta.Publisher
	doc.PublishedDate = meta.PublishedDate
	doc.Comments = meta.Comments
	doc.Keywords = meta.Keywords
	doc.UpdatedAt = time.Now().UTC()

	header := doc.Header()
	header.ChunkGroups = s.groupsForDocument(collection, id)
	return &header, nil
}

func (s *DocStore) DeleteDocument(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := documentKey{collection, id}
	if _, ok := s.documents[key]; !ok {
		return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}

	for groupID, group := range s.groups {
		if group.DocumentID == id && s.groupCollections[groupID] == collection {
			s.deleteGroupLocked(groupID)
		}
	}
	delete(s.documents, key)
	return nil
}

func (s *DocStore) DeleteCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for groupID, groupCollection := range s.groupCollections {
		if groupCollection == collection {
			s.deleteGroupLocked(groupID)
		}
	}
	for key := range s.documents {
		if key.collection == collection {
			delete(s.documents, key)
		}
	}
	return nil
}

func (s *DocStore) GetChunkGroup(ctx context.Context, chunkGroupID string) (*domain.ChunkGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[chunkGroupID]
	if !ok {
		return nil, fmt.Errorf("%w: chunk group %s", domain.ErrNotFound, chunkGroupID)
	}
	result := *group
	return &result, nil
}

func (s *DocStore) DeleteChunkGroup(ctx context.Context, chunkGroupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[chunkGroupID]; !ok {
		return fmt.Errorf("%w: chunk group %s", domain.ErrNotFound, chunkGroupID)
	}
	s.deleteGroupLocked(chunkGroupID)
	return nil
}

func (s *DocStore) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.chunks[chunkID]
	if !ok {
		return nil, fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
	}
	result := stored.chunk
	return &result, nil
}

func (s *DocStore) ListChunksByDocument(ctx context.Context, collection, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, stored := range s.chunks {
		group, ok := s.groups[stored.chunkGroupID]
		if !ok || group.DocumentID != documentID || s.groupCollections[stored.chunkGroupID] != collection {
			continue
		}
		chunks = append(chunks, stored.chunk)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Position < chunks[j].Position })
	return chunks, nil
}

func (s *DocStore) DeleteChunk(ctx context.Context, chunkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chunks[chunkID]; !ok {
		return fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
	}
	delete(s.chunks, chunkID)
	return nil
}

func (s *DocStore) CollectionChunkCount(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, stored := range s.chunks {
		if s.groupCollections[stored.chunkGroupID] == collection {
			count++
		}
	}
	return count, nil
}

func (s *DocStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = make(map[documentKey]*domain.Document)
	s.groups = make(map[string]*domain.ChunkGroup)
	s.groupCollections = make(map[string]string)
	s.chunks = make(map[string]*storedChunk)
	return nil
}

func (s *DocStore) Close() error {
	return nil
}

// groupsForDocument returns copies of a document's groups. Caller holds the lock.
func (s *DocStore) groupsForDocument(collection, documentID string) []domain.ChunkGroup {
	var groups []domain.ChunkGroup
	for groupID, group := range s.groups {
		if group.DocumentID == documentID && s.groupCollections[groupID] == collection {
			groups = append(groups, *group)
		}
	}
	return groups
}

// deleteGroupLocked removes a group and its chunks. Caller holds the lock.
func (s *DocStore) deleteGroupLocked(chunkGroupID string) {
	for chunkID, stored := range s.chunks {
		if stored.chunkGroupID == chunkGroupID {
			delete(s.chunks, chunkID)
		}
	}
	delete(s.groups, chunkGroupID)
	delete(s.groupCollections, chunkGroupID)
}
