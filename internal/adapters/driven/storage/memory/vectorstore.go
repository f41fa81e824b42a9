package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

var _ driven.VectorStore = (*VectorStore)(nil)

type vectorEntry struct {
	id   string
	text string
	meta domain.ChunkMetadata
}

// VectorStore is an in-memory vector store. It ranks by word overlap rather
// than real embeddings, which is deterministic and good enough for tests.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string][]vectorEntry
	upserts     int

	// FailUpsertAfter, when positive, makes the nth upsert and every later
	// one fail. Used to test indexing rollback.
	FailUpsertAfter int

	// ErrQuery, when set, fails every query.
	ErrQuery error
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{collections: make(map[string][]vectorEntry)}
}

// UpsertCount reports how many upserts have been attempted.
func (s *VectorStore) UpsertCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.upserts
}

// Len reports the number of entries stored for a collection.
func (s *VectorStore) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *VectorStore) UpsertChunk(ctx context.Context, collection, chunkID, text string, meta domain.ChunkMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upserts++
	if s.FailUpsertAfter > 0 && s.upserts >= s.FailUpsertAfter {
		return fmt.Errorf("%w: injected upsert failure", domain.ErrStoreUnavailable)
	}

	entries := s.collections[collection]
	for i, entry := range entries {
		if entry.id == chunkID {
			entries[i] = vectorEntry{id: chunkID, text: text, meta: meta}
			return nil
		}
	}
	s.collections[collection] = append(entries, vectorEntry{id: chunkID, text: text, meta: meta})
	return nil
}

func (s *VectorStore) Query(ctx context.Context, collection, queryText string, topK int) ([]domain.RetrievedChunk, error) {
	if s.ErrQuery != nil {
		return nil, s.ErrQuery
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	queryWords := fields(queryText)
	results := make([]domain.RetrievedChunk, 0, topK)
	for _, entry := range s.collections[collection] {
		results = append(results, domain.RetrievedChunk{
			ID:       entry.id,
			Content:  entry.text,
			Metadata: entry.meta,
			Distance: overlapDistance(queryWords, fields(entry.text)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *VectorStore) DeleteChunk(ctx context.Context, collection, chunkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.collections[collection]
	for i, entry := range entries {
		if entry.id == chunkID {
			s.collections[collection] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
}

func (s *VectorStore) DeleteDocument(ctx context.Context, collection, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.collections[collection]
	kept := entries[:0]
	for _, entry := range entries {
		if entry.meta.DocumentID != documentID {
			kept = append(kept, entry)
		}
	}
	s.collections[collection] = kept
	return nil
}

func (s *VectorStore) DeleteCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

func (s *VectorStore) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *VectorStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = make(map[string][]vectorEntry)
	return nil
}

func (s *VectorStore) Close() error {
	return nil
}

func fields(text string) map[string]bool {
	words := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		words[word] = true
	}
	return words
}

// overlapDistance is 0 for full query coverage and 1 for no shared words.
func overlapDistance(query, text map[string]bool) float64 {
	if len(query) == 0 {
		return 1
	}
	shared := 0
	for word := range query {
		if text[word] {
			shared++
		}
	}
	return 1 - float64(shared)/float64(len(query))
}
