package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// duplicatingStore simulates a backend that returns the same chunk id twice.
type duplicatingStore struct {
	*memory.VectorStore
}

func (s *duplicatingStore) Query(context.Context, string, string, int) ([]domain.RetrievedChunk, error) {
	return []domain.RetrievedChunk{
		{ID: "c1", Content: "first", Distance: 0.1},
		{ID: "c2", Content: "second", Distance: 0.2},
		{ID: "c1", Content: "first again", Distance: 0.3},
	}, nil
}

func seedVectors(t *testing.T, store *memory.VectorStore, collection string, texts map[string]string) {
	t.Helper()
	for id, text := range texts {
		require.NoError(t, store.UpsertChunk(context.Background(), collection, id, text,
			domain.ChunkMetadata{DocumentID: "doc-1", ChunkGroupID: "g1"}))
	}
}

func TestRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by ascending distance", func(t *testing.T) {
		store := memory.NewVectorStore()
		seedVectors(t, store, "papers", map[string]string{
			"c1": "cats and dogs",
			"c2": "cats only",
			"c3": "nothing relevant here",
		})
		retriever := NewRetriever(store)

		results, err := retriever.Retrieve(ctx, "papers", "cats dogs", 3)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "c1", results[0].ID)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
		}
	})

	t.Run("truncates to topK", func(t *testing.T) {
		store := memory.NewVectorStore()
		seedVectors(t, store, "papers", map[string]string{
			"c1": "alpha", "c2": "beta", "c3": "gamma",
		})
		retriever := NewRetriever(store)

		results, err := retriever.Retrieve(ctx, "papers", "alpha", 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("default topK when unspecified", func(t *testing.T) {
		store := memory.NewVectorStore()
		texts := make(map[string]string)
		for _, id := range []string{"c1", "c2", "c3", "c4", "c5", "c6"} {
			texts[id] = "filler " + id
		}
		seedVectors(t, store, "papers", texts)
		retriever := NewRetriever(store, WithDefaultTopK(5))

		results, err := retriever.Retrieve(ctx, "papers", "filler", 0)
		require.NoError(t, err)
		assert.Len(t, results, 5)
	})

	t.Run("empty collection yields empty non-nil slice", func(t *testing.T) {
		retriever := NewRetriever(memory.NewVectorStore())

		results, err := retriever.Retrieve(ctx, "empty", "anything", 4)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("validates input", func(t *testing.T) {
		retriever := NewRetriever(memory.NewVectorStore())

		_, err := retriever.Retrieve(ctx, "", "query", 4)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = retriever.Retrieve(ctx, "papers", "", 4)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("deduplicates by chunk id keeping the nearest", func(t *testing.T) {
		store := &duplicatingStore{VectorStore: memory.NewVectorStore()}
		retriever := NewRetriever(store)

		results, err := retriever.Retrieve(ctx, "papers", "query", 4)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "c1", results[0].ID)
		assert.InDelta(t, 0.1, results[0].Distance, 1e-9)
		assert.Equal(t, "c2", results[1].ID)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		store := memory.NewVectorStore()
		store.ErrQuery = errors.New("connection refused")
		retriever := NewRetriever(store)

		_, err := retriever.Retrieve(ctx, "papers", "query", 4)
		assert.Error(t, err)
	})
}
