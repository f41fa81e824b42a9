package sqlitevec

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// bagEmbedder maps text onto a fixed vocabulary vector, so similarity is
// word overlap and tests are deterministic without a model.
type bagEmbedder struct {
	vocab []string
}

func newBagEmbedder() *bagEmbedder {
	return &bagEmbedder{vocab: []string{"cat", "dog", "fish", "bird", "tree", "house", "river", "stone"}}
}

func (e *bagEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(e.vocab))
	lower := strings.ToLower(text)
	for i, word := range e.vocab {
		if strings.Contains(lower, word) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (e *bagEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

func (e *bagEmbedder) Dimensions() int      { return len(e.vocab) }
func (e *bagEmbedder) ModelName() string    { return "bag-of-words" }
func (e *bagEmbedder) Ping(context.Context) error { return nil }
func (e *bagEmbedder) Close() error         { return nil }

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), newBagEmbedder())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpsertAndQuery(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meta := domain.ChunkMetadata{DocumentID: "doc-1", ChunkGroupID: "group-1", Title: "Animals"}
	require.NoError(t, store.UpsertChunk(ctx, "pets", "c1", "the cat and the dog", meta))
	require.NoError(t, store.UpsertChunk(ctx, "pets", "c2", "a fish in the river", meta))
	require.NoError(t, store.UpsertChunk(ctx, "pets", "c3", "a stone house by a tree", meta))

	results, err := store.Query(ctx, "pets", "cat dog", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].ID)
	assert.Equal(t, "Animals", results[0].Metadata.Title)
	assert.Less(t, results[0].Distance, results[1].Distance)
}

func TestUpsertReplacesExisting(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meta := domain.ChunkMetadata{DocumentID: "doc-1", ChunkGroupID: "group-1"}
	require.NoError(t, store.UpsertChunk(ctx, "pets", "c1", "a cat", meta))
	require.NoError(t, store.UpsertChunk(ctx, "pets", "c1", "a dog", meta))

	results, err := store.Query(ctx, "pets", "dog", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a dog", results[0].Content)
}

func TestQueryScopedToCollection(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meta := domain.ChunkMetadata{DocumentID: "doc-1", ChunkGroupID: "group-1"}
	require.NoError(t, store.UpsertChunk(ctx, "pets", "c1", "a cat", meta))
	require.NoError(t, store.UpsertChunk(ctx, "wild", "c2", "a bird", meta))

	results, err := store.Query(ctx, "pets", "cat bird", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ID)
}

func TestDeleteChunk(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meta := domain.ChunkMetadata{DocumentID: "doc-1", ChunkGroupID: "group-1"}
	require.NoError(t, store.UpsertChunk(ctx, "pets", "c1", "a cat", meta))

	require.NoError(t, store.DeleteChunk(ctx, "pets", "c1"))
	assert.ErrorIs(t, store.DeleteChunk(ctx, "pets", "c1"), domain.ErrNotFound)
}

func TestDeleteDocument(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertChunk(ctx, "pets", "c1", "a cat",
		domain.ChunkMetadata{DocumentID: "doc-1", ChunkGroupID: "g1"}))
	require.NoError(t, store.UpsertChunk(ctx, "pets", "c2", "a dog",
		domain.ChunkMetadata{DocumentID: "doc-1", ChunkGroupID: "g1"}))
	require.NoError(t, store.UpsertChunk(ctx, "pets", "c3", "a fish",
		domain.ChunkMetadata{DocumentID: "doc-2", ChunkGroupID: "g2"}))

	require.NoError(t, store.DeleteDocument(ctx, "pets", "doc-1"))

	results, err := store.Query(ctx, "pets", "cat dog fish", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c3", results[0].ID)
}

func TestDeleteCollectionAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meta := domain.ChunkMetadata{DocumentID: "doc-1", ChunkGroupID: "g1"}
	require.NoError(t, store.UpsertChunk(ctx, "alpha", "c1", "a cat", meta))
	require.NoError(t, store.UpsertChunk(ctx, "beta", "c2", "a dog", meta))

	names, err := store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	require.NoError(t, store.DeleteCollection(ctx, "alpha"))

	names, err = store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, names)
}

func TestReset(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meta := domain.ChunkMetadata{DocumentID: "doc-1", ChunkGroupID: "g1"}
	require.NoError(t, store.UpsertChunk(ctx, "alpha", "c1", "a cat", meta))

	require.NoError(t, store.Reset(ctx))

	names, err := store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.75, 0}
	assert.Equal(t, vec, bytesToFloat32Slice(float32SliceToBytes(vec)))
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0, cosineDistance([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 1, cosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 2, cosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, float64(1), cosineDistance([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, float64(1), cosineDistance([]float32{1}, []float32{1, 2}))
}
