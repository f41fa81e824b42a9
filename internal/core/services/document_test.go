package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
	"github.com/custodia-labs/ragstore/internal/extractors"
	"github.com/custodia-labs/ragstore/internal/splitter"
)

type serviceFixture struct {
	docStore    *memory.DocStore
	vectorStore *memory.VectorStore
	service     *Service
}

func setupService(t *testing.T) *serviceFixture {
	t.Helper()
	docStore := memory.NewDocStore(extractors.New())
	vectorStore := memory.NewVectorStore()
	service := NewService(docStore, vectorStore, splitter.FixedWindow{},
		WithIndexerOptions(WithChunkDefaults(splitter.DefaultChunkSize, splitter.DefaultChunkOverlap)))
	return &serviceFixture{docStore: docStore, vectorStore: vectorStore, service: service}
}

func (f *serviceFixture) index(t *testing.T, collection, body string) string {
	t.Helper()
	id, err := f.service.Indexer.IndexDocument(context.Background(), driving.IndexRequest{
		Collection: collection,
		FileName:   "doc.txt",
		FileType:   "txt",
		Data:       []byte(body),
	})
	require.NoError(t, err)
	return id
}

func TestListCollections(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.index(t, "beta", "first body")
	f.index(t, "alpha", "second body")

	names, err := f.service.Documents.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func TestDeleteCollectionService(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.index(t, "doomed", "first body")
	f.index(t, "kept", "second body")

	require.NoError(t, f.service.Documents.DeleteCollection(ctx, "doomed"))

	assert.Zero(t, f.vectorStore.Len("doomed"))
	headers, err := f.docStore.ListDocumentHeaders(ctx, "doomed")
	require.NoError(t, err)
	assert.Empty(t, headers)

	// The other collection is untouched.
	assert.Equal(t, 1, f.vectorStore.Len("kept"))

	assert.ErrorIs(t, f.service.Documents.DeleteCollection(ctx, ""), domain.ErrInvalidInput)
}

func TestDeleteDocumentService(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	id := f.index(t, "papers", "a body to remove")

	require.NoError(t, f.service.Documents.DeleteDocument(ctx, "papers", id))

	_, err := f.docStore.GetDocumentHeader(ctx, "papers", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.vectorStore.Len("papers"))

	assert.ErrorIs(t, f.service.Documents.DeleteDocument(ctx, "papers", id), domain.ErrNotFound)
}

func TestDeletedDocumentDisappearsFromRetrieval(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	id := f.index(t, "papers", "unique retrievable phrase")

	results, err := f.service.Retriever.Retrieve(ctx, "papers", "unique retrievable phrase", 4)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	require.NoError(t, f.service.Documents.DeleteDocument(ctx, "papers", id))

	results, err = f.service.Retriever.Retrieve(ctx, "papers", "unique retrievable phrase", 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUpdateDocumentService(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	id := f.index(t, "papers", "metadata body")

	header, err := f.service.Documents.UpdateDocument(ctx, "papers", id, domain.DocumentMetadata{
		FileName: "doc.txt",
		Title:    "Renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", header.Title)
	assert.Equal(t, id, header.ID)
}

func TestDeleteChunkService(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	id := f.index(t, "papers", "chunked body")
	chunks, err := f.service.Documents.ListChunksByDocument(ctx, "papers", id)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	require.NoError(t, f.service.Documents.DeleteChunk(ctx, "papers", chunks[0].ID))

	_, err = f.service.Documents.GetChunk(ctx, chunks[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.vectorStore.Len("papers"))

	count, err := f.service.Documents.CollectionChunkCount(ctx, "papers")
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, f.service.Documents.DeleteChunk(ctx, "papers", chunks[0].ID), domain.ErrNotFound)
}

func TestDeleteChunkGroupService(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	id := f.index(t, "papers", "grouped body")
	header, err := f.service.Documents.GetDocumentHeader(ctx, "papers", id)
	require.NoError(t, err)
	require.Len(t, header.ChunkGroups, 1)
	groupID := header.ChunkGroups[0].ID

	require.NoError(t, f.service.Documents.DeleteChunkGroup(ctx, "papers", groupID))

	// Chunks and vectors are gone; the document itself stays.
	chunks, err := f.service.Documents.ListChunksByDocument(ctx, "papers", id)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Zero(t, f.vectorStore.Len("papers"))

	header, err = f.service.Documents.GetDocumentHeader(ctx, "papers", id)
	require.NoError(t, err)
	assert.Empty(t, header.ChunkGroups)

	assert.ErrorIs(t, f.service.Documents.DeleteChunkGroup(ctx, "papers", groupID), domain.ErrNotFound)
}

func TestDeleteChunkGroupWrongCollection(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	id := f.index(t, "papers", "scoped body")
	header, err := f.service.Documents.GetDocumentHeader(ctx, "papers", id)
	require.NoError(t, err)
	groupID := header.ChunkGroups[0].ID

	assert.ErrorIs(t, f.service.Documents.DeleteChunkGroup(ctx, "other", groupID), domain.ErrNotFound)

	// Everything is still intact under the right collection.
	assert.Equal(t, 1, f.vectorStore.Len("papers"))
}

func TestServiceReset(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.index(t, "alpha", "first body")
	f.index(t, "beta", "second body")

	require.NoError(t, f.service.Reset(ctx))

	names, err := f.service.Documents.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	headers, err := f.docStore.ListDocumentHeaders(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, headers)

	// The service remains usable after a reset.
	f.index(t, "alpha", "first body")
}

func TestServiceClose(t *testing.T) {
	f := setupService(t)
	assert.NoError(t, f.service.Close())
}
