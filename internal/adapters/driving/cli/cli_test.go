package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragstore/internal/core/services"
	"github.com/custodia-labs/ragstore/internal/extractors"
	"github.com/custodia-labs/ragstore/internal/splitter"
)

// setupCLI wires the commands to memory-backed services and restores the
// globals afterwards.
func setupCLI(t *testing.T) {
	t.Helper()

	oldIndexer, oldRetriever, oldDocuments, oldReset := indexerService, retrieverService, documentService, resetFunc
	t.Cleanup(func() {
		indexerService, retrieverService, documentService, resetFunc = oldIndexer, oldRetriever, oldDocuments, oldReset
	})

	// Flag variables keep their values between executions; start clean.
	indexCollection, indexTitle, indexSource, indexAbstract = "", "", "", ""
	indexAuthors, indexPublisher, indexPublished, indexComments, indexKeywords = "", "", "", "", ""
	indexChunkSize, indexChunkOverlap = 0, 0
	indexCmd.Flags().Lookup("chunk-overlap").Changed = false
	indexHashOnly = false
	retrieveCollection, retrieveTopK, retrieveJSON = "", 0, false
	documentListCollection = ""
	updateTitle, updateSource, updateAbstract, updateKeywords = "", "", "", ""
	resetForce = false

	service := services.NewService(
		memory.NewDocStore(extractors.New()),
		memory.NewVectorStore(),
		splitter.FixedWindow{},
		services.WithIndexerOptions(
			services.WithChunkDefaults(splitter.DefaultChunkSize, splitter.DefaultChunkOverlap)),
	)
	SetServices(Services{
		Indexer:   service.Indexer,
		Retriever: service.Retriever,
		Documents: service.Documents,
	})
	SetResetFunc(service.Reset)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// parseDocumentID pulls the id out of the index command's output.
func parseDocumentID(t *testing.T, output string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if rest, ok := strings.CutPrefix(line, "Document id: "); ok {
			return rest
		}
	}
	t.Fatalf("no document id in output: %q", output)
	return ""
}

func writeTempDoc(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "ragstore version")
}

func TestIndexAndRetrieve(t *testing.T) {
	setupCLI(t)
	path := writeTempDoc(t, "note.txt", "the quick brown fox")

	output, err := execute(t, "index", path, "--collection", "notes", "--title", "Foxes")
	require.NoError(t, err)
	assert.Contains(t, output, "Indexed note.txt into notes")
	assert.Contains(t, output, "Document id:")

	output, err = execute(t, "retrieve", "quick brown fox", "--collection", "notes")
	require.NoError(t, err)
	assert.Contains(t, output, "the quick brown fox")
	assert.Contains(t, output, "Title: Foxes")
}

func TestIndexToleratesBadPublishedDate(t *testing.T) {
	setupCLI(t)
	path := writeTempDoc(t, "note.txt", "dated content")

	output, err := execute(t, "index", path, "--collection", "notes", "--published", "not-a-date")
	require.NoError(t, err)
	id := parseDocumentID(t, output)

	// The bad date is dropped, not stored and not an error.
	header, err := documentService.GetDocumentHeader(context.Background(), "notes", id)
	require.NoError(t, err)
	assert.Nil(t, header.PublishedDate)
}

func TestIndexDuplicate(t *testing.T) {
	setupCLI(t)
	path := writeTempDoc(t, "note.txt", "duplicated content")

	_, err := execute(t, "index", path, "--collection", "notes")
	require.NoError(t, err)

	_, err = execute(t, "index", path, "--collection", "notes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already indexed")
}

func TestIndexHashOnly(t *testing.T) {
	setupCLI(t)
	path := writeTempDoc(t, "note.txt", "hash me")

	output, err := execute(t, "index", path, "--collection", "notes", "--hash-only")
	require.NoError(t, err)
	assert.Len(t, output, 45) // 44-char id plus newline

	// Nothing was persisted.
	output, err = execute(t, "document", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "No documents found.")
}

func TestDocumentLifecycle(t *testing.T) {
	setupCLI(t)
	path := writeTempDoc(t, "note.txt", "lifecycle content")

	output, err := execute(t, "index", path, "--collection", "notes")
	require.NoError(t, err)
	id := parseDocumentID(t, output)

	output, err = execute(t, "document", "list", "--collection", "notes")
	require.NoError(t, err)
	assert.Contains(t, output, "Total: 1 documents")

	output, err = execute(t, "document", "get", "notes", id)
	require.NoError(t, err)
	assert.Contains(t, output, "fixed_window")

	output, err = execute(t, "document", "update", "notes", id, "--title", "Renamed")
	require.NoError(t, err)
	assert.Contains(t, output, "Updated document")

	output, err = execute(t, "document", "chunks", "notes", id)
	require.NoError(t, err)
	assert.Contains(t, output, "Total: 1 chunks")

	output, err = execute(t, "document", "delete", "notes", id)
	require.NoError(t, err)
	assert.Contains(t, output, "Deleted document")

	_, err = execute(t, "document", "get", "notes", id)
	require.Error(t, err)
}

func TestCollectionCommands(t *testing.T) {
	setupCLI(t)
	path := writeTempDoc(t, "note.txt", "collection content")

	_, err := execute(t, "index", path, "--collection", "notes")
	require.NoError(t, err)

	output, err := execute(t, "collection", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "notes (1 chunks)")

	output, err = execute(t, "collection", "delete", "notes")
	require.NoError(t, err)
	assert.Contains(t, output, "Deleted collection notes.")

	output, err = execute(t, "collection", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "No collections found.")
}

func TestResetCommand(t *testing.T) {
	setupCLI(t)
	path := writeTempDoc(t, "note.txt", "reset content")

	_, err := execute(t, "index", path, "--collection", "notes")
	require.NoError(t, err)

	_, err = execute(t, "reset")
	require.Error(t, err)

	output, err := execute(t, "reset", "--force")
	require.NoError(t, err)
	assert.Contains(t, output, "All data deleted.")

	output, err = execute(t, "document", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "No documents found.")
}
