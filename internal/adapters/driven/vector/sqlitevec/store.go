// Package sqlitevec implements the vector store on a plain SQLite database.
// Embeddings are stored as little-endian float32 blobs and queries run a
// brute-force cosine scan over the collection. That is plenty for the
// corpus sizes a local knowledge base holds, and it keeps the default
// deployment down to a single file with no external service.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

var _ driven.VectorStore = (*Store)(nil)

// Store is the SQLite-backed vector store.
type Store struct {
	db       *sql.DB
	embedder driven.EmbeddingService
}

// NewStore opens (or creates) the vector database under dataDir and binds it
// to the embedding service that produces query and chunk vectors.
func NewStore(dataDir string, embedder driven.EmbeddingService) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragstore", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening vector database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS vectors (
			collection_name TEXT NOT NULL,
			chunk_id        TEXT NOT NULL,
			content         TEXT NOT NULL,
			embedding       BLOB NOT NULL,
			document_id     TEXT NOT NULL,
			chunk_group_id  TEXT NOT NULL,
			source          TEXT NOT NULL DEFAULT '',
			title           TEXT NOT NULL DEFAULT '',
			abstract        TEXT NOT NULL DEFAULT '',
			keywords        TEXT NOT NULL DEFAULT '',
			published_date  TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (collection_name, chunk_id)
		);
		CREATE INDEX IF NOT EXISTS idx_vectors_document ON vectors(collection_name, document_id);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vectors table: %w", err)
	}

	return &Store{db: db, embedder: embedder}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertChunk embeds the chunk text and stores the vector keyed by chunk id.
func (s *Store) UpsertChunk(ctx context.Context, collection, chunkID, text string, meta domain.ChunkMetadata) error {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding chunk: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vectors (
			collection_name, chunk_id, content, embedding,
			document_id, chunk_group_id, source, title, abstract, keywords, published_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection_name, chunk_id) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding,
			document_id = excluded.document_id,
			chunk_group_id = excluded.chunk_group_id,
			source = excluded.source,
			title = excluded.title,
			abstract = excluded.abstract,
			keywords = excluded.keywords,
			published_date = excluded.published_date
	`, collection, chunkID, text, float32SliceToBytes(embedding),
		meta.DocumentID, meta.ChunkGroupID, meta.Source, meta.Title,
		meta.Abstract, meta.Keywords, meta.PublishedDate)
	if err != nil {
		return fmt.Errorf("upserting vector: %w", err)
	}
	return nil
}

// Query embeds the query text and returns the topK nearest chunks by cosine
// distance, ascending.
func (s *Store) Query(ctx context.Context, collection, queryText string, topK int) ([]domain.RetrievedChunk, error) {
	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, content, embedding,
			document_id, chunk_group_id, source, title, abstract, keywords, published_date
		FROM vectors WHERE collection_name = ?
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.RetrievedChunk
		var blob []byte
		if err := rows.Scan(&chunk.ID, &chunk.Content, &blob,
			&chunk.Metadata.DocumentID, &chunk.Metadata.ChunkGroupID,
			&chunk.Metadata.Source, &chunk.Metadata.Title, &chunk.Metadata.Abstract,
			&chunk.Metadata.Keywords, &chunk.Metadata.PublishedDate); err != nil {
			return nil, fmt.Errorf("scanning vector row: %w", err)
		}
		chunk.Distance = cosineDistance(queryVec, bytesToFloat32Slice(blob))
		results = append(results, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteChunk removes a single vector.
func (s *Store) DeleteChunk(ctx context.Context, collection, chunkID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM vectors WHERE collection_name = ? AND chunk_id = ?", collection, chunkID)
	if err != nil {
		return fmt.Errorf("deleting vector: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting vector: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
	}
	return nil
}

// DeleteDocument removes every vector belonging to the document.
func (s *Store) DeleteDocument(ctx context.Context, collection, documentID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM vectors WHERE collection_name = ? AND document_id = ?", collection, documentID); err != nil {
		return fmt.Errorf("deleting document vectors: %w", err)
	}
	return nil
}

// DeleteCollection removes every vector in a collection.
func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM vectors WHERE collection_name = ?", collection); err != nil {
		return fmt.Errorf("deleting collection vectors: %w", err)
	}
	return nil
}

// ListCollections returns the distinct collection names that hold vectors.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT collection_name FROM vectors ORDER BY collection_name")
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var names []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning collection name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return names, nil
}

// Reset drops all vectors.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM vectors"); err != nil {
		return fmt.Errorf("clearing vectors: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts embeddings to their little-endian byte form.
func float32SliceToBytes(floats []float32) []byte {
	bytes := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(bytes[i*4:], math.Float32bits(f))
	}
	return bytes
}

// bytesToFloat32Slice converts stored bytes back to embeddings.
func bytesToFloat32Slice(bytes []byte) []float32 {
	floats := make([]float32, len(bytes)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(bytes[i*4:]))
	}
	return floats
}

// cosineDistance is 1 - cosine similarity. Zero vectors are maximally far.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
