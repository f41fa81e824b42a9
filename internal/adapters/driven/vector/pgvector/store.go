// Package pgvector implements the vector store on PostgreSQL with the
// pgvector extension, for deployments where the index should live in a
// shared database instead of a local file.
package pgvector

import (
	"context"
	"fmt"

	pgv "github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

var _ driven.VectorStore = (*Store)(nil)

// chunkRecord is the gorm model backing the chunk_vectors table.
type chunkRecord struct {
	CollectionName string     `gorm:"primaryKey;column:collection_name"`
	ChunkID        string     `gorm:"primaryKey;column:chunk_id"`
	Content        string     `gorm:"column:content"`
	Embedding      pgv.Vector `gorm:"column:embedding;type:vector"`
	DocumentID     string     `gorm:"column:document_id;index:idx_chunk_vectors_document"`
	ChunkGroupID   string     `gorm:"column:chunk_group_id"`
	Source         string     `gorm:"column:source"`
	Title          string     `gorm:"column:title"`
	Abstract       string     `gorm:"column:abstract"`
	Keywords       string     `gorm:"column:keywords"`
	PublishedDate  string     `gorm:"column:published_date"`
}

func (chunkRecord) TableName() string {
	return "chunk_vectors"
}

// Store is the PostgreSQL-backed vector store.
type Store struct {
	db       *gorm.DB
	embedder driven.EmbeddingService
}

// NewStore connects to PostgreSQL using the given DSN, ensures the pgvector
// extension and schema exist, and binds the embedding service.
func NewStore(dsn string, embedder driven.EmbeddingService) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enabling pgvector extension: %w", err)
	}
	if err := db.AutoMigrate(&chunkRecord{}); err != nil {
		return nil, fmt.Errorf("migrating chunk_vectors table: %w", err)
	}

	return &Store{db: db, embedder: embedder}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertChunk embeds the chunk text and stores it keyed by chunk id.
func (s *Store) UpsertChunk(ctx context.Context, collection, chunkID, text string, meta domain.ChunkMetadata) error {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding chunk: %w", err)
	}

	record := chunkRecord{
		CollectionName: collection,
		ChunkID:        chunkID,
		Content:        text,
		Embedding:      pgv.NewVector(embedding),
		DocumentID:     meta.DocumentID,
		ChunkGroupID:   meta.ChunkGroupID,
		Source:         meta.Source,
		Title:          meta.Title,
		Abstract:       meta.Abstract,
		Keywords:       meta.Keywords,
		PublishedDate:  meta.PublishedDate,
	}

	err = s.db.WithContext(ctx).
		Save(&record).Error
	if err != nil {
		return fmt.Errorf("upserting vector: %w", err)
	}
	return nil
}

// Query embeds the query and returns topK nearest chunks by cosine distance,
// computed in the database with the <=> operator.
func (s *Store) Query(ctx context.Context, collection, queryText string, topK int) ([]domain.RetrievedChunk, error) {
	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	type scored struct {
		chunkRecord
		Distance float64
	}

	var records []scored
	err = s.db.WithContext(ctx).
		Model(&chunkRecord{}).
		Select("*, embedding <=> ? AS distance", pgv.NewVector(queryVec)).
		Where("collection_name = ?", collection).
		Order("distance").
		Limit(topK).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}

	results := make([]domain.RetrievedChunk, len(records))
	for i, record := range records {
		results[i] = domain.RetrievedChunk{
			ID:      record.ChunkID,
			Content: record.Content,
			Metadata: domain.ChunkMetadata{
				DocumentID:    record.DocumentID,
				ChunkGroupID:  record.ChunkGroupID,
				Source:        record.Source,
				Title:         record.Title,
				Abstract:      record.Abstract,
				Keywords:      record.Keywords,
				PublishedDate: record.PublishedDate,
			},
			Distance: record.Distance,
		}
	}
	return results, nil
}

// DeleteChunk removes a single vector.
func (s *Store) DeleteChunk(ctx context.Context, collection, chunkID string) error {
	result := s.db.WithContext(ctx).
		Where("collection_name = ? AND chunk_id = ?", collection, chunkID).
		Delete(&chunkRecord{})
	if result.Error != nil {
		return fmt.Errorf("deleting vector: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
	}
	return nil
}

// DeleteDocument removes every vector belonging to the document.
func (s *Store) DeleteDocument(ctx context.Context, collection, documentID string) error {
	err := s.db.WithContext(ctx).
		Where("collection_name = ? AND document_id = ?", collection, documentID).
		Delete(&chunkRecord{}).Error
	if err != nil {
		return fmt.Errorf("deleting document vectors: %w", err)
	}
	return nil
}

// DeleteCollection removes every vector in a collection.
func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	err := s.db.WithContext(ctx).
		Where("collection_name = ?", collection).
		Delete(&chunkRecord{}).Error
	if err != nil {
		return fmt.Errorf("deleting collection vectors: %w", err)
	}
	return nil
}

// ListCollections returns the distinct collection names that hold vectors.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&chunkRecord{}).
		Distinct("collection_name").
		Order("collection_name").
		Pluck("collection_name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return names, nil
}

// Reset drops all vectors.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&chunkRecord{}).Error; err != nil {
		return fmt.Errorf("clearing vectors: %w", err)
	}
	return nil
}
