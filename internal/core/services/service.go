package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/logger"
)

// Service bundles the indexer, retriever and document service over one pair
// of stores. It is an explicit dependency container: construct one per store
// pair, pass it down, close it when done.
type Service struct {
	Indexer   *Indexer
	Retriever *Retriever
	Documents *DocumentService

	docStore    driven.DocumentStore
	vectorStore driven.VectorStore
	embedder    driven.EmbeddingService
	gate        *WriteGate
}

// ServiceOption configures the bundled services.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	indexerOpts   []IndexerOption
	retrieverOpts []RetrieverOption
	embedder      driven.EmbeddingService
}

// WithEmbedder registers the embedding backend so Load can verify it is
// reachable before any indexing happens.
func WithEmbedder(embedder driven.EmbeddingService) ServiceOption {
	return func(c *serviceConfig) {
		c.embedder = embedder
	}
}

// WithIndexerOptions forwards options to the bundled indexer.
func WithIndexerOptions(opts ...IndexerOption) ServiceOption {
	return func(c *serviceConfig) {
		c.indexerOpts = append(c.indexerOpts, opts...)
	}
}

// WithRetrieverOptions forwards options to the bundled retriever.
func WithRetrieverOptions(opts ...RetrieverOption) ServiceOption {
	return func(c *serviceConfig) {
		c.retrieverOpts = append(c.retrieverOpts, opts...)
	}
}

// NewService wires the three services over the given stores with a shared
// write gate.
func NewService(
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
	splitter driven.Splitter,
	opts ...ServiceOption,
) *Service {
	var cfg serviceConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	gate := NewWriteGate()
	return &Service{
		Indexer:     NewIndexer(docStore, vectorStore, splitter, gate, cfg.indexerOpts...),
		Retriever:   NewRetriever(vectorStore, cfg.retrieverOpts...),
		Documents:   NewDocumentService(docStore, vectorStore, gate),
		docStore:    docStore,
		vectorStore: vectorStore,
		embedder:    cfg.embedder,
		gate:        gate,
	}
}

// Load verifies the service is ready to index. It pings the embedding
// backend so a misconfigured provider fails at startup rather than on the
// first chunk upsert.
func (s *Service) Load(ctx context.Context) error {
	if s.embedder == nil {
		return nil
	}
	if err := s.embedder.Ping(ctx); err != nil {
		return fmt.Errorf("pinging embedding backend %s: %w", s.embedder.ModelName(), err)
	}
	logger.Debug("Embedding backend %s reachable", s.embedder.ModelName())
	return nil
}

// Reset purges every document, chunk and vector from both stores. It takes
// the write gate so no indexing can interleave with the purge.
func (s *Service) Reset(ctx context.Context) error {
	s.gate.Lock()
	defer s.gate.Unlock()

	if err := s.vectorStore.Reset(ctx); err != nil {
		return fmt.Errorf("resetting vector store: %w", err)
	}
	if err := s.docStore.Reset(ctx); err != nil {
		return fmt.Errorf("resetting document store: %w", err)
	}
	logger.Info("Reset both stores")
	return nil
}

// Close releases both stores. The service must not be used afterwards.
func (s *Service) Close() error {
	var firstErr error
	if err := s.vectorStore.Close(); err != nil {
		firstErr = err
	}
	if err := s.docStore.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
