// Command ragstore is a local document knowledge base: it indexes files
// into embedded chunks and retrieves them by semantic similarity.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragstore/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/vector/pgvector"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/vector/sqlitevec"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/core/services"
	"github.com/custodia-labs/ragstore/internal/extractors"
	"github.com/custodia-labs/ragstore/internal/logger"
	"github.com/custodia-labs/ragstore/internal/splitter"
)

// version is overridden at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for API keys in development setups.
	_ = godotenv.Load()

	configPath := os.Getenv("RAGSTORE_CONFIG")
	if configPath == "" {
		var err error
		configPath, err = file.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg, err := file.Load(configPath)
	if err != nil {
		return err
	}

	extractor := extractors.New()
	docStore, err := sqlite.NewStore(cfg.Storage.DataDir, extractor)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	vectorStore, err := newVectorStore(cfg, embedder)
	if err != nil {
		return err
	}

	service := services.NewService(docStore, vectorStore, splitter.FixedWindow{},
		services.WithIndexerOptions(
			services.WithChunkDefaults(cfg.Indexing.ChunkSize, cfg.Indexing.ChunkOverlap),
			services.WithProgressSink(progressLogger{}),
		),
		services.WithRetrieverOptions(services.WithDefaultTopK(cfg.Retrieval.TopK)),
		services.WithEmbedder(embedder),
	)
	defer service.Close()

	if err := service.Load(context.Background()); err != nil {
		return fmt.Errorf("embedding backend unavailable: %w", err)
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Indexer:   service.Indexer,
		Retriever: service.Retriever,
		Documents: service.Documents,
	})
	cli.SetResetFunc(service.Reset)

	return cli.Execute()
}

func newEmbedder(cfg *file.Config) (driven.EmbeddingService, error) {
	var embedder driven.EmbeddingService
	switch cfg.Embedding.Provider {
	case "ollama":
		embedder = ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
	case "openai":
		var err error
		embedder, err = openai.NewEmbeddingService(openai.Config{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}

	if cfg.Embedding.RequestsPerSecond > 0 {
		embedder = ratelimit.Wrap(embedder, cfg.Embedding.RequestsPerSecond)
	}
	return embedder, nil
}

func newVectorStore(cfg *file.Config, embedder driven.EmbeddingService) (driven.VectorStore, error) {
	switch cfg.Vector.Backend {
	case "sqlite":
		return sqlitevec.NewStore(cfg.Storage.DataDir, embedder)
	case "pgvector":
		return pgvector.NewStore(cfg.Vector.PostgresDSN, embedder)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Vector.Backend)
	}
}

// progressLogger reports chunk-by-chunk progress in verbose mode.
type progressLogger struct{}

func (progressLogger) OnProgress(current, total int) {
	logger.Debug("Embedded chunk %d/%d", current, total)
}

func (progressLogger) OnComplete() {
	logger.Debug("Embedding complete")
}
