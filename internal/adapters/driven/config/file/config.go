// Package file loads and saves the ragstore configuration as a TOML file.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ragstore/internal/splitter"
)

// Default configuration values.
const (
	DefaultEmbeddingProvider = "ollama"
	DefaultVectorBackend     = "sqlite"
	DefaultTopK              = 4
	DefaultWatchDebounceMS   = 500
)

// Config is the full ragstore configuration.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Vector    VectorConfig    `toml:"vector"`
	Indexing  IndexingConfig  `toml:"indexing"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Watch     WatchConfig     `toml:"watch"`
}

// StorageConfig locates the on-disk databases.
type StorageConfig struct {
	// DataDir holds documents.db and vectors.db. Empty means
	// ~/.ragstore/data.
	DataDir string `toml:"data_dir"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	// Model overrides the provider's default embedding model.
	Model string `toml:"model"`

	// BaseURL overrides the provider's API endpoint.
	BaseURL string `toml:"base_url"`

	// APIKey authenticates hosted providers. The OPENAI_API_KEY environment
	// variable takes precedence so keys can stay out of the config file.
	APIKey string `toml:"api_key"`

	// RequestsPerSecond rate-limits embedding calls. Zero disables limiting.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// VectorConfig selects the vector store backend.
type VectorConfig struct {
	// Backend is "sqlite" or "pgvector".
	Backend string `toml:"backend"`

	// PostgresDSN is required when Backend is "pgvector".
	PostgresDSN string `toml:"postgres_dsn"`
}

// IndexingConfig sets the default split parameters.
type IndexingConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
}

// RetrievalConfig sets retrieval defaults.
type RetrievalConfig struct {
	TopK int `toml:"top_k"`
}

// WatchConfig configures the drop-folder watcher.
type WatchConfig struct {
	// Dir is the folder to watch for new documents.
	Dir string `toml:"dir"`

	// Collection receives documents picked up from the folder.
	Collection string `toml:"collection"`

	// DebounceMS is how long a file must stay quiet before it is indexed.
	DebounceMS int `toml:"debounce_ms"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider: DefaultEmbeddingProvider,
		},
		Vector: VectorConfig{
			Backend: DefaultVectorBackend,
		},
		Indexing: IndexingConfig{
			ChunkSize:    splitter.DefaultChunkSize,
			ChunkOverlap: splitter.DefaultChunkOverlap,
		},
		Retrieval: RetrievalConfig{
			TopK: DefaultTopK,
		},
		Watch: WatchConfig{
			Collection: "inbox",
			DebounceMS: DefaultWatchDebounceMS,
		},
	}
}

// DefaultPath returns ~/.ragstore/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ragstore", "config.toml"), nil
}

// Load reads the configuration at path, layering file values over defaults.
// A missing file yields the defaults. The OPENAI_API_KEY environment
// variable overrides the file's api_key.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Restricted permissions: the file may hold an API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Embedding.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}

	switch c.Vector.Backend {
	case "sqlite":
	case "pgvector":
		if c.Vector.PostgresDSN == "" {
			return fmt.Errorf("vector backend %q requires postgres_dsn", c.Vector.Backend)
		}
	default:
		return fmt.Errorf("unknown vector backend %q", c.Vector.Backend)
	}

	if c.Indexing.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Indexing.ChunkSize)
	}
	if c.Indexing.ChunkOverlap < 0 || c.Indexing.ChunkOverlap >= c.Indexing.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", c.Indexing.ChunkOverlap)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Retrieval.TopK)
	}
	return nil
}
