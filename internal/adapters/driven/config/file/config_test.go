package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, "sqlite", cfg.Vector.Backend)
	assert.Equal(t, 1000, cfg.Indexing.ChunkSize)
	assert.Equal(t, 100, cfg.Indexing.ChunkOverlap)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[embedding]
provider = "openai"
model = "text-embedding-3-large"
api_key = "from-file"

[indexing]
chunk_size = 500
chunk_overlap = 50

[retrieval]
top_k = 8
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedding.Model)
	assert.Equal(t, "from-file", cfg.Embedding.APIKey)
	assert.Equal(t, 500, cfg.Indexing.ChunkSize)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	// Untouched sections keep their defaults.
	assert.Equal(t, "sqlite", cfg.Vector.Backend)
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[embedding]
provider = "openai"
api_key = "from-file"
`), 0600))
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Embedding.APIKey)
}

func TestLoad_Validation(t *testing.T) {
	write := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0600))
		return path
	}

	t.Run("unknown provider", func(t *testing.T) {
		_, err := Load(write(t, "[embedding]\nprovider = \"cohere\"\n"))
		assert.ErrorContains(t, err, "unknown embedding provider")
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Load(write(t, "[vector]\nbackend = \"chroma\"\n"))
		assert.ErrorContains(t, err, "unknown vector backend")
	})

	t.Run("pgvector requires a DSN", func(t *testing.T) {
		_, err := Load(write(t, "[vector]\nbackend = \"pgvector\"\n"))
		assert.ErrorContains(t, err, "postgres_dsn")
	})

	t.Run("overlap must stay below size", func(t *testing.T) {
		_, err := Load(write(t, "[indexing]\nchunk_size = 100\nchunk_overlap = 100\n"))
		assert.ErrorContains(t, err, "chunk_overlap")
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Storage.DataDir = "/tmp/ragstore"
	cfg.Retrieval.TopK = 7
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ragstore", loaded.Storage.DataDir)
	assert.Equal(t, 7, loaded.Retrieval.TopK)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
