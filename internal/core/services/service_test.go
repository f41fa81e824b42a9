package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragstore/internal/extractors"
	"github.com/custodia-labs/ragstore/internal/splitter"
)

// pingEmbedder records pings and optionally fails them.
type pingEmbedder struct {
	pings   int
	pingErr error
}

func (e *pingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{0}, nil
}

func (e *pingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func (e *pingEmbedder) Dimensions() int { return 1 }

func (e *pingEmbedder) ModelName() string { return "test-model" }

func (e *pingEmbedder) Ping(context.Context) error {
	e.pings++
	return e.pingErr
}

func (e *pingEmbedder) Close() error { return nil }

func newServiceWithEmbedder(embedder *pingEmbedder) *Service {
	return NewService(
		memory.NewDocStore(extractors.New()),
		memory.NewVectorStore(),
		splitter.FixedWindow{},
		WithEmbedder(embedder),
	)
}

func TestLoadPingsEmbeddingBackend(t *testing.T) {
	embedder := &pingEmbedder{}
	service := newServiceWithEmbedder(embedder)

	require.NoError(t, service.Load(context.Background()))
	assert.Equal(t, 1, embedder.pings)
}

func TestLoadFailsWhenBackendUnreachable(t *testing.T) {
	cause := errors.New("connection refused")
	embedder := &pingEmbedder{pingErr: cause}
	service := newServiceWithEmbedder(embedder)

	err := service.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "test-model")
}

func TestLoadWithoutEmbedderIsNoop(t *testing.T) {
	service := NewService(
		memory.NewDocStore(extractors.New()),
		memory.NewVectorStore(),
		splitter.FixedWindow{},
	)
	assert.NoError(t, service.Load(context.Background()))
}
