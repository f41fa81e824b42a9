// Package ratelimit wraps an embedding service with a client-side rate
// limiter, so bulk indexing stays under provider quotas.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultRequestsPerSecond is a conservative default that suits hosted
// embedding APIs on entry-level tiers.
const DefaultRequestsPerSecond = 5

// EmbeddingService delegates to an inner embedding service, waiting on a
// token bucket before each request.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap creates a rate-limited view of the given embedding service.
// requestsPerSecond <= 0 selects the default.
func Wrap(inner driven.EmbeddingService, requestsPerSecond float64) *EmbeddingService {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	return &EmbeddingService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Embed(ctx, text)
}

func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.EmbedBatch(ctx, texts)
}

func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.inner.Ping(ctx)
}

func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}
