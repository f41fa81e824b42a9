// Package splitter provides deterministic fixed-window text segmentation.
package splitter

import (
	"fmt"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// AlgoName identifies the splitting strategy recorded on chunk groups.
const AlgoName = "fixed_window"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// FixedWindow splits text into overlapping windows of a fixed size. The
// split is deterministic: identical inputs always yield identical,
// identically-ordered output. Windows advance by (size - overlap)
// characters; the final window may be shorter, and splitting stops once a
// window reaches the end of the text so no chunk is wholly contained in its
// predecessor.
type FixedWindow struct{}

// Name returns the algorithm name.
func (FixedWindow) Name() string {
	return AlgoName
}

// Split segments text into ordered chunks of chunkSize characters, each
// adjacent pair sharing exactly chunkOverlap characters. Overlap must be
// smaller than size and neither may be negative.
func (FixedWindow) Split(text string, chunkSize, chunkOverlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidInput, chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap %d must not be negative", domain.ErrInvalidInput, chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidInput, chunkOverlap, chunkSize)
	}

	if text == "" {
		return nil, nil
	}

	// Operate on runes so multi-byte characters never straddle a boundary.
	runes := []rune(text)
	total := len(runes)
	step := chunkSize - chunkOverlap

	chunks := make([]string, 0, total/step+1)
	for start := 0; start < total; start += step {
		end := start + chunkSize
		if end > total {
			end = total
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == total {
			break
		}
	}

	return chunks, nil
}
