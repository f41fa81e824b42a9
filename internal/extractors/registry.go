// Package extractors selects a text extractor by file type.
package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/extractors/pdf"
	"github.com/custodia-labs/ragstore/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry dispatches extraction to the extractor registered for a file
// type. Unknown types fail with domain.ErrUnsupportedFileType.
type Registry struct {
	byType map[string]driven.TextExtractor
}

// New creates a registry with the default extractors: plain text and PDF.
func New() *Registry {
	r := &Registry{byType: make(map[string]driven.TextExtractor)}
	r.Register(plaintext.New())
	r.Register(pdf.New())
	return r
}

// Register adds an extractor for each of its supported types.
func (r *Registry) Register(e driven.TextExtractor) {
	for _, t := range e.SupportedTypes() {
		r.byType[NormalizeType(t)] = e
	}
}

// Extract converts data to text using the extractor for fileType.
func (r *Registry) Extract(ctx context.Context, data []byte, fileType string) (string, error) {
	e, ok := r.byType[NormalizeType(fileType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, fileType)
	}
	return e.Extract(ctx, data, fileType)
}

// SupportedTypes lists every registered file type.
func (r *Registry) SupportedTypes() []string {
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	return types
}

// NormalizeType lowercases a file type and strips any leading dot, so
// ".PDF", "pdf" and "PDF" all select the same extractor.
func NormalizeType(fileType string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fileType), "."))
}
