// Package plaintext extracts text from plain-text file formats.
package plaintext

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// Extractor handles plain-text formats. The bytes are returned as-is after
// UTF-8 validation; no whitespace normalisation is applied, so content
// hashes are a pure function of the stored bytes.
type Extractor struct{}

// New creates a plain-text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedTypes returns the file types this extractor handles.
func (e *Extractor) SupportedTypes() []string {
	return []string{"txt", "text", "md", "markdown"}
}

// Extract returns data as a UTF-8 string.
func (e *Extractor) Extract(_ context.Context, data []byte, _ string) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: content is not valid UTF-8", domain.ErrInvalidInput)
	}
	return string(data), nil
}
