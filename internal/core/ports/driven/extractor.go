package driven

import "context"

// TextExtractor converts raw file bytes into plain text. Supported types
// include at least plain text and PDF; anything else fails with
// domain.ErrUnsupportedFileType.
type TextExtractor interface {
	// Extract returns the text content of data. fileType is a normalised
	// extension such as "txt" or "pdf" (leading dot tolerated).
	Extract(ctx context.Context, data []byte, fileType string) (string, error)

	// SupportedTypes lists the file types this extractor handles.
	SupportedTypes() []string
}
