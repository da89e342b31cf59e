package driven

import (
	"context"

	"github.com/credostack/underwrite/internal/core/domain"
)

// DocumentLoader extracts text content from a file of a supported
// type. Each loader handles specific file extensions.
type DocumentLoader interface {
	// SupportedExtensions returns the lowercase extensions this loader
	// handles, including the leading dot (e.g., ".pdf").
	SupportedExtensions() []string

	// Load reads the file and returns a document with Content populated.
	Load(ctx context.Context, path string) (*domain.Document, error)
}
