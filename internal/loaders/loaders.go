// Package loaders extracts text from source documents. Each file type
// has a dedicated loader; the Registry dispatches on file extension.
package loaders

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/credostack/underwrite/internal/core/domain"
)

// docID derives a stable identifier from the document path, so that
// rebuilding an index over the same files produces the same IDs.
func docID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}

// titleFromPath derives a human-readable title from the file name.
func titleFromPath(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// newDocument builds a Document with the fields every loader shares.
func newDocument(path, docType, content string) *domain.Document {
	return &domain.Document{
		ID:      docID(path),
		Path:    path,
		Title:   titleFromPath(path),
		Type:    docType,
		Content: content,
		Metadata: map[string]any{
			"source": path,
			"format": docType,
		},
		LoadedAt: time.Now(),
	}
}
