package loaders

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

// Ensure PlaintextLoader implements the interface.
var _ driven.DocumentLoader = (*PlaintextLoader)(nil)

// PlaintextLoader handles plain text and markdown files.
type PlaintextLoader struct{}

// NewPlaintext creates a new plain text loader.
func NewPlaintext() *PlaintextLoader {
	return &PlaintextLoader{}
}

// SupportedExtensions returns the extensions this loader handles.
func (l *PlaintextLoader) SupportedExtensions() []string {
	return []string{".txt", ".md"}
}

// Load reads the file contents as UTF-8 text.
func (l *PlaintextLoader) Load(_ context.Context, path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return newDocument(path, "text", strings.TrimSpace(string(data))), nil
}
