package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

// Registry dispatches file paths to the loader registered for their
// extension. Extension matching is case-insensitive.
type Registry struct {
	byExt map[string]driven.DocumentLoader
}

// NewRegistry creates a registry with the given loaders. Later loaders
// win when extensions collide.
func NewRegistry(loaders ...driven.DocumentLoader) *Registry {
	r := &Registry{byExt: make(map[string]driven.DocumentLoader)}
	for _, l := range loaders {
		r.Register(l)
	}
	return r
}

// DefaultRegistry creates a registry covering every supported format.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewPlaintext(),
		NewCSV(),
		NewDocx(),
		NewXlsx(),
		NewPDF(),
	)
}

// Register adds a loader for each of its supported extensions.
func (r *Registry) Register(l driven.DocumentLoader) {
	for _, ext := range l.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = l
	}
}

// Supports reports whether a loader is registered for the path's
// extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load dispatches to the loader for the path's extension.
func (r *Registry) Load(ctx context.Context, path string) (*domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidInput, ext)
	}
	return l.Load(ctx, path)
}
