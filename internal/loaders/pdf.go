package loaders

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

// Ensure PDFLoader implements the interface.
var _ driven.DocumentLoader = (*PDFLoader)(nil)

// PDFLoader handles PDF documents.
type PDFLoader struct{}

// NewPDF creates a new PDF loader.
func NewPDF() *PDFLoader {
	return &PDFLoader{}
}

// SupportedExtensions returns the extensions this loader handles.
func (l *PDFLoader) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Load extracts plain text page by page. Pages that cannot be decoded
// are skipped rather than failing the whole document.
func (l *PDFLoader) Load(_ context.Context, path string) (*domain.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimSpace(text))
	}

	doc := newDocument(path, "pdf", strings.TrimSpace(b.String()))
	doc.Metadata["pages"] = pages
	return doc, nil
}
