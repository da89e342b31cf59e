package loaders

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

// Ensure DocxLoader implements the interface.
var _ driven.DocumentLoader = (*DocxLoader)(nil)

// DocxLoader handles Word documents. It reads word/document.xml from
// the OOXML archive and joins paragraph runs with newlines.
type DocxLoader struct{}

// NewDocx creates a new DOCX loader.
func NewDocx() *DocxLoader {
	return &DocxLoader{}
}

// SupportedExtensions returns the extensions this loader handles.
func (l *DocxLoader) SupportedExtensions() []string {
	return []string{".docx"}
}

// Load extracts paragraph text from the document archive.
func (l *DocxLoader) Load(_ context.Context, path string) (*domain.Document, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, domain.ErrInvalidInput, err)
	}
	defer archive.Close()

	content, err := extractDocumentText(&archive.Reader)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	doc := newDocument(path, "docx", content)
	if title := extractCoreTitle(&archive.Reader); title != "" {
		doc.Title = title
	}
	return doc, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// extractDocumentText extracts text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", domain.ErrInvalidInput
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", domain.ErrInvalidInput
		}

		return parseDocumentXML(content), nil
	}
	return "", nil
}

// parseDocumentXML joins paragraph runs into plain text.
func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				result.WriteString(t.Content)
			}
		}
	}
	return strings.TrimSpace(result.String())
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractCoreTitle reads the document title from docProps/core.xml.
// An empty string means the archive has no usable title.
func extractCoreTitle(reader *zip.Reader) string {
	for _, file := range reader.File {
		if file.Name != "docProps/core.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return ""
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return ""
		}

		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil {
			return strings.TrimSpace(core.Title)
		}
		return ""
	}
	return ""
}
