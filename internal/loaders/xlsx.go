package loaders

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/credostack/underwrite/internal/core/domain"
	"github.com/credostack/underwrite/internal/core/ports/driven"
)

// Ensure XlsxLoader implements the interface.
var _ driven.DocumentLoader = (*XlsxLoader)(nil)

// XlsxLoader handles Excel workbooks. It resolves shared strings and
// renders each sheet row as a comma-separated line.
type XlsxLoader struct{}

// NewXlsx creates a new XLSX loader.
func NewXlsx() *XlsxLoader {
	return &XlsxLoader{}
}

// SupportedExtensions returns the extensions this loader handles.
func (l *XlsxLoader) SupportedExtensions() []string {
	return []string{".xlsx"}
}

// Load extracts cell text from every worksheet in the archive.
func (l *XlsxLoader) Load(_ context.Context, path string) (*domain.Document, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, domain.ErrInvalidInput, err)
	}
	defer archive.Close()

	shared, err := readSharedStrings(&archive.Reader)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	var sheetNames []string
	for _, file := range archive.File {
		if strings.HasPrefix(file.Name, "xl/worksheets/sheet") && strings.HasSuffix(file.Name, ".xml") {
			sheetNames = append(sheetNames, file.Name)
		}
	}
	sort.Strings(sheetNames)

	var b strings.Builder
	sheets := 0
	for _, name := range sheetNames {
		text, err := readSheetText(&archive.Reader, name, shared)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", path, err)
		}
		if text == "" {
			continue
		}
		if sheets > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
		sheets++
	}

	doc := newDocument(path, "xlsx", strings.TrimSpace(b.String()))
	doc.Metadata["sheets"] = sheets
	return doc, nil
}

// sstXML represents xl/sharedStrings.xml.
type sstXML struct {
	Items []sharedItem `xml:"si"`
}

type sharedItem struct {
	Text string       `xml:"t"`
	Runs []richRunXML `xml:"r"`
}

type richRunXML struct {
	Text string `xml:"t"`
}

// text returns the item text, joining rich text runs when present.
func (s sharedItem) text() string {
	if len(s.Runs) == 0 {
		return s.Text
	}
	var b strings.Builder
	for _, r := range s.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// readSharedStrings loads the shared string table, which may be absent.
func readSharedStrings(reader *zip.Reader) ([]string, error) {
	content, ok, err := readArchiveFile(reader, "xl/sharedStrings.xml")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var sst sstXML
	if err := xml.Unmarshal(content, &sst); err != nil {
		return nil, domain.ErrInvalidInput
	}

	strs := make([]string, len(sst.Items))
	for i, item := range sst.Items {
		strs[i] = item.text()
	}
	return strs, nil
}

// sheetXML represents an xl/worksheets/sheet*.xml file.
type sheetXML struct {
	Rows []sheetRow `xml:"sheetData>row"`
}

type sheetRow struct {
	Cells []sheetCell `xml:"c"`
}

type sheetCell struct {
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline string `xml:"is>t"`
}

// readSheetText renders one worksheet as comma-separated rows.
func readSheetText(reader *zip.Reader, name string, shared []string) (string, error) {
	content, ok, err := readArchiveFile(reader, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	var sheet sheetXML
	if err := xml.Unmarshal(content, &sheet); err != nil {
		return "", domain.ErrInvalidInput
	}

	var b strings.Builder
	for i, row := range sheet.Rows {
		if i > 0 {
			b.WriteString("\n")
		}
		values := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			values = append(values, cellText(cell, shared))
		}
		b.WriteString(strings.Join(values, ", "))
	}
	return strings.TrimSpace(b.String()), nil
}

// cellText resolves a cell value, looking up shared strings by index.
func cellText(cell sheetCell, shared []string) string {
	switch cell.Type {
	case "s":
		idx, err := strconv.Atoi(cell.Value)
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return cell.Inline
	default:
		return cell.Value
	}
}

// readArchiveFile reads one file from the archive. The second return
// reports whether the file exists.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, bool, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, true, domain.ErrInvalidInput
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, true, domain.ErrInvalidInput
		}
		return content, true, nil
	}
	return nil, false, nil
}
