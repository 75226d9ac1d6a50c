// Package docxtext extracts text from WordprocessingML documents.
package docxtext

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"log/slog"
	"strings"

	"github.com/skillgap/analyzer/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Minimal mapping of the WordprocessingML body. Namespace prefixes are
// ignored by encoding/xml's local-name matching.
type wordDocument struct {
	Body wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
	Tables     []wordTable     `xml:"tbl"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Texts  []string   `xml:"t"`
	Tabs   []struct{} `xml:"tab"`
	Breaks []struct{} `xml:"br"`
}

type wordTable struct {
	Rows []wordRow `xml:"tr"`
}

type wordRow struct {
	Cells []wordCell `xml:"tc"`
}

type wordCell struct {
	Paragraphs []wordParagraph `xml:"p"`
}

// Extract concatenates non-blank paragraph text in document order, then
// appends table rows with cells joined by " | ".
func (e *Extractor) Extract(ctx context.Context, doc *domain.UploadedDocument) (string, error) {
	body, err := readDocumentXML(doc.Content)
	if err != nil {
		slog.Error("docx_open_failed", "filename", doc.Filename, "error", err)
		return "", corruptedErr()
	}

	var parsed wordDocument
	if err := xml.Unmarshal(body, &parsed); err != nil {
		slog.Error("docx_parse_failed", "filename", doc.Filename, "error", err)
		return "", corruptedErr()
	}

	var parts []string
	for _, paragraph := range parsed.Body.Paragraphs {
		if text := paragraphText(paragraph); text != "" {
			parts = append(parts, text)
		}
	}
	for _, table := range parsed.Body.Tables {
		for _, row := range table.Rows {
			var cells []string
			for _, cell := range row.Cells {
				if text := cellText(cell); text != "" {
					cells = append(cells, text)
				}
			}
			if len(cells) > 0 {
				parts = append(parts, strings.Join(cells, " | "))
			}
		}
	}

	if len(parts) == 0 {
		return "", domain.Failf(domain.ErrExtractionFailed,
			"could not extract text from document. The file appears to be empty")
	}

	return strings.Join(parts, "\n"), nil
}

func readDocumentXML(content []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, domain.Failf(domain.ErrExtractionFailed, "document has no word/document.xml part")
}

func paragraphText(paragraph wordParagraph) string {
	var b strings.Builder
	for _, run := range paragraph.Runs {
		for _, text := range run.Texts {
			b.WriteString(text)
		}
	}
	return strings.TrimSpace(b.String())
}

func cellText(cell wordCell) string {
	var parts []string
	for _, paragraph := range cell.Paragraphs {
		if text := paragraphText(paragraph); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func corruptedErr() error {
	return domain.Failf(domain.ErrExtractionFailed,
		"failed to read document file. It may be corrupted or in an unsupported format")
}
