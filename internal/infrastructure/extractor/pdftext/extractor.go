// Package pdftext extracts text from digitally generated PDFs.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/skillgap/analyzer/internal/core/domain"
)

// maxPages bounds worst-case latency on huge documents; extraction proceeds
// with whatever was gathered instead of failing.
const maxPages = 20

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.UploadedDocument) (text string, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("pdf_extraction_panic", "filename", doc.Filename, "panic", fmt.Sprint(r))
			text = ""
			err = corruptedErr()
		}
	}()

	reader, readerErr := pdf.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if readerErr != nil {
		slog.Error("pdf_open_failed", "filename", doc.Filename, "error", readerErr)
		return "", corruptedErr()
	}

	pageCount := reader.NumPage()
	if pageCount == 0 {
		return "", domain.Failf(domain.ErrExtractionFailed, "PDF file contains no pages")
	}

	var parts []string
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		if pageNum > maxPages {
			slog.Warn("pdf_page_cap_reached", "filename", doc.Filename, "pages", pageCount)
			break
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			slog.Warn("pdf_page_unreadable", "filename", doc.Filename, "page", pageNum, "error", pageErr)
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			parts = append(parts, pageText)
		}
	}

	if len(parts) == 0 {
		return "", domain.Failf(domain.ErrExtractionFailed,
			"could not extract text from PDF. The file may be image-based or scanned. Try uploading an image screenshot instead")
	}

	return strings.Join(parts, "\n\n"), nil
}

func corruptedErr() error {
	return domain.Failf(domain.ErrExtractionFailed,
		"failed to read PDF file. It may be corrupted or password-protected")
}
