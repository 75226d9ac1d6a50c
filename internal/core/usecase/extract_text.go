package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skillgap/analyzer/internal/core/domain"
	"github.com/skillgap/analyzer/internal/core/ports"
)

const (
	// minTextLength is the floor for sanitized job description text
	// from PDF and DOCX uploads.
	minTextLength = 200

	// imageMinTextLength is the lower floor for OCR output. Image
	// extraction is the least reliable path, so under-threshold text
	// is accepted with a warning instead of rejected.
	imageMinTextLength = 50
)

// TextExtraction is the extraction facade: classify, size-check,
// dispatch to the format extractor, sanitize, then gate on length.
type TextExtraction struct {
	extractors map[domain.FileCategory]ports.FormatExtractor
	sanitizer  ports.TextSanitizer
	logger     *slog.Logger
}

func NewTextExtraction(
	pdf ports.FormatExtractor,
	docx ports.FormatExtractor,
	image ports.FormatExtractor,
	sanitizer ports.TextSanitizer,
	logger *slog.Logger,
) *TextExtraction {
	return &TextExtraction{
		extractors: map[domain.FileCategory]ports.FormatExtractor{
			domain.CategoryPDF:   pdf,
			domain.CategoryDocx:  docx,
			domain.CategoryImage: image,
		},
		sanitizer: sanitizer,
		logger:    logger,
	}
}

func (s *TextExtraction) Extract(ctx context.Context, doc *domain.UploadedDocument) (domain.ExtractedText, error) {
	category, err := domain.Classify(doc.Filename)
	if err != nil {
		return domain.ExtractedText{}, err
	}
	if err := domain.CheckSize(doc.Size); err != nil {
		return domain.ExtractedText{}, err
	}

	raw, err := s.extractors[category].Extract(ctx, doc)
	if err != nil {
		return domain.ExtractedText{}, err
	}

	text := s.sanitizer.Sanitize(raw)
	result := domain.ExtractedText{Text: text, Filename: doc.Filename}

	switch {
	case category == domain.CategoryImage:
		if len(text) < imageMinTextLength {
			result.Warning = fmt.Sprintf(
				"extracted text is very short (%d characters). The image may not contain much readable text; please verify the result or paste the text manually",
				len(text))
			s.logger.Warn("image_text_below_threshold",
				slog.String("filename", doc.Filename),
				slog.Int("chars", len(text)))
		}
	case doc.Kind == domain.KindResume:
		// Resume floors are enforced at the analysis boundary.
	default:
		if len(text) < minTextLength {
			return domain.ExtractedText{}, domain.Failf(domain.ErrInsufficientText,
				"extracted text is too short (%d characters). Job descriptions should be at least %d characters. Please upload a more complete job posting or paste the text manually",
				len(text), minTextLength)
		}
	}

	s.logger.Info("text_extracted",
		slog.String("filename", doc.Filename),
		slog.String("category", string(category)),
		slog.Int("chars", len(text)))
	return result, nil
}
