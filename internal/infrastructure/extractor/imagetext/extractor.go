// Package imagetext extracts text from uploaded images, preferring a
// cloud vision service and falling back to a local OCR engine.
package imagetext

import (
	"context"
	"image"
	"log/slog"
	"strings"

	"github.com/skillgap/analyzer/internal/core/domain"
	"github.com/skillgap/analyzer/internal/core/ports"
)

// shortResultThreshold is the character count below which a cloud
// recognition pass is considered suspiciously short and retried once
// with an intensified prompt.
const shortResultThreshold = 200

type Extractor struct {
	vision ports.VisionRecognizer
	local  ports.LocalRecognizer
	logger *slog.Logger
}

func New(vision ports.VisionRecognizer, local ports.LocalRecognizer, logger *slog.Logger) *Extractor {
	return &Extractor{vision: vision, local: local, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.UploadedDocument) (string, error) {
	img, err := decode(doc.Content)
	if err != nil {
		return "", domain.Failf(domain.ErrExtractionFailed,
			"could not read the image file. It may be corrupted or in an unsupported format")
	}
	prepared := enhance(img)

	cloudConfigured := e.vision != nil && e.vision.Configured()
	localAvailable := e.local != nil && e.local.Available()

	if cloudConfigured {
		text, err := e.recognizeCloud(ctx, prepared, doc.Kind)
		switch {
		case err == nil && text != "":
			return text, nil
		case err != nil && domain.IsKind(err, domain.ErrExtractionFailed):
			return "", err
		case err != nil:
			e.logger.Warn("vision_ocr_failed",
				slog.String("filename", doc.Filename),
				slog.Any("error", err))
		}
	}

	if localAvailable {
		text, err := e.local.Recognize(ctx, img)
		if err != nil {
			e.logger.Warn("local_ocr_failed",
				slog.String("filename", doc.Filename),
				slog.Any("error", err))
		} else if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed, nil
		}
	}

	return "", domain.Failf(domain.ErrExtractionFailed, "%s", exhaustionMessage(cloudConfigured, localAvailable))
}

// recognizeCloud runs the downscale-encode-recognize pass. A result
// shorter than shortResultThreshold triggers exactly one intensified
// retry; the longer of the two results wins.
func (e *Extractor) recognizeCloud(ctx context.Context, img image.Image, kind domain.DocumentKind) (string, error) {
	payload, err := encodeJPEG(downscale(img))
	if err != nil {
		return "", err
	}

	text, err := e.vision.Recognize(ctx, payload, kind, false)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if len(text) >= shortResultThreshold {
		return text, nil
	}

	e.logger.Info("vision_ocr_retry",
		slog.Int("first_pass_chars", len(text)))
	retry, err := e.vision.Recognize(ctx, payload, kind, true)
	if err != nil {
		e.logger.Warn("vision_ocr_retry_failed", slog.Any("error", err))
		return text, nil
	}
	retry = strings.TrimSpace(retry)
	if len(retry) > len(text) {
		return retry, nil
	}
	return text, nil
}

func exhaustionMessage(cloudConfigured, localAvailable bool) string {
	switch {
	case !cloudConfigured && !localAvailable:
		return "no OCR engine is available. Configure a vision API key or install a local OCR engine, or paste the text manually"
	case !cloudConfigured:
		return "could not read text from the image with the local OCR engine. Configure a vision API key for better results, or paste the text manually"
	case !localAvailable:
		return "the vision service could not read text from the image. Install a local OCR engine as a fallback, or paste the text manually"
	default:
		return "could not extract text from the image. It may be too low quality or contain no readable text. Please paste the text manually"
	}
}
