package openai

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"

	"github.com/skillgap/analyzer/internal/core/domain"
)

const (
	visionTemperature = 0.1
	visionMaxTokens   = 4000
)

// Vision performs OCR through the chat completions API by attaching
// the image as a data URL.
type Vision struct {
	client *Client
}

func NewVision(client *Client) *Vision {
	return &Vision{client: client}
}

func (v *Vision) Configured() bool {
	return v.client.Configured()
}

func (v *Vision) Recognize(ctx context.Context, jpegData []byte, kind domain.DocumentKind, intensify bool) (string, error) {
	if !v.Configured() {
		return "", domain.Failf(domain.ErrExtractionFailed,
			"image text extraction is not configured. Please paste the text manually, or upload a PDF/DOCX file")
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
	payload := chatRequest{
		Model: v.client.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: visionPrompt(kind, intensify)},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL, Detail: "high"}},
			},
		}},
		Temperature: visionTemperature,
		MaxTokens:   visionMaxTokens,
	}

	content, err := v.client.chat(ctx, payload, "vision")
	if err != nil && isBadRequest(err) {
		// Some providers reject the detail hint; try once without it.
		v.client.logger.Info("vision_detail_rejected", slog.String("model", v.client.model))
		payload.Messages[0].Content = []contentPart{
			{Type: "text", Text: visionPrompt(kind, intensify)},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
		}
		content, err = v.client.chat(ctx, payload, "vision")
	}
	if err != nil {
		return "", mapAPIError("vision", err)
	}
	return strings.TrimSpace(content), nil
}
