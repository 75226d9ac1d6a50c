package ports

import (
	"context"
	"image"

	"github.com/skillgap/analyzer/internal/core/domain"
)

// TokenVerifier checks a bearer credential against the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (domain.Identity, error)
}

// FormatExtractor turns the bytes of one handling category into raw text.
type FormatExtractor interface {
	Extract(ctx context.Context, doc *domain.UploadedDocument) (string, error)
}

// TextSanitizer normalizes raw extracted text into its canonical form.
type TextSanitizer interface {
	Sanitize(text string) string
}

// VisionRecognizer is the cloud recognition service: it transcribes an
// encoded image. Intensify appends a stronger transcription instruction to
// the same prompt.
type VisionRecognizer interface {
	Configured() bool
	Recognize(ctx context.Context, jpegData []byte, kind domain.DocumentKind, intensify bool) (string, error)
}

// LocalRecognizer is the on-host fallback recognition engine. Empty output
// is a soft failure, not an error.
type LocalRecognizer interface {
	Available() bool
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// CompletionRequest is one synchronous call to the completion service.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	ForceJSON   bool
}

// CompletionClient executes completion requests against the configured
// OpenAI-compatible endpoint.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// MatchAnalyzer runs the structured comparison of two texts and returns the
// validated report.
type MatchAnalyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (*domain.MatchReport, error)
}
