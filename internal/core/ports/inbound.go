package ports

import (
	"context"

	"github.com/skillgap/analyzer/internal/core/domain"
)

// DocumentTextService is the inbound contract for standalone text extraction
// (the "extract then review" flow).
type DocumentTextService interface {
	Extract(ctx context.Context, doc *domain.UploadedDocument) (domain.ExtractedText, error)
}

// MatchAnalysisService is the inbound contract for the full resume-to-job
// comparison flow.
type MatchAnalysisService interface {
	Analyze(ctx context.Context, resume *domain.UploadedDocument, jobDescription string) (*domain.MatchReport, error)
}
